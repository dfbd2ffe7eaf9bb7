package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := database.OpenSQLite(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store.GetDB()
}

func createUser(t *testing.T, db *gorm.DB, role string) model.User {
	t.Helper()
	u := model.User{
		Name:         role + " user",
		Email:        fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createCourse(t *testing.T, db *gorm.DB, instructorID uint, price float64) model.Course {
	t.Helper()
	c := model.Course{
		Title:        "Go in Practice",
		Description:  "Hands-on Go",
		InstructorID: instructorID,
		Category:     "Programming",
		Level:        model.LevelBeginner,
		Price:        price,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func createLessons(t *testing.T, db *gorm.DB, courseID uint, n int) []model.Lesson {
	t.Helper()
	lessons := make([]model.Lesson, n)
	for i := range lessons {
		lessons[i] = model.Lesson{
			CourseID:     courseID,
			SectionTitle: "Basics",
			LessonNumber: i + 1,
			Title:        fmt.Sprintf("Lesson %d", i+1),
			ContentType:  model.ContentText,
			TextContent:  "content",
			Duration:     10,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	return lessons
}

func enroll(t *testing.T, db *gorm.DB, studentID, courseID uint) model.Enrollment {
	t.Helper()
	e := model.Enrollment{StudentID: studentID, CourseID: courseID, EnrolledAt: time.Now()}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func reloadCourse(t *testing.T, db *gorm.DB, id uint) model.Course {
	t.Helper()
	var c model.Course
	require.NoError(t, db.First(&c, id).Error)
	return c
}

func reloadEnrollment(t *testing.T, db *gorm.DB, id uint) model.Enrollment {
	t.Helper()
	var e model.Enrollment
	require.NoError(t, db.First(&e, id).Error)
	return e
}
