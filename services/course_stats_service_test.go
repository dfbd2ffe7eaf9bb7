package services

import (
	"context"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCourseStatsService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	course := createCourse(t, db, instructor.ID, 10)

	summary, err := svc.RecomputeRating(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.Zero(t, reloadCourse(t, db, course.ID).AverageRating)

	ratings := []int{5, 4, 4}
	reviews := make([]model.Review, len(ratings))
	for i, r := range ratings {
		student := createUser(t, db, model.RoleStudent)
		reviews[i] = model.Review{StudentID: student.ID, CourseID: course.ID, Rating: r}
		require.NoError(t, db.Create(&reviews[i]).Error)
	}

	_, err = svc.RecomputeRating(ctx, course.ID)
	require.NoError(t, err)
	got := reloadCourse(t, db, course.ID)
	assert.Equal(t, 4.3, got.AverageRating)
	assert.Equal(t, 3, got.TotalReviews)

	// Recomputing again yields the same values
	_, err = svc.RecomputeRating(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, got.AverageRating, reloadCourse(t, db, course.ID).AverageRating)

	for _, r := range reviews {
		require.NoError(t, db.Delete(&r).Error)
	}
	_, err = svc.RecomputeRating(ctx, course.ID)
	require.NoError(t, err)
	got = reloadCourse(t, db, course.ID)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.TotalReviews)
}

func TestRecomputeLessonStatsAndEnrollmentCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCourseStatsService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	course := createCourse(t, db, instructor.ID, 10)
	createLessons(t, db, course.ID, 3)
	for i := 0; i < 2; i++ {
		enroll(t, db, createUser(t, db, model.RoleStudent).ID, course.ID)
	}

	require.NoError(t, svc.RecomputeLessonStats(ctx, course.ID))
	require.NoError(t, svc.RecomputeEnrollmentCount(ctx, course.ID))

	got := reloadCourse(t, db, course.ID)
	assert.Equal(t, 3, got.TotalLessons)
	assert.Equal(t, 30, got.Duration)
	assert.Equal(t, 2, got.EnrolledCount)
}

func TestRefreshEnrollmentProgressAfterCurriculumChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	stats := NewCourseStatsService(db, utils.NewNopLogger())
	progress := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	lessons := createLessons(t, db, course.ID, 2)
	enrollment := enroll(t, db, student.ID, course.ID)

	for _, l := range lessons {
		_, err := progress.MarkLessonComplete(ctx, student.ID, course.ID, l.ID, 0)
		require.NoError(t, err)
	}
	completed := reloadEnrollment(t, db, enrollment.ID)
	require.Equal(t, 100, completed.Progress)
	require.NotNil(t, completed.CompletedAt)

	// A third lesson drops progress to 67% but the completion stays recorded
	createLessons(t, db, course.ID, 1)
	require.NoError(t, stats.RefreshEnrollmentProgress(ctx, course.ID))

	after := reloadEnrollment(t, db, enrollment.ID)
	assert.Equal(t, 67, after.Progress)
	require.NotNil(t, after.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(*after.CompletedAt))
}

func TestRecomputeAllRepairsDrift(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCourseStatsService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	course := createCourse(t, db, instructor.ID, 10)
	createLessons(t, db, course.ID, 2)
	student := createUser(t, db, model.RoleStudent)
	enroll(t, db, student.ID, course.ID)
	require.NoError(t, db.Create(&model.Review{StudentID: student.ID, CourseID: course.ID, Rating: 5, CreatedAt: time.Now()}).Error)

	// Simulate caches left stale by an interrupted request
	require.NoError(t, db.Model(&model.Course{}).Where("id = ?", course.ID).UpdateColumns(map[string]interface{}{
		"enrolled_count": 42,
		"average_rating": 1.0,
		"total_reviews":  9,
		"total_lessons":  0,
	}).Error)

	n, err := svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := reloadCourse(t, db, course.ID)
	assert.Equal(t, 1, got.EnrolledCount)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, 2, got.TotalLessons)
	assert.Equal(t, 20, got.Duration)
}
