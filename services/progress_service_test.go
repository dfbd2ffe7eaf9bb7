package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkLessonCompleteTracksCourseProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	lessons := createLessons(t, db, course.ID, 4)
	enrollment := enroll(t, db, student.ID, course.ID)

	res, err := svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, res.CourseProgress)
	assert.Equal(t, 1, res.CompletedLessons)
	assert.Equal(t, 4, res.TotalLessons)
	require.NotNil(t, res.Progress.CompletedAt)
	firstCompletedAt := *res.Progress.CompletedAt

	res, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[1].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, res.CourseProgress)
	assert.Nil(t, reloadEnrollment(t, db, enrollment.ID).CompletedAt)

	// Repeating a completion changes nothing but the access time and time spent
	res, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 50, res.CourseProgress)
	assert.Equal(t, 8, res.Progress.TimeSpent)
	require.NotNil(t, res.Progress.CompletedAt)
	assert.True(t, firstCompletedAt.Equal(*res.Progress.CompletedAt))

	var rows int64
	require.NoError(t, db.Model(&model.Progress{}).Where("student_id = ? AND course_id = ?", student.ID, course.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, 50, reloadEnrollment(t, db, enrollment.ID).Progress)

	for _, l := range lessons[2:] {
		_, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, l.ID, 0)
		require.NoError(t, err)
	}
	done := reloadEnrollment(t, db, enrollment.ID)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.CompletedAt)

	_, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[3].ID, 0)
	require.NoError(t, err)
	again := reloadEnrollment(t, db, enrollment.ID)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(*again.CompletedAt), "course completion time is stamped once")
}

func TestMarkLessonCompleteAccumulatesTimeSpentOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	lessons := createLessons(t, db, course.ID, 1)
	enroll(t, db, student.ID, course.ID)

	res, err := svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Progress.TimeSpent)

	res, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Progress.TimeSpent)

	var stored model.Progress
	require.NoError(t, db.Where("student_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).First(&stored).Error)
	assert.Equal(t, 8, stored.TimeSpent)
	assert.Equal(t, res.Progress.TimeSpent, stored.TimeSpent)
}

func TestMarkLessonCompleteRejections(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	other := createCourse(t, db, instructor.ID, 10)
	lessons := createLessons(t, db, course.ID, 2)
	foreign := createLessons(t, db, other.ID, 1)

	_, err := svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, 0)
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "not enrolled")

	enroll(t, db, student.ID, course.ID)

	_, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, foreign[0].ID, 0)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "lesson from another course")

	_, err = svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[0].ID, -1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	var rows int64
	require.NoError(t, db.Model(&model.Progress{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestCourseProgressAccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	outsider := createUser(t, db, model.RoleStudent)
	admin := createUser(t, db, model.RoleAdmin)
	course := createCourse(t, db, instructor.ID, 10)
	lessons := createLessons(t, db, course.ID, 3)
	enroll(t, db, student.ID, course.ID)

	_, err := svc.MarkLessonComplete(ctx, student.ID, course.ID, lessons[1].ID, 0)
	require.NoError(t, err)

	report, err := svc.CourseProgress(ctx, access.FromUser(&student), course.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 33, report.Progress)
	assert.Equal(t, 1, report.CompletedLessons)
	require.Len(t, report.Lessons, 3)
	assert.False(t, report.Lessons[0].Completed)
	assert.True(t, report.Lessons[1].Completed)

	_, err = svc.CourseProgress(ctx, access.FromUser(&outsider), course.ID, 0)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.CourseProgress(ctx, access.FromUser(&outsider), course.ID, student.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "students cannot read each other's progress")

	viewed, err := svc.CourseProgress(ctx, access.FromUser(&instructor), course.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, viewed.Progress)

	_, err = svc.CourseProgress(ctx, access.FromUser(&admin), course.ID, 0)
	assert.NoError(t, err)

	_, err = svc.CourseProgress(ctx, access.FromUser(&admin), 9999, 0)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestOverview(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProgressService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)

	half := createCourse(t, db, instructor.ID, 10)
	halfLessons := createLessons(t, db, half.ID, 4)
	full := createCourse(t, db, instructor.ID, 20)
	fullLessons := createLessons(t, db, full.ID, 1)
	empty := createCourse(t, db, instructor.ID, 0)

	enroll(t, db, student.ID, half.ID)
	enroll(t, db, student.ID, full.ID)
	enroll(t, db, student.ID, empty.ID)

	for _, l := range halfLessons[:2] {
		_, err := svc.MarkLessonComplete(ctx, student.ID, half.ID, l.ID, 0)
		require.NoError(t, err)
	}
	_, err := svc.MarkLessonComplete(ctx, student.ID, full.ID, fullLessons[0].ID, 0)
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalCourses)
	assert.Equal(t, 1, overview.CompletedCourses)
	assert.Equal(t, 2, overview.InProgressCourses)

	byCourse := map[uint]CourseOverview{}
	for _, c := range overview.Courses {
		byCourse[c.CourseID] = c
	}
	assert.Equal(t, 50, byCourse[half.ID].Progress)
	assert.False(t, byCourse[half.ID].IsCompleted)
	assert.Equal(t, 100, byCourse[full.ID].Progress)
	assert.True(t, byCourse[full.ID].IsCompleted)
	assert.Equal(t, 0, byCourse[empty.ID].Progress, "a course without lessons is 0%")
}
