package services

import (
	"context"
	"strings"
	"testing"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycleKeepsRatingInSync(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReviewService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	enroll(t, db, student.ID, course.ID)
	caller := access.FromUser(&student)

	review, err := svc.Create(ctx, caller, course.ID, 5, "Great")
	require.NoError(t, err)
	got := reloadCourse(t, db, course.ID)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.TotalReviews)

	_, err = svc.Create(ctx, caller, course.ID, 4, "again")
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	two := 2
	_, err = svc.Update(ctx, caller, review.ID, &two, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, reloadCourse(t, db, course.ID).AverageRating)

	require.NoError(t, svc.Delete(ctx, caller, review.ID))
	got = reloadCourse(t, db, course.ID)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.TotalReviews)
}

func TestCreateReviewRejections(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReviewService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	student := createUser(t, db, model.RoleStudent)
	course := createCourse(t, db, instructor.ID, 10)
	caller := access.FromUser(&student)

	_, err := svc.Create(ctx, caller, course.ID, 5, "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "not enrolled")

	enroll(t, db, student.ID, course.ID)
	for _, rating := range []int{0, 6} {
		_, err = svc.Create(ctx, caller, course.ID, rating, "")
		assert.True(t, apperror.Is(err, apperror.KindValidation), "rating %d", rating)
	}

	_, err = svc.Create(ctx, caller, course.ID, 3, strings.Repeat("x", MaxCommentLength+1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, caller, 4242, 3, "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestReviewOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReviewService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	author := createUser(t, db, model.RoleStudent)
	other := createUser(t, db, model.RoleStudent)
	admin := createUser(t, db, model.RoleAdmin)
	course := createCourse(t, db, instructor.ID, 10)
	enroll(t, db, author.ID, course.ID)

	review, err := svc.Create(ctx, access.FromUser(&author), course.ID, 4, "ok")
	require.NoError(t, err)

	comment := "edited by someone else"
	_, err = svc.Update(ctx, access.FromUser(&other), review.ID, nil, &comment)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.True(t, apperror.Is(svc.Delete(ctx, access.FromUser(&instructor), review.ID), apperror.KindForbidden))

	var stored model.Review
	require.NoError(t, db.First(&stored, review.ID).Error)
	assert.Equal(t, "ok", stored.Comment)

	require.NoError(t, svc.Delete(ctx, access.FromUser(&admin), review.ID))
	assert.True(t, apperror.Is(svc.Delete(ctx, access.FromUser(&admin), review.ID), apperror.KindNotFound))
}

func TestListReviews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewReviewService(db, utils.NewNopLogger())

	instructor := createUser(t, db, model.RoleInstructor)
	course := createCourse(t, db, instructor.ID, 10)
	for _, r := range []int{5, 5, 3} {
		student := createUser(t, db, model.RoleStudent)
		enroll(t, db, student.ID, course.ID)
		_, err := svc.Create(ctx, access.FromUser(&student), course.ID, r, "")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, course.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 4.3, page.AverageRating)
	assert.Equal(t, 3, page.TotalReviews)
	assert.Equal(t, map[int]int{5: 2, 4: 0, 3: 1, 2: 0, 1: 0}, page.RatingDistribution)
	require.NotNil(t, page.Reviews[0].Student)
	assert.Empty(t, page.Reviews[0].Student.Email)

	page, err = svc.List(ctx, course.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 1)

	_, err = svc.List(ctx, 777, 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
