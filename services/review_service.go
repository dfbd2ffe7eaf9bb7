package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/aggregate"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"gorm.io/gorm"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// ReviewService stores reviews and keeps the course rating in sync.
// Every write is followed by a full rating recompute in the same transaction.
type ReviewService struct {
	db  *gorm.DB
	log *utils.Logger
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, log *utils.Logger) *ReviewService {
	return &ReviewService{db: db, log: log}
}

func checkReview(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return apperror.Validation("Rating must be between 1 and 5")
	}
	if len([]rune(comment)) > MaxCommentLength {
		return apperror.Validation("Comment cannot exceed 1000 characters")
	}
	return nil
}

// Create adds the caller's review. The caller must be enrolled and may
// review a course only once.
func (s *ReviewService) Create(ctx context.Context, caller access.Caller, courseID uint, rating int, comment string) (*model.Review, error) {
	if err := checkReview(rating, comment); err != nil {
		return nil, err
	}

	var course model.Course
	err := s.db.WithContext(ctx).Select("id").First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	enrolled, err := IsEnrolled(ctx, s.db, caller.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperror.Forbidden("You must be enrolled in this course to add a review")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Review{}).Where("student_id = ? AND course_id = ?", caller.ID, courseID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Conflict("You have already reviewed this course")
	}

	review := model.Review{
		StudentID: caller.ID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("You have already reviewed this course")
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		_, err := NewCourseStatsService(tx, s.log).RecomputeRating(ctx, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ReviewPage is one page of a course's reviews plus its rating breakdown
type ReviewPage struct {
	Reviews            []model.Review `json:"reviews"`
	Total              int64          `json:"-"`
	RatingDistribution map[int]int    `json:"ratingDistribution"`
	AverageRating      float64        `json:"averageRating"`
	TotalReviews       int            `json:"totalReviews"`
}

// List returns reviews newest first with the reviewer's public fields
func (s *ReviewService) List(ctx context.Context, courseID uint, page, limit int) (*ReviewPage, error) {
	var course model.Course
	err := s.db.WithContext(ctx).First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	base := s.db.WithContext(ctx).Model(&model.Review{}).Where("course_id = ?", courseID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []model.Review
	err = base.Session(&gorm.Session{}).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	var ratings []int
	if err := base.Session(&gorm.Session{}).Pluck("rating", &ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	return &ReviewPage{
		Reviews:            reviews,
		Total:              total,
		RatingDistribution: aggregate.RatingDistribution(ratings),
		AverageRating:      course.AverageRating,
		TotalReviews:       course.TotalReviews,
	}, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, caller access.Caller, reviewID uint, action string) (*model.Review, error) {
	var review model.Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if !access.OwnerOrAdmin(caller, review.StudentID).Allowed {
		return nil, apperror.Forbidden("Not authorized to %s this review", action)
	}
	return &review, nil
}

// Update changes rating and/or comment of a review owned by the caller
func (s *ReviewService) Update(ctx context.Context, caller access.Caller, reviewID uint, rating *int, comment *string) (*model.Review, error) {
	review, err := s.ownedReview(ctx, caller, reviewID, "update")
	if err != nil {
		return nil, err
	}

	if rating != nil {
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = *comment
	}
	if err := checkReview(review.Rating, review.Comment); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(review).Updates(map[string]interface{}{
			"rating":  review.Rating,
			"comment": review.Comment,
		}).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		_, err := NewCourseStatsService(tx, s.log).RecomputeRating(ctx, review.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review owned by the caller and recomputes the rating
func (s *ReviewService) Delete(ctx context.Context, caller access.Caller, reviewID uint) error {
	review, err := s.ownedReview(ctx, caller, reviewID, "delete")
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		_, err := NewCourseStatsService(tx, s.log).RecomputeRating(ctx, review.CourseID)
		return err
	})
}
