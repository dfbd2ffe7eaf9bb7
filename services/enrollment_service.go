package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/aggregate"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"gorm.io/gorm"
)

// EnrollmentService manages the student to course link
type EnrollmentService struct {
	db  *gorm.DB
	log *utils.Logger
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, log *utils.Logger) *EnrollmentService {
	return &EnrollmentService{db: db, log: log}
}

// Enroll creates the enrollment and refreshes the course's enrolledCount.
// A second enrollment for the same pair is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error) {
	var course model.Course
	err := s.db.WithContext(ctx).Where("is_published = ?", true).First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	enrolled, err := IsEnrolled(ctx, s.db, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperror.Conflict("Already enrolled in this course")
	}

	enrollment := model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Already enrolled in this course")
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return NewCourseStatsService(tx, s.log).RecomputeEnrollmentCount(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrolledCourse is an enrollment with freshly computed progress
type EnrolledCourse struct {
	model.Enrollment
	CourseProgress   int `json:"courseProgress"`
	CompletedLessons int `json:"completedLessons"`
	TotalLessons     int `json:"totalLessons"`
}

// MyCourses lists the student's enrollments, newest first, and writes back
// any cached progress that drifted. Enrollments of deleted courses are skipped.
func (s *EnrollmentService) MyCourses(ctx context.Context, studentID uint) ([]EnrolledCourse, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar")
		}).
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	out := make([]EnrolledCourse, 0, len(enrollments))
	now := time.Now()
	for i := range enrollments {
		e := &enrollments[i]
		if e.Course == nil {
			continue
		}

		completed, err := completedCount(ctx, s.db, studentID, e.CourseID)
		if err != nil {
			return nil, err
		}
		total, err := countLessons(ctx, s.db, e.CourseID)
		if err != nil {
			return nil, err
		}
		percent := aggregate.ProgressPercent(completed, total)
		if err := applyProgress(ctx, s.db, e, percent, now); err != nil {
			return nil, err
		}

		out = append(out, EnrolledCourse{
			Enrollment:       *e,
			CourseProgress:   percent,
			CompletedLessons: completed,
			TotalLessons:     total,
		})
	}
	return out, nil
}

// Status returns the student's enrollment in a course, or nil
func (s *EnrollmentService) Status(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	return &enrollment, nil
}
