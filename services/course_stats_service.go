package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/aggregate"
	"github.com/sahilchouksey/learnhub-api/utils"
	"gorm.io/gorm"
)

// CourseStatsService owns the derived fields on Course and Enrollment.
// Every method is a full recomputation from the child rows, so calling it
// twice, or after a crash midway, converges on the same values.
type CourseStatsService struct {
	db  *gorm.DB
	log *utils.Logger
}

// NewCourseStatsService creates a new course stats service
func NewCourseStatsService(db *gorm.DB, log *utils.Logger) *CourseStatsService {
	return &CourseStatsService{db: db, log: log}
}

// WithTx returns a copy bound to tx so recomputation joins the caller's transaction
func (s *CourseStatsService) WithTx(tx *gorm.DB) *CourseStatsService {
	return &CourseStatsService{db: tx, log: s.log}
}

// RecomputeLessonStats sets duration and totalLessons from the course's lessons
func (s *CourseStatsService) RecomputeLessonStats(ctx context.Context, courseID uint) error {
	var stats struct {
		Total    int64
		Duration int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.Lesson{}).
		Select("COUNT(*) AS total, COALESCE(SUM(duration), 0) AS duration").
		Where("course_id = ?", courseID).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate lessons for course %d: %w", courseID, err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumns(map[string]interface{}{
			"total_lessons": stats.Total,
			"duration":      stats.Duration,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update lesson stats for course %d: %w", courseID, err)
	}
	return nil
}

// RecomputeEnrollmentCount sets enrolledCount to the number of enrollment rows
func (s *CourseStatsService) RecomputeEnrollmentCount(ctx context.Context, courseID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count enrollments for course %d: %w", courseID, err)
	}

	err := s.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("enrolled_count", count).Error
	if err != nil {
		return fmt.Errorf("failed to update enrolled count for course %d: %w", courseID, err)
	}
	return nil
}

// RecomputeRating rescans every review of the course and overwrites
// averageRating and totalReviews. A course without reviews gets 0 and 0.
func (s *CourseStatsService) RecomputeRating(ctx context.Context, courseID uint) (aggregate.RatingSummary, error) {
	ratings, err := s.ratings(ctx, courseID)
	if err != nil {
		return aggregate.RatingSummary{}, err
	}
	summary := aggregate.SummarizeRatings(ratings)

	err = s.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumns(map[string]interface{}{
			"average_rating": summary.Average,
			"total_reviews":  summary.Count,
		}).Error
	if err != nil {
		return aggregate.RatingSummary{}, fmt.Errorf("failed to update rating for course %d: %w", courseID, err)
	}
	return summary, nil
}

func (s *CourseStatsService) ratings(ctx context.Context, courseID uint) ([]int, error) {
	var ratings []int
	err := s.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("course_id = ?", courseID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for course %d: %w", courseID, err)
	}
	return ratings, nil
}

// RefreshEnrollmentProgress recomputes the cached progress of every
// enrollment in the course. Used after the curriculum changes.
func (s *CourseStatsService) RefreshEnrollmentProgress(ctx context.Context, courseID uint) error {
	total, err := countLessons(ctx, s.db, courseID)
	if err != nil {
		return err
	}
	counts, err := completedCountsByStudent(ctx, s.db, courseID)
	if err != nil {
		return err
	}

	var enrollments []model.Enrollment
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return fmt.Errorf("failed to load enrollments for course %d: %w", courseID, err)
	}

	now := time.Now()
	for i := range enrollments {
		e := &enrollments[i]
		if err := applyProgress(ctx, s.db, e, aggregate.ProgressPercent(counts[e.StudentID], total), now); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeCourse rebuilds every derived field of one course
func (s *CourseStatsService) RecomputeCourse(ctx context.Context, courseID uint) error {
	if err := s.RecomputeLessonStats(ctx, courseID); err != nil {
		return err
	}
	if err := s.RecomputeEnrollmentCount(ctx, courseID); err != nil {
		return err
	}
	if _, err := s.RecomputeRating(ctx, courseID); err != nil {
		return err
	}
	return s.RefreshEnrollmentProgress(ctx, courseID)
}

// RecomputeAll reconciles every course and returns how many were processed.
// A failing course is logged and skipped.
func (s *CourseStatsService) RecomputeAll(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&model.Course{}).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list courses: %w", err)
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := s.RecomputeCourse(ctx, id); err != nil {
			s.log.Error("course recompute failed", "course_id", id, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// countLessons counts the lessons currently in a course
func countLessons(ctx context.Context, db *gorm.DB, courseID uint) (int, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count lessons for course %d: %w", courseID, err)
	}
	return int(total), nil
}

// completedCountsByStudent maps student id to completed lesson count in a course.
// Only lessons that still exist are counted.
func completedCountsByStudent(ctx context.Context, db *gorm.DB, courseID uint) (map[uint]int, error) {
	var rows []struct {
		StudentID uint
		Completed int
	}
	err := db.WithContext(ctx).
		Table("progress").
		Select("progress.student_id AS student_id, COUNT(*) AS completed").
		Joins("JOIN lessons ON lessons.id = progress.lesson_id AND lessons.course_id = progress.course_id").
		Where("progress.course_id = ? AND progress.completed = ?", courseID, true).
		Group("progress.student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed lessons for course %d: %w", courseID, err)
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.StudentID] = r.Completed
	}
	return counts, nil
}

// completedCount counts one student's completed lessons in a course
func completedCount(ctx context.Context, db *gorm.DB, studentID, courseID uint) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("progress").
		Joins("JOIN lessons ON lessons.id = progress.lesson_id AND lessons.course_id = progress.course_id").
		Where("progress.student_id = ? AND progress.course_id = ? AND progress.completed = ?", studentID, courseID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return int(count), nil
}

// applyProgress writes percent into the enrollment. completedAt is stamped
// only the first time the course reaches 100 and is never cleared.
func applyProgress(ctx context.Context, db *gorm.DB, e *model.Enrollment, percent int, now time.Time) error {
	updates := map[string]interface{}{}
	if e.Progress != percent {
		updates["progress"] = percent
		e.Progress = percent
	}
	if percent == 100 && e.CompletedAt == nil {
		updates["completed_at"] = now
		e.CompletedAt = &now
	}
	if len(updates) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Model(&model.Enrollment{}).Where("id = ?", e.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update enrollment %d: %w", e.ID, err)
	}
	return nil
}
