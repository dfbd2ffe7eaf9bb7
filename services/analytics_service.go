package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/aggregate"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"gorm.io/gorm"
)

// AnalyticsService builds instructor-facing course statistics
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db: db,
	}
}

// CourseStats summarises one course for its instructor
type CourseStats struct {
	CourseID        uint    `json:"courseId"`
	CourseTitle     string  `json:"courseTitle"`
	IsPublished     bool    `json:"isPublished"`
	EnrolledCount   int     `json:"enrolledCount"`
	CompletionRate  float64 `json:"completionRate"`
	AverageProgress float64 `json:"averageProgress"`
	AverageRating   float64 `json:"averageRating"`
	TotalReviews    int     `json:"totalReviews"`
	Revenue         float64 `json:"revenue"`
}

// InstructorOverview is the dashboard across all of an instructor's courses
type InstructorOverview struct {
	TotalCourses  int           `json:"totalCourses"`
	TotalStudents int           `json:"totalStudents"`
	TotalRevenue  float64       `json:"totalRevenue"`
	AverageRating float64       `json:"averageRating"`
	Courses       []CourseStats `json:"courses"`
}

// enrollmentStats holds the per-student completed counts of one course
type enrollmentStats struct {
	totalLessons    int
	completedCounts []int
}

func (s *AnalyticsService) loadEnrollmentStats(ctx context.Context, courseID uint) (*enrollmentStats, error) {
	var studentIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.Enrollment{}).Where("course_id = ?", courseID).Pluck("student_id", &studentIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load enrollments for course %d: %w", courseID, err)
	}
	total, err := countLessons(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}
	byStudent, err := completedCountsByStudent(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(studentIDs))
	for i, id := range studentIDs {
		counts[i] = byStudent[id]
	}
	return &enrollmentStats{totalLessons: total, completedCounts: counts}, nil
}

// InstructorOverview aggregates every course owned by instructorID
func (s *AnalyticsService) InstructorOverview(ctx context.Context, instructorID uint) (*InstructorOverview, error) {
	var courses []model.Course
	if err := s.db.WithContext(ctx).Where("instructor_id = ?", instructorID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}

	overview := &InstructorOverview{
		TotalCourses: len(courses),
		Courses:      make([]CourseStats, 0, len(courses)),
	}
	summaries := make([]aggregate.RatingSummary, 0, len(courses))
	revenue := 0.0

	for _, c := range courses {
		stats, err := s.loadEnrollmentStats(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		enrolled := len(stats.completedCounts)
		courseRevenue := aggregate.Revenue(c.Price, enrolled)

		overview.Courses = append(overview.Courses, CourseStats{
			CourseID:        c.ID,
			CourseTitle:     c.Title,
			IsPublished:     c.IsPublished,
			EnrolledCount:   enrolled,
			CompletionRate:  aggregate.CompletionRate(stats.completedCounts, stats.totalLessons),
			AverageProgress: aggregate.AverageProgress(stats.completedCounts, stats.totalLessons),
			AverageRating:   c.AverageRating,
			TotalReviews:    c.TotalReviews,
			Revenue:         courseRevenue,
		})

		overview.TotalStudents += enrolled
		revenue += c.Price * float64(enrolled)
		summaries = append(summaries, aggregate.RatingSummary{Average: c.AverageRating, Count: c.TotalReviews})
	}

	overview.TotalRevenue = aggregate.RoundTo(revenue, 2)
	overview.AverageRating = aggregate.WeightedAverageRating(summaries)
	return overview, nil
}

// LessonStats is the completion of one lesson across enrolled students
type LessonStats struct {
	LessonID       uint    `json:"lessonId"`
	LessonTitle    string  `json:"lessonTitle"`
	SectionTitle   string  `json:"sectionTitle"`
	LessonNumber   int     `json:"lessonNumber"`
	CompletedCount int     `json:"completedCount"`
	CompletionRate float64 `json:"completionRate"`
}

// ReviewStats is the rating breakdown of a course
type ReviewStats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int         `json:"totalReviews"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

// CourseSummary identifies the course an analytics report is about
type CourseSummary struct {
	ID         uint        `json:"id"`
	Title      string      `json:"title"`
	Instructor *model.User `json:"instructor,omitempty"`
}

// CourseAnalytics is the detailed report of a single course
type CourseAnalytics struct {
	Course          CourseSummary `json:"course"`
	EnrolledCount   int           `json:"enrolledCount"`
	CompletedCount  int           `json:"completedCount"`
	CompletionRate  float64       `json:"completionRate"`
	AverageProgress float64       `json:"averageProgress"`
	Lessons         []LessonStats `json:"lessons"`
	Reviews         ReviewStats   `json:"reviews"`
	Revenue         float64       `json:"revenue"`
}

// CourseAnalytics reports one course. Only its instructor or an admin may see it.
func (s *AnalyticsService) CourseAnalytics(ctx context.Context, caller access.Caller, courseID uint) (*CourseAnalytics, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Preload("Instructor").
		First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if !access.OwnerOrAdmin(caller, course.InstructorID).Allowed {
		return nil, apperror.Forbidden("Not authorized to view analytics for this course")
	}

	stats, err := s.loadEnrollmentStats(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled := len(stats.completedCounts)

	completedStudents := 0
	for _, n := range stats.completedCounts {
		if stats.totalLessons > 0 && n >= stats.totalLessons {
			completedStudents++
		}
	}

	lessonStats, err := s.lessonStats(ctx, courseID, enrolled)
	if err != nil {
		return nil, err
	}

	var ratings []int
	if err := s.db.WithContext(ctx).Model(&model.Review{}).Where("course_id = ?", courseID).Pluck("rating", &ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	return &CourseAnalytics{
		Course:          CourseSummary{ID: course.ID, Title: course.Title, Instructor: course.Instructor},
		EnrolledCount:   enrolled,
		CompletedCount:  completedStudents,
		CompletionRate:  aggregate.CompletionRate(stats.completedCounts, stats.totalLessons),
		AverageProgress: aggregate.AverageProgress(stats.completedCounts, stats.totalLessons),
		Lessons:         lessonStats,
		Reviews: ReviewStats{
			AverageRating:      course.AverageRating,
			TotalReviews:       course.TotalReviews,
			RatingDistribution: aggregate.RatingDistribution(ratings),
		},
		Revenue: aggregate.Revenue(course.Price, enrolled),
	}, nil
}

func (s *AnalyticsService) lessonStats(ctx context.Context, courseID uint, enrolled int) ([]LessonStats, error) {
	var lessons []model.Lesson
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Order("lesson_number ASC, id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to load lessons: %w", err)
	}

	var rows []struct {
		LessonID  uint
		Completed int
	}
	err := s.db.WithContext(ctx).
		Model(&model.Progress{}).
		Select("lesson_id, COUNT(*) AS completed").
		Where("course_id = ? AND completed = ?", courseID, true).
		Group("lesson_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count lesson completions: %w", err)
	}
	byLesson := make(map[uint]int, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r.Completed
	}

	out := make([]LessonStats, 0, len(lessons))
	for _, l := range lessons {
		done := byLesson[l.ID]
		out = append(out, LessonStats{
			LessonID:       l.ID,
			LessonTitle:    l.Title,
			SectionTitle:   l.SectionTitle,
			LessonNumber:   l.LessonNumber,
			CompletedCount: done,
			CompletionRate: aggregate.LessonCompletionRate(done, enrolled),
		})
	}
	return out, nil
}

// InstructorStats are the public figures shown on an instructor's profile
type InstructorStats struct {
	TotalCourses  int     `json:"totalCourses"`
	TotalStudents int     `json:"totalStudents"`
	AverageRating float64 `json:"averageRating"`
}

// InstructorPublicStats reads the cached course fields of an instructor's
// published courses.
func (s *AnalyticsService) InstructorPublicStats(ctx context.Context, instructorID uint) (*InstructorStats, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Select("id", "enrolled_count", "average_rating", "total_reviews").
		Where("instructor_id = ? AND is_published = ?", instructorID, true).
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load instructor courses: %w", err)
	}

	stats := &InstructorStats{TotalCourses: len(courses)}
	summaries := make([]aggregate.RatingSummary, 0, len(courses))
	for _, c := range courses {
		stats.TotalStudents += c.EnrolledCount
		summaries = append(summaries, aggregate.RatingSummary{Average: c.AverageRating, Count: c.TotalReviews})
	}
	stats.AverageRating = aggregate.WeightedAverageRating(summaries)
	return stats, nil
}
