package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/aggregate"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"gorm.io/gorm"
)

// ProgressService records lesson completion and derives course progress
type ProgressService struct {
	db  *gorm.DB
	log *utils.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(db *gorm.DB, log *utils.Logger) *ProgressService {
	return &ProgressService{db: db, log: log}
}

// CompletionResult is returned after a lesson is marked complete
type CompletionResult struct {
	Progress         model.Progress `json:"progress"`
	CourseProgress   int            `json:"courseProgress"`
	CompletedLessons int            `json:"completedLessons"`
	TotalLessons     int            `json:"totalLessons"`
}

// MarkLessonComplete upserts the student's progress row for a lesson and
// refreshes the enrollment's cached percentage. Repeating the call is safe.
func (s *ProgressService) MarkLessonComplete(ctx context.Context, studentID, courseID, lessonID uint, timeSpent int) (*CompletionResult, error) {
	if timeSpent < 0 {
		return nil, apperror.Validation("timeSpent cannot be negative")
	}

	var result *CompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment model.Enrollment
		err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Forbidden("Not enrolled in this course")
		}
		if err != nil {
			return fmt.Errorf("failed to load enrollment: %w", err)
		}

		var lesson model.Lesson
		err = tx.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Lesson not found in this course")
		}
		if err != nil {
			return fmt.Errorf("failed to load lesson: %w", err)
		}

		now := time.Now()
		progress, err := upsertCompletion(tx, studentID, courseID, lessonID, timeSpent, now)
		if err != nil {
			return err
		}

		completed, err := completedCount(ctx, tx, studentID, courseID)
		if err != nil {
			return err
		}
		total, err := countLessons(ctx, tx, courseID)
		if err != nil {
			return err
		}
		percent := aggregate.ProgressPercent(completed, total)

		if err := applyProgress(ctx, tx, &enrollment, percent, now); err != nil {
			return err
		}

		result = &CompletionResult{
			Progress:         *progress,
			CourseProgress:   percent,
			CompletedLessons: completed,
			TotalLessons:     total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// upsertCompletion creates or updates the (student, lesson) progress row.
// An existing completed row keeps its completedAt; otherwise it is set to now.
func upsertCompletion(tx *gorm.DB, studentID, courseID, lessonID uint, timeSpent int, now time.Time) (*model.Progress, error) {
	var progress model.Progress
	err := tx.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).First(&progress).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = model.Progress{
			StudentID:      studentID,
			CourseID:       courseID,
			LessonID:       lessonID,
			Completed:      true,
			CompletedAt:    &now,
			TimeSpent:      timeSpent,
			LastAccessedAt: now,
		}
		// The savepoint keeps the outer transaction usable if the insert loses a race.
		err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&progress).Error
		})
		if err == nil {
			return &progress, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create progress: %w", err)
		}
		// A concurrent request created the row first; its completion stands.
		var winner model.Progress
		if err := tx.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).First(&winner).Error; err != nil {
			return nil, fmt.Errorf("failed to reload progress: %w", err)
		}
		return &winner, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	total := progress.TimeSpent + timeSpent
	updates := map[string]interface{}{
		"last_accessed_at": now,
		"time_spent":       total,
	}
	if !progress.Completed || progress.CompletedAt == nil {
		updates["completed"] = true
		updates["completed_at"] = now
		progress.Completed = true
		progress.CompletedAt = &now
	}
	if err := tx.Model(&progress).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	progress.LastAccessedAt = now
	progress.TimeSpent = total
	return &progress, nil
}

// LessonProgress is one row of a course progress report
type LessonProgress struct {
	LessonID     uint       `json:"lessonId"`
	Title        string     `json:"title"`
	SectionTitle string     `json:"sectionTitle"`
	LessonNumber int        `json:"lessonNumber"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
	TimeSpent    int        `json:"timeSpent"`
}

// CourseProgressReport is a student's progress through one course
type CourseProgressReport struct {
	CourseID         uint             `json:"courseId"`
	StudentID        uint             `json:"studentId"`
	Progress         int              `json:"progress"`
	CompletedLessons int              `json:"completedLessons"`
	TotalLessons     int              `json:"totalLessons"`
	Lessons          []LessonProgress `json:"lessons"`
}

// CourseProgress reports a student's per-lesson state in a course. The
// caller must be the enrolled student, the course instructor or an admin.
// studentID selects whose progress an instructor or admin is looking at and
// defaults to the caller.
func (s *ProgressService) CourseProgress(ctx context.Context, caller access.Caller, courseID, studentID uint) (*CourseProgressReport, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).Select("id", "instructor_id").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Course not found")
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if studentID == 0 || studentID == caller.ID {
		studentID = caller.ID
	} else if !access.OwnerOrAdmin(caller, course.InstructorID).Allowed {
		return nil, apperror.Forbidden("Not authorized to view this student's progress")
	}

	enrolled, err := IsEnrolled(ctx, s.db, caller.ID, courseID)
	if err != nil {
		return nil, err
	}
	if decision := access.EnrolledOrPrivileged(caller, course.InstructorID, enrolled); !decision.Allowed {
		return nil, apperror.Forbidden("%s", decision.Reason)
	}

	var lessons []model.Lesson
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Order("lesson_number ASC, id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to load lessons: %w", err)
	}

	var rows []model.Progress
	if err := s.db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	byLesson := make(map[uint]model.Progress, len(rows))
	for _, p := range rows {
		byLesson[p.LessonID] = p
	}

	report := &CourseProgressReport{
		CourseID:     courseID,
		StudentID:    studentID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonProgress, 0, len(lessons)),
	}
	for _, l := range lessons {
		p, ok := byLesson[l.ID]
		item := LessonProgress{
			LessonID:     l.ID,
			Title:        l.Title,
			SectionTitle: l.SectionTitle,
			LessonNumber: l.LessonNumber,
		}
		if ok {
			item.Completed = p.Completed
			item.CompletedAt = p.CompletedAt
			item.TimeSpent = p.TimeSpent
			if p.Completed {
				report.CompletedLessons++
			}
		}
		report.Lessons = append(report.Lessons, item)
	}
	report.Progress = aggregate.ProgressPercent(report.CompletedLessons, report.TotalLessons)
	return report, nil
}

// CourseOverview is one enrolled course in a progress overview
type CourseOverview struct {
	CourseID         uint       `json:"courseId"`
	Title            string     `json:"title"`
	Thumbnail        string     `json:"thumbnail"`
	Progress         int        `json:"progress"`
	CompletedLessons int        `json:"completedLessons"`
	TotalLessons     int        `json:"totalLessons"`
	IsCompleted      bool       `json:"isCompleted"`
	EnrolledAt       time.Time  `json:"enrolledAt"`
	CompletedAt      *time.Time `json:"completedAt"`
}

// ProgressOverview summarises every course a student is enrolled in
type ProgressOverview struct {
	TotalCourses      int              `json:"totalCourses"`
	CompletedCourses  int              `json:"completedCourses"`
	InProgressCourses int              `json:"inProgressCourses"`
	Courses           []CourseOverview `json:"courses"`
}

// Overview recomputes progress for each of the student's enrollments
func (s *ProgressService) Overview(ctx context.Context, studentID uint) (*ProgressOverview, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	overview := &ProgressOverview{Courses: make([]CourseOverview, 0, len(enrollments))}
	now := time.Now()
	for i := range enrollments {
		e := &enrollments[i]
		if e.Course == nil {
			// course was deleted; the enrollment stays for history
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

		item := CourseOverview{
			CourseID:         e.CourseID,
			Title:            e.Course.Title,
			Thumbnail:        e.Course.Thumbnail,
			Progress:         percent,
			CompletedLessons: completed,
			TotalLessons:     total,
			IsCompleted:      percent == 100,
			EnrolledAt:       e.EnrolledAt,
			CompletedAt:      e.CompletedAt,
		}
		overview.Courses = append(overview.Courses, item)
		if item.IsCompleted {
			overview.CompletedCourses++
		} else {
			overview.InProgressCourses++
		}
	}
	overview.TotalCourses = len(overview.Courses)
	return overview, nil
}

// IsEnrolled reports whether a student has an enrollment in the course
func IsEnrolled(ctx context.Context, db *gorm.DB, studentID, courseID uint) (bool, error) {
	if studentID == 0 {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}
