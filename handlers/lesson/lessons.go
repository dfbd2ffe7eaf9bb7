package lesson

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

// LessonHandler handles curriculum requests
type LessonHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	stats     *services.CourseStatsService
	log       *utils.Logger
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(db *gorm.DB, stats *services.CourseStatsService, log *utils.Logger) *LessonHandler {
	return &LessonHandler{
		db:        db,
		validator: validation.NewValidator(),
		stats:     stats,
		log:       log,
	}
}

// CreateLessonRequest represents the request body for adding a lesson
type CreateLessonRequest struct {
	SectionTitle string `json:"sectionTitle" validate:"required,max=200"`
	LessonNumber int    `json:"lessonNumber" validate:"required,min=1"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description"`
	ContentType  string `json:"contentType" validate:"omitempty,oneof=video text quiz"`
	VideoURL     string `json:"videoUrl" validate:"omitempty,url"`
	TextContent  string `json:"textContent"`
	Duration     int    `json:"duration" validate:"gte=0"`
	IsPreview    bool   `json:"isPreview"`
}

// UpdateLessonRequest lists the lesson fields an author may change
type UpdateLessonRequest struct {
	SectionTitle *string `json:"sectionTitle" column:"section_title" validate:"omitempty,min=1,max=200"`
	LessonNumber *int    `json:"lessonNumber" column:"lesson_number" validate:"omitempty,min=1"`
	Title        *string `json:"title" column:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" column:"description"`
	ContentType  *string `json:"contentType" column:"content_type" validate:"omitempty,oneof=video text quiz"`
	VideoURL     *string `json:"videoUrl" column:"video_url" validate:"omitempty,url"`
	TextContent  *string `json:"textContent" column:"text_content"`
	Duration     *int    `json:"duration" column:"duration" validate:"omitempty,gte=0"`
	IsPreview    *bool   `json:"isPreview" column:"is_preview"`
}

// contentError checks that a lesson carries the content its type needs
func contentError(contentType, videoURL, textContent string) string {
	switch contentType {
	case model.ContentVideo:
		if videoURL == "" {
			return "Please provide videoUrl for video content"
		}
	case model.ContentText:
		if textContent == "" {
			return "Please provide textContent for text content"
		}
	}
	return ""
}

func (h *LessonHandler) findCourse(c *fiber.Ctx, id uint) (*model.Course, error) {
	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Course not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch course")
	}
	return &course, nil
}

// findLesson loads a lesson together with its (non-deleted) course
func (h *LessonHandler) findLesson(c *fiber.Ctx) (*model.Lesson, *model.Course, error) {
	id, ok := query.ParseID(c.Params("id"))
	if !ok {
		return nil, nil, response.BadRequest(c, "Invalid lesson ID")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NotFound(c, "Lesson not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to fetch lesson")
	}

	course, err := h.findCourse(c, lesson.CourseID)
	if course == nil {
		return nil, nil, err
	}
	return &lesson, course, nil
}

// refreshCourse recomputes what a curriculum change affects
func (h *LessonHandler) refreshCourse(c *fiber.Ctx, tx *gorm.DB, courseID uint) error {
	stats := h.stats.WithTx(tx)
	if err := stats.RecomputeLessonStats(c.UserContext(), courseID); err != nil {
		return err
	}
	return stats.RefreshEnrollmentProgress(c.UserContext(), courseID)
}

// ListLessons handles GET /api/courses/:courseId/lessons. Content is never included.
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.findCourse(c, courseID)
	if course == nil {
		return err
	}
	if !course.IsPublished && !access.OwnerOrAdmin(middleware.GetCaller(c), course.InstructorID).Allowed {
		return response.NotFound(c, "Course not found")
	}

	var lessons []model.Lesson
	if err := h.db.Where("course_id = ?", courseID).Order("lesson_number ASC, id ASC").Find(&lessons).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch lessons")
	}
	for i := range lessons {
		lessons[i] = lessons[i].WithoutContent()
	}

	return response.Success(c, fiber.Map{"lessons": lessons})
}

// GetLesson handles GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	lesson, course, err := h.findLesson(c)
	if lesson == nil {
		return err
	}

	caller := middleware.GetCaller(c)
	enrolled, err := services.IsEnrolled(c.UserContext(), h.db, caller.ID, course.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check enrollment")
	}

	decision := access.CanViewLessonContent(caller, course.InstructorID, enrolled, lesson.IsPreview)
	if !decision.Allowed {
		return response.Forbidden(c, "You must be enrolled in this course to view this lesson")
	}

	lesson.Course = course
	return response.Success(c, fiber.Map{"lesson": lesson})
}

// CreateLesson handles POST /api/courses/:courseId/lessons
func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.findCourse(c, courseID)
	if course == nil {
		return err
	}
	if !access.OwnerOrAdmin(middleware.GetCaller(c), course.InstructorID).Allowed {
		return response.Forbidden(c, "Not authorized to add lessons to this course")
	}

	var req CreateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}
	if req.ContentType == "" {
		req.ContentType = model.ContentVideo
	}
	if msg := contentError(req.ContentType, req.VideoURL, req.TextContent); msg != "" {
		return response.ValidationError(c, msg, nil)
	}

	lesson := model.Lesson{
		CourseID:     course.ID,
		SectionTitle: req.SectionTitle,
		LessonNumber: req.LessonNumber,
		Title:        req.Title,
		Description:  req.Description,
		ContentType:  req.ContentType,
		VideoURL:     req.VideoURL,
		TextContent:  req.TextContent,
		Duration:     req.Duration,
		IsPreview:    req.IsPreview,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}
		return h.refreshCourse(c, tx, course.ID)
	})
	if err != nil {
		h.log.Error("failed to create lesson", "course_id", course.ID, "error", err)
		return response.InternalServerError(c, "Failed to create lesson")
	}

	return response.Created(c, "Lesson created successfully", fiber.Map{"lesson": lesson})
}

// UpdateLesson handles PUT /api/lessons/:id
func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	lesson, course, err := h.findLesson(c)
	if lesson == nil {
		return err
	}
	if !access.OwnerOrAdmin(middleware.GetCaller(c), course.InstructorID).Allowed {
		return response.Forbidden(c, "Not authorized to update this lesson")
	}

	var req UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	contentType, videoURL, textContent := lesson.ContentType, lesson.VideoURL, lesson.TextContent
	if req.ContentType != nil {
		contentType = *req.ContentType
	}
	if req.VideoURL != nil {
		videoURL = *req.VideoURL
	}
	if req.TextContent != nil {
		textContent = *req.TextContent
	}
	if msg := contentError(contentType, videoURL, textContent); msg != "" {
		return response.ValidationError(c, msg, nil)
	}

	updates := query.UpdateColumns(&req)
	if len(updates) > 0 {
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(lesson).Updates(updates).Error; err != nil {
				return err
			}
			if req.Duration == nil {
				return nil
			}
			return h.stats.WithTx(tx).RecomputeLessonStats(c.UserContext(), course.ID)
		})
		if err != nil {
			h.log.Error("failed to update lesson", "lesson_id", lesson.ID, "error", err)
			return response.InternalServerError(c, "Failed to update lesson")
		}
	}

	if err := h.db.First(lesson, lesson.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch updated lesson")
	}

	return response.SuccessWithMessage(c, "Lesson updated successfully", fiber.Map{"lesson": lesson})
}

// DeleteLesson handles DELETE /api/lessons/:id
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	lesson, course, err := h.findLesson(c)
	if lesson == nil {
		return err
	}
	if !access.OwnerOrAdmin(middleware.GetCaller(c), course.InstructorID).Allowed {
		return response.Forbidden(c, "Not authorized to delete this lesson")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(lesson).Error; err != nil {
			return err
		}
		return h.refreshCourse(c, tx, course.ID)
	})
	if err != nil {
		h.log.Error("failed to delete lesson", "lesson_id", lesson.ID, "error", err)
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	return response.SuccessWithMessage(c, "Lesson deleted successfully", nil)
}
