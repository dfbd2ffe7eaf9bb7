package progress

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// ProgressHandler handles lesson progress requests
type ProgressHandler struct {
	progress  *services.ProgressService
	validator *validation.Validator
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		validator: validation.NewValidator(),
	}
}

// CompleteRequest marks one lesson complete. TimeSpent is in minutes.
type CompleteRequest struct {
	CourseID  uint `json:"courseId" validate:"required"`
	LessonID  uint `json:"lessonId" validate:"required"`
	TimeSpent int  `json:"timeSpent" validate:"gte=0"`
}

// Complete handles POST /api/progress/complete
func (h *ProgressHandler) Complete(c *fiber.Ctx) error {
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	result, err := h.progress.MarkLessonComplete(c.UserContext(), middleware.GetCaller(c).ID, req.CourseID, req.LessonID, req.TimeSpent)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "Lesson marked as complete", result)
}

// CourseProgress handles GET /api/progress/course/:courseId.
// Instructors and admins may pass ?studentId= to inspect a student.
func (h *ProgressHandler) CourseProgress(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	var studentID uint
	if v := c.Query("studentId"); v != "" {
		if studentID, ok = query.ParseID(v); !ok {
			return response.BadRequest(c, "Invalid student ID")
		}
	}

	report, err := h.progress.CourseProgress(c.UserContext(), middleware.GetCaller(c), courseID, studentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, report)
}

// Overview handles GET /api/progress/overview
func (h *ProgressHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.progress.Overview(c.UserContext(), middleware.GetCaller(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, overview)
}
