package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// EnrollmentHandler handles enrollment requests
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	validator   *validation.Validator
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		validator:   validation.NewValidator(),
	}
}

// EnrollRequest represents the request body for enrolling
type EnrollRequest struct {
	CourseID uint `json:"courseId" validate:"required"`
}

// Enroll handles POST /api/enrollments
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, "Please provide a course ID", validation.FormatValidationErrors(err))
	}

	caller := middleware.GetCaller(c)
	enrollment, err := h.enrollments.Enroll(c.UserContext(), caller.ID, req.CourseID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Enrolled successfully", fiber.Map{"enrollment": enrollment})
}

// MyCourses handles GET /api/enrollments/my-courses
func (h *EnrollmentHandler) MyCourses(c *fiber.Ctx) error {
	enrollments, err := h.enrollments.MyCourses(c.UserContext(), middleware.GetCaller(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"enrollments": enrollments})
}

// Status handles GET /api/enrollments/:courseId/status
func (h *EnrollmentHandler) Status(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := h.enrollments.Status(c.UserContext(), middleware.GetCaller(c).ID, courseID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"isEnrolled": enrollment != nil,
		"enrollment": enrollment,
	})
}
