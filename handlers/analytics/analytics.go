package analytics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// AnalyticsHandler handles instructor reporting requests
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// InstructorOverview handles GET /api/analytics/instructor/overview
func (h *AnalyticsHandler) InstructorOverview(c *fiber.Ctx) error {
	overview, err := h.analyticsService.InstructorOverview(c.UserContext(), middleware.GetCaller(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, overview)
}

// CourseAnalytics handles GET /api/analytics/instructor/course/:courseId
func (h *AnalyticsHandler) CourseAnalytics(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	report, err := h.analyticsService.CourseAnalytics(c.UserContext(), middleware.GetCaller(c), courseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, report)
}
