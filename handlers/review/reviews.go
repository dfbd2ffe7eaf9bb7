package review

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// ReviewHandler handles review requests
type ReviewHandler struct {
	reviews   *services.ReviewService
	validator *validation.Validator
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		validator: validation.NewValidator(),
	}
}

// CreateReviewRequest represents the request body for a new review
type CreateReviewRequest struct {
	CourseID uint   `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment" validate:"max=1000"`
}

// UpdateReviewRequest represents a partial review update
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	review, err := h.reviews.Create(c.UserContext(), middleware.GetCaller(c), req.CourseID, req.Rating, req.Comment)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Review added successfully", fiber.Map{"review": review})
}

// CourseReviews handles GET /api/reviews/course/:courseId
func (h *ReviewHandler) CourseReviews(c *fiber.Ctx) error {
	courseID, ok := query.ParseID(c.Params("courseId"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}
	page, limit := query.Page(c.Query("page"), c.Query("limit"))

	result, err := h.reviews.List(c.UserContext(), courseID, page, limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"reviews":            result.Reviews,
		"pagination":         response.CalculatePagination(page, limit, result.Total),
		"ratingDistribution": result.RatingDistribution,
		"averageRating":      result.AverageRating,
		"totalReviews":       result.TotalReviews,
	})
}

// UpdateReview handles PUT /api/reviews/:id
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	id, ok := query.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	review, err := h.reviews.Update(c.UserContext(), middleware.GetCaller(c), id, req.Rating, req.Comment)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Review updated successfully", fiber.Map{"review": review})
}

// DeleteReview handles DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	id, ok := query.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}

	if err := h.reviews.Delete(c.UserContext(), middleware.GetCaller(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Review deleted successfully", nil)
}
