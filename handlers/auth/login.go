package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	authutil "github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.NormalizeEmail(req.Email)
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		_ = h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), ip)
		return response.Unauthorized(c, "Invalid credentials")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		_ = h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), ip)
		return response.Unauthorized(c, "Invalid credentials")
	}

	_ = h.bruteForceProtection.RecordSuccessfulAttempt(c.UserContext(), ip)

	res, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}
	return response.SuccessWithMessage(c, "Login successful", res)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, fiber.Map{"user": user})
}
