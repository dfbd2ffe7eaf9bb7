package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	authutil "github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResponse represents a token refresh response
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// RefreshToken exchanges a refresh token for a new pair. The presented
// refresh token is revoked so it can be used only once.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, "Please provide refresh token", validation.FormatValidationErrors(err))
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Unauthorized(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}
	if claims.TokenVersion != user.TokenVersion {
		return response.Unauthorized(c, "Token is no longer valid")
	}

	claimed, err := h.blacklistService.ClaimToken(c.UserContext(), claims.ID, user.ID, authutil.ExpiryOf(claims), "token_refresh")
	if err != nil {
		return response.InternalServerError(c, "Failed to rotate refresh token")
	}
	if !claimed {
		// a concurrent refresh already rotated this token
		return response.Unauthorized(c, "Token has been revoked")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout revokes the access token used for this request
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.BadRequest(c, "No token ID found")
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, user.ID, authutil.ExpiryOf(claims), "logout"); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}
