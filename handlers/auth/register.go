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

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	validator            *validation.Validator
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, blacklist *authutil.BlacklistService, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		validator:            validation.NewValidator(),
		jwtManager:           jwtManager,
		blacklistService:     blacklist,
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request.
// Admin accounts are created by the seed tool, never by self sign-up.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"` // seconds
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	var existing int64
	if err := h.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return response.InternalServerError(c, "Failed to check email")
	}
	if existing > 0 {
		return response.Conflict(c, "User already exists with this email")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		Skills:       []string{},
	}
	if err := h.db.Create(&user).Error; err != nil {
		// A concurrent registration won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "User already exists with this email")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	res, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}
	return response.Created(c, "User registered successfully", res)
}

func (h *AuthHandler) issueTokens(user *model.User) (*TokenResponse, error) {
	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	}, nil
}
