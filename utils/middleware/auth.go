package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, blacklist *auth.BlacklistService, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: blacklist,
		db:               db,
	}
}

var (
	errMissingToken = errors.New("Missing authorization token")
	errBadFormat    = errors.New("Invalid authorization format")
	errRevoked      = errors.New("Token has been revoked")
	errNoUser       = errors.New("User not found")
	errStaleToken   = errors.New("Token is no longer valid")
)

// authenticate resolves the bearer token into a user. The role always comes
// from the stored user so role changes apply to tokens already issued.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*auth.Claims, *model.User, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, errBadFormat
	}

	claims, err := m.jwtManager.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, nil, err
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if isRevoked {
		return nil, nil, errRevoked
	}

	var user model.User
	if err := m.db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errNoUser
		}
		return nil, nil, err
	}
	if claims.TokenVersion != user.TokenVersion {
		return nil, nil, errStaleToken
	}

	return claims, &user, nil
}

func setLocals(c *fiber.Ctx, claims *auth.Claims, user *model.User) {
	c.Locals("claims", claims)
	c.Locals("user", user)
}

// Required is middleware that requires a valid access token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := m.authenticate(c)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return response.Unauthorized(c, "Token has expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
				return response.Unauthorized(c, "Invalid token")
			case errors.Is(err, errMissingToken), errors.Is(err, errBadFormat),
				errors.Is(err, errRevoked), errors.Is(err, errNoUser), errors.Is(err, errStaleToken):
				return response.Unauthorized(c, err.Error())
			default:
				return response.InternalServerError(c, "Failed to authenticate request")
			}
		}

		setLocals(c, claims, user)
		return c.Next()
	}
}

// Optional attaches the caller when a valid token is present and otherwise
// continues anonymously.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := m.authenticate(c)
		if err == nil {
			setLocals(c, claims, user)
		}
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := access.HasRole(GetCaller(c), roles...)
		if !decision.Allowed {
			return response.Forbidden(c, decision.Reason)
		}
		return c.Next()
	}
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals("user").(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals("claims").(*auth.Claims)
	return claims, ok
}

// GetCaller returns the request's principal, anonymous when unauthenticated
func GetCaller(c *fiber.Ctx) access.Caller {
	user, _ := GetUser(c)
	return access.FromUser(user)
}
