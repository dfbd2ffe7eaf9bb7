package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTConfig holds JWT configuration. Access and refresh tokens are signed
// with different secrets so one can never stand in for the other.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	Expiry        time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// Claims carries the user id, the user's token version and the registered
// claims (jti, exp, iat).
type Claims struct {
	UserID       uint   `json:"user_id"`
	TokenType    string `json:"token_type"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	if config.Expiry == 0 {
		config.Expiry = 15 * time.Minute
	}
	if config.RefreshExpiry == 0 {
		config.RefreshExpiry = 7 * 24 * time.Hour
	}
	return &JWTManager{
		config: config,
	}
}

// GenerateAccessToken returns a signed access token and its jti
func (j *JWTManager) GenerateAccessToken(userID uint, tokenVersion int) (string, string, error) {
	return j.sign(userID, tokenVersion, TokenTypeAccess, j.config.Expiry, j.config.AccessSecret)
}

// GenerateRefreshToken returns a signed refresh token and its jti
func (j *JWTManager) GenerateRefreshToken(userID uint, tokenVersion int) (string, string, error) {
	return j.sign(userID, tokenVersion, TokenTypeRefresh, j.config.RefreshExpiry, j.config.RefreshSecret)
}

func (j *JWTManager) sign(userID uint, tokenVersion int, tokenType string, ttl time.Duration, secret string) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UserID:       userID,
		TokenType:    tokenType,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	return signedToken, jti, err
}

// ValidateAccessToken validates an access token and returns its claims
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.config.AccessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.config.RefreshSecret, TokenTypeRefresh)
}

func (j *JWTManager) validate(tokenString, secret, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessExpiry reports the configured access token lifetime
func (j *JWTManager) AccessExpiry() time.Duration {
	return j.config.Expiry
}

// ExpiryOf returns the expiry time stored in claims, or now when absent
func ExpiryOf(claims *Claims) time.Time {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Now()
	}
	return claims.ExpiresAt.Time
}
