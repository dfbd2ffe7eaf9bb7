package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newManager()

	token, jti, err := m.GenerateAccessToken(42, 0)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), ExpiryOf(claims), 5*time.Second)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := newManager()

	refresh, _, err := m.GenerateRefreshToken(7, 0)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	access, _, err := m.GenerateAccessToken(7, 0)
	require.NoError(t, err)
	_, err = m.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager(JWTConfig{AccessSecret: "s", RefreshSecret: "r", Expiry: -time.Minute})

	token, _, err := m.GenerateAccessToken(1, 0)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedToken(t *testing.T) {
	m := newManager()
	token, _, err := m.GenerateAccessToken(1, 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{AccessSecret: "different", RefreshSecret: "refresh-secret"})
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPasswordWithCost("12345", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPasswordWithCost("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, VerifyPassword(hash, "secret1"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-password"), ErrPasswordMismatch)
}

func TestBlacklist(t *testing.T) {
	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.JWTTokenBlacklist{}))

	svc := NewBlacklistService(db)
	ctx := context.Background()

	revoked, err := svc.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, "jti-1", 1, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, svc.RevokeToken(ctx, "jti-1", 1, time.Now().Add(time.Hour), "logout"), "revoking twice is idempotent")

	revoked, err = svc.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, "jti-old", 1, time.Now().Add(-time.Hour), "logout"))
	removed, err := svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	claimed, err := svc.ClaimToken(ctx, "jti-2", 1, time.Now().Add(time.Hour), "token_refresh")
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = svc.ClaimToken(ctx, "jti-2", 1, time.Now().Add(time.Hour), "token_refresh")
	require.NoError(t, err)
	assert.False(t, claimed, "a token is claimed once")
}
