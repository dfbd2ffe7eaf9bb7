package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlacklistService handles JWT token revocation
type BlacklistService struct {
	db *gorm.DB
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(db *gorm.DB) *BlacklistService {
	return &BlacklistService{db: db}
}

// RevokeToken adds a token to the blacklist. Revoking twice is not an error.
func (s *BlacklistService) RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error {
	_, err := s.ClaimToken(ctx, jti, userID, expiresAt, reason)
	return err
}

// ClaimToken blacklists a token and reports whether this call was the one
// that did it. Only one of several concurrent callers gets true, which is
// what lets a refresh token be rotated at most once.
func (s *BlacklistService) ClaimToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) (bool, error) {
	entry := model.JWTTokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&entry)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IsTokenRevoked checks if a token is in the blacklist
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.JWTTokenBlacklist{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).
		Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CleanupExpiredTokens removes entries whose token would have expired anyway
func (s *BlacklistService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	return result.RowsAffected, result.Error
}
