package model

import "time"

// JWTTokenBlacklist stores the jti of revoked tokens until they would have expired.
type JWTTokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"column:jti;uniqueIndex;not null;type:varchar(64)" json:"jti"`
	UserID    uint      `gorm:"index" json:"userId"`
	Reason    string    `gorm:"type:varchar(50)" json:"reason"` // logout, refresh_rotation
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (JWTTokenBlacklist) TableName() string {
	return "jwt_token_blacklist"
}
