package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents a registered account. Role decides what the account may do.
type User struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
	Name         string                      `gorm:"type:varchar(100);not null" json:"name"`
	Email        string                      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string                      `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         string                      `gorm:"type:varchar(20);default:'student';not null" json:"role"`
	Avatar       string                      `json:"avatar"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	// TokenVersion is stamped into issued tokens; bumping it invalidates them all.
	TokenVersion int                         `gorm:"not null;default:0" json:"-"`

	// Relationships
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsPrivileged reports whether the user is an instructor or an admin.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}
