package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a unit of instruction owned by one instructor.
//
// Duration, TotalLessons, EnrolledCount, AverageRating and TotalReviews are
// derived from child rows and are only written by services.CourseStatsService.
type Course struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	InstructorID  uint           `gorm:"not null;index" json:"instructorId"`
	Category      string         `gorm:"type:varchar(100);not null;index:idx_course_catalog,priority:1" json:"category"`
	Level         string         `gorm:"type:varchar(20);not null;index:idx_course_catalog,priority:2" json:"level"`
	Price         float64        `gorm:"not null;default:0;index:idx_course_catalog,priority:3" json:"price"`
	Thumbnail     string         `json:"thumbnail"`
	Duration      int            `gorm:"not null;default:0" json:"duration"` // minutes
	TotalLessons  int            `gorm:"not null;default:0" json:"totalLessons"`
	EnrolledCount int            `gorm:"not null;default:0" json:"enrolledCount"`
	AverageRating float64        `gorm:"not null;default:0" json:"averageRating"`
	TotalReviews  int            `gorm:"not null;default:0" json:"totalReviews"`
	IsPublished   bool           `gorm:"not null;default:false;index" json:"isPublished"`

	// Relationships
	Instructor *User    `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Lessons    []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}
