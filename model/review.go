package model

import "time"

// Review is a student's rating of a course. One per student per course.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_review_student_course,priority:1" json:"studentId"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_review_student_course,priority:2;index" json:"courseId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:varchar(1000)" json:"comment"`

	// Relationships
	Student *User `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}
