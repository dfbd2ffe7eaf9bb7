package model

import "time"

// Enrollment links a student to a course. Progress caches the completion
// percentage and CompletedAt is stamped once, the first time it reaches 100.
type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course,priority:1" json:"studentId"`
	CourseID    uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course,priority:2;index" json:"courseId"`
	EnrolledAt  time.Time  `gorm:"not null" json:"enrolledAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`

	// Relationships
	Student *User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
