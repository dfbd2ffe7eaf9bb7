package model

import "time"

// Progress records one student's state on one lesson.
type Progress struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_progress_student_lesson,priority:1;index:idx_progress_student_course,priority:1" json:"studentId"`
	CourseID       uint       `gorm:"not null;index:idx_progress_student_course,priority:2" json:"courseId"`
	LessonID       uint       `gorm:"not null;uniqueIndex:idx_progress_student_lesson,priority:2" json:"lessonId"`
	Completed      bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
	TimeSpent      int        `gorm:"not null;default:0" json:"timeSpent"` // minutes
	LastAccessedAt time.Time  `json:"lastAccessedAt"`

	// Relationships
	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"lesson,omitempty"`
}

// TableName keeps the table name singular like the resource it tracks.
func (Progress) TableName() string {
	return "progress"
}
