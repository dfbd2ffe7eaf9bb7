package model

import "time"

const (
	ContentVideo = "video"
	ContentText  = "text"
	ContentQuiz  = "quiz"
)

// Lesson is one ordered item of a course curriculum, grouped by SectionTitle.
type Lesson struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CourseID     uint      `gorm:"not null;index:idx_lesson_order,priority:1" json:"courseId"`
	SectionTitle string    `gorm:"type:varchar(200);not null" json:"sectionTitle"`
	LessonNumber int       `gorm:"not null;index:idx_lesson_order,priority:2" json:"lessonNumber"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ContentType  string    `gorm:"type:varchar(10);not null;default:'video'" json:"contentType"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	TextContent  string    `gorm:"type:text" json:"textContent,omitempty"`
	Duration     int       `gorm:"not null;default:0" json:"duration"` // minutes
	IsPreview    bool      `gorm:"not null;default:false" json:"isPreview"`

	// Relationships
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// WithoutContent returns a copy with playable content removed.
func (l Lesson) WithoutContent() Lesson {
	l.VideoURL = ""
	l.TextContent = ""
	return l
}
