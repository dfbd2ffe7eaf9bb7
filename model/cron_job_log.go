package model

import "time"

// CronJobLog represents one execution of a scheduled job
type CronJobLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobName     string     `gorm:"type:varchar(100);not null;index" json:"jobName"`
	Status      string     `gorm:"type:varchar(20);not null" json:"status"` // running, completed, failed
	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Duration    int64      `json:"durationMs"`
	Message     string     `gorm:"type:text" json:"message"`
	ErrorMsg    string     `gorm:"type:text" json:"errorMsg"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (CronJobLog) TableName() string {
	return "cron_job_logs"
}

// AllModels lists every model managed by AutoMigrate, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Enrollment{},
		&Progress{},
		&Review{},
		&JWTTokenBlacklist{},
		&CronJobLog{},
	}
}
