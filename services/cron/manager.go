package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"gorm.io/gorm"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	log       *utils.Logger
	stats     *services.CourseStatsService
	blacklist *auth.BlacklistService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, stats *services.CourseStatsService, blacklist *auth.BlacklistService, log *utils.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		db:        db,
		log:       log.With("component", "cron"),
		stats:     stats,
		blacklist: blacklist,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	m.log.Info("cron jobs started", "entries", len(m.cron.Entries()))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	jobs := []struct {
		spec string
		fn   func()
	}{
		// Hourly: drop blacklist entries whose tokens have expired anyway
		{"0 0 * * * *", m.CleanupExpiredTokens},
		// Daily at 3 AM: reconcile cached course statistics
		{"0 0 3 * * *", m.RecomputeCourseStats},
		// Daily at 4 AM: prune old job logs
		{"0 0 4 * * *", m.CleanupOldJobLogs},
	}

	for _, job := range jobs {
		if _, err := m.cron.AddFunc(job.spec, job.fn); err != nil {
			return err
		}
	}

	m.log.Info("all cron jobs registered")
	return nil
}

// runJob executes fn under a timeout and records the run in cron_job_logs
func (m *CronManager) runJob(jobName string, timeout time.Duration, fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	m.log.Info("job started", "job", jobName)

	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    StatusRunning,
		StartedAt: started,
	}
	if err := m.db.Create(&entry).Error; err != nil {
		m.log.Warn("failed to record job start", "job", jobName, "error", err)
	}

	message, err := fn(ctx)

	completed := time.Now()
	updates := map[string]interface{}{
		"status":       StatusCompleted,
		"completed_at": completed,
		"duration":     completed.Sub(started).Milliseconds(),
		"message":      message,
	}
	if err != nil {
		updates["status"] = StatusFailed
		updates["error_msg"] = err.Error()
		m.log.Error("job failed", "job", jobName, "error", err)
	} else {
		m.log.Info("job completed", "job", jobName, "message", message)
	}

	if entry.ID != 0 {
		if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
			m.log.Warn("failed to record job result", "job", jobName, "error", err)
		}
	}
}
