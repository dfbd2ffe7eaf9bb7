package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
)

// JobLogRetention is how long cron_job_logs rows are kept
const JobLogRetention = 30 * 24 * time.Hour

// RecomputeCourseStats rebuilds every course's cached statistics, repairing
// anything left stale by a request that failed between writes.
func (m *CronManager) RecomputeCourseStats() {
	m.runJob("recompute_course_stats", 30*time.Minute, func(ctx context.Context) (string, error) {
		n, err := m.stats.RecomputeAll(ctx)
		if err != nil {
			return fmt.Sprintf("Recomputed %d courses before failing", n), err
		}
		return fmt.Sprintf("Recomputed %d courses", n), nil
	})
}

// CleanupExpiredTokens removes blacklist entries for tokens past their expiry
func (m *CronManager) CleanupExpiredTokens() {
	m.runJob("cleanup_expired_tokens", 5*time.Minute, func(ctx context.Context) (string, error) {
		n, err := m.blacklist.CleanupExpiredTokens(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %d expired blacklist entries", n), nil
	})
}

// CleanupOldJobLogs prunes job logs older than JobLogRetention
func (m *CronManager) CleanupOldJobLogs() {
	m.runJob("cleanup_old_job_logs", 5*time.Minute, func(ctx context.Context) (string, error) {
		cutoff := time.Now().Add(-JobLogRetention)
		result := m.db.WithContext(ctx).Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
		if result.Error != nil {
			return "", fmt.Errorf("failed to delete old job logs: %w", result.Error)
		}
		return fmt.Sprintf("Deleted %d job logs", result.RowsAffected), nil
	})
}
