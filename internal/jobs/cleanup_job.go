// File: internal/jobs/cleanup_job.go
package jobs

import (
	"context"
	"time"

	"yad2_tracker/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cleaner removes old seen records.
type Cleaner interface {
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupJob holds dependencies for the seen-history retention job.
type CleanupJob struct {
	cleaner       Cleaner
	schedule      string
	retentionDays int
	cronScheduler *cron.Cron
	logger        *zap.Logger
}

// NewCleanupJob creates a new CleanupJob.
func NewCleanupJob(cleaner Cleaner, cfg *config.Config, logger *zap.Logger) *CleanupJob {
	var opts []cron.Option
	if loc, err := time.LoadLocation(cfg.TrackerTimezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	}
	return &CleanupJob{
		cleaner:       cleaner,
		schedule:      cfg.CleanupJobSchedule,
		retentionDays: cfg.CleanupRetentionDays,
		cronScheduler: newScheduler(logger, opts...),
		logger:        logger.Named("CleanupJob"),
	}
}

// SetupAndStart schedules and starts the cron job. An empty
// CLEANUP_JOB_SCHEDULE leaves the job disabled.
func (j *CleanupJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Info("Cleanup job schedule not defined (CLEANUP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule cleanup job", zap.String("schedule", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Cleanup job scheduled",
		zap.String("schedule", j.schedule),
		zap.Int("retention_days", j.retentionDays),
		zap.Any("jobID", jobID),
	)
	j.cronScheduler.Start()
	return nil
}

// RunOnce deletes records older than the retention window.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	return j.cleaner.CleanupOlderThan(ctx, j.retentionDays)
}

func (j *CleanupJob) runJob() {
	j.logger.Info("Starting cleanup job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Cleanup job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Cleanup job run completed", zap.Int64("deleted", deleted))
}

// Stop gracefully stops the cron scheduler.
func (j *CleanupJob) Stop() {
	stopScheduler(j.cronScheduler, j.logger)
}
