// File: internal/jobs/tracker_job.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"yad2_tracker/internal/config"
	"yad2_tracker/internal/platform/metrics"
	"yad2_tracker/internal/tracker"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrRunInFlight is returned by RunOnce when another run has not finished.
var ErrRunInFlight = errors.New("a tracker run is already in flight")

// Runner executes one tracker pass.
type Runner interface {
	Run(ctx context.Context) (*tracker.RunReport, error)
}

// TrackerJob drives the tracker once or on a cron schedule. At most one run
// executes at a time.
type TrackerJob struct {
	runner        Runner
	metrics       *metrics.Metrics
	schedule      string
	location      *time.Location
	runTimeout    time.Duration
	cronScheduler *cron.Cron
	inFlight      atomic.Bool
	fatal         chan error
	logger        *zap.Logger
}

// NewTrackerJob creates a new TrackerJob. The schedule is interpreted in
// TRACKER_TIMEZONE.
func NewTrackerJob(runner Runner, m *metrics.Metrics, cfg *config.Config, logger *zap.Logger) (*TrackerJob, error) {
	loc, err := time.LoadLocation(cfg.TrackerTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKER_TIMEZONE %q: %w", cfg.TrackerTimezone, err)
	}
	return &TrackerJob{
		runner:        runner,
		metrics:       m,
		schedule:      cfg.TrackerSchedule,
		location:      loc,
		runTimeout:    cfg.RunTimeout,
		cronScheduler: newScheduler(logger, cron.WithLocation(loc)),
		fatal:         make(chan error, 1),
		logger:        logger.Named("TrackerJob"),
	}, nil
}

// Fatal delivers the first persistence-availability failure seen by a
// scheduled run. The process is expected to exit non-zero when it fires.
func (j *TrackerJob) Fatal() <-chan error {
	return j.fatal
}

// RunOnce executes a single run bounded by RUN_TIMEOUT_MINUTES.
func (j *TrackerJob) RunOnce(ctx context.Context) error {
	if !j.inFlight.CompareAndSwap(false, true) {
		return ErrRunInFlight
	}
	defer j.inFlight.Store(false)

	if j.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.runTimeout)
		defer cancel()
	}

	j.logger.Info("Starting tracker run...")
	_, err := j.runner.Run(ctx)
	return err
}

// SetupAndStart schedules the recurring run, starts the scheduler and fires
// one immediate run in the background.
func (j *TrackerJob) SetupAndStart() error {
	if j.schedule == "" {
		return errors.New("tracker schedule not defined (TRACKER_SCHEDULE)")
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.tick)
	if err != nil {
		j.logger.Error("Failed to schedule tracker job", zap.String("schedule", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Tracker job scheduled",
		zap.String("schedule", j.schedule),
		zap.String("timezone", j.location.String()),
		zap.Any("jobID", jobID),
	)
	j.cronScheduler.Start()

	go j.tick()
	return nil
}

// tick is one scheduled run. Persistence-availability failures are fatal;
// anything else waits for the next tick.
func (j *TrackerJob) tick() {
	err := j.RunOnce(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInFlight):
		j.logger.Warn("Previous tracker run still in flight, skipping tick")
		if j.metrics != nil {
			j.metrics.RunsTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		}
	case errors.Is(err, tracker.ErrPersistenceUnavailable):
		j.logger.Error("Persistence unavailable, stopping the scheduler", zap.Error(err))
		select {
		case j.fatal <- err:
		default:
		}
	default:
		j.logger.Error("Tracker run failed, will retry on next tick", zap.Error(err))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *TrackerJob) Stop() {
	stopScheduler(j.cronScheduler, j.logger)
}
