// File: internal/jobs/cron_logger.go
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron. cron reports every wake-up and run
// here, so they go to debug.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron, including recovered job panics.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}

// newScheduler builds a cron scheduler that recovers job panics and logs
// through zap.
func newScheduler(logger *zap.Logger, opts ...cron.Option) *cron.Cron {
	cl := NewCronLogger(logger.Named("cron"))
	base := []cron.Option{
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	}
	return cron.New(append(base, opts...)...)
}

const stopTimeout = 10 * time.Second

// stopScheduler stops c and waits for running jobs, up to a bound.
func stopScheduler(c *cron.Cron, logger *zap.Logger) {
	if c == nil {
		return
	}
	logger.Info("Stopping scheduler...")
	stopCtx := c.Stop() // done once running jobs have returned
	select {
	case <-stopCtx.Done():
		logger.Info("Scheduler stopped gracefully.")
	case <-time.After(stopTimeout):
		logger.Warn("Scheduler stop timed out.")
	}
}
