package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const retentionRunTimeout = 5 * time.Minute

// Purger deletes audit entries older than a retention window.
// Implemented by service.AuditService.
type Purger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// RetentionJob enforces the audit log retention window.
type RetentionJob struct {
	purger    Purger
	retention time.Duration
	log       zerolog.Logger
}

func NewRetentionJob(purger Purger, retentionDays int, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("component", "retention_job").Logger(),
	}
}

// Run implements cron.Job.
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionRunTimeout)
	defer cancel()

	n, err := j.purger.PurgeOlderThan(ctx, j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("Audit retention purge failed")
		return
	}
	j.log.Info().Int64("deleted", n).Dur("retention", j.retention).Msg("Audit retention purge done")
}

// NewScheduler builds a cron scheduler running job on schedule (standard
// five-field syntax). Overlapping runs are skipped and panics recovered.
func NewScheduler(schedule string, job cron.Job, log zerolog.Logger) (*cron.Cron, error) {
	l := cronLogger{log: log.With().Str("component", "cron").Logger()}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return c, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
