package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"regional-pulse/scoring"
)

// Job names used by the CLI.
const (
	ScoreJobName = "score"
	PruneJobName = "prune"
)

// Pruner deletes records published before a cutoff.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionCutoff is the start of the day retentionDays before now, as a
// naive UTC wall-clock time.
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	day := now.AddDate(0, 0, -retentionDays)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// ScoreJob scores pending records with runner.
func ScoreJob(schedule string, runner *scoring.Runner) Job {
	return Job{
		Name:     ScoreJobName,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := runner.Run(ctx)
			return err
		},
	}
}

// PruneJob removes records older than the retention window.
func PruneJob(schedule string, store Pruner, retentionDays int, now func() time.Time, logger zerolog.Logger) Job {
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:     PruneJobName,
		Schedule: schedule,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			cutoff := RetentionCutoff(now(), retentionDays)
			deleted, err := store.DeleteBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			logger.Info().
				Int64("deleted", deleted).
				Str("cutoff", cutoff.Format("2006-01-02")).
				Int("retention_days", retentionDays).
				Msg("Old news pruned")
			return nil
		},
	}
}
