package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"regional-pulse/models"
)

// DefaultBatchSize is how many pending records are read per round trip.
const DefaultBatchSize = 500

// Queue is the store side of a scoring run.
type Queue interface {
	Unprocessed(ctx context.Context, afterID uint, limit int) ([]models.NewsRecord, error)
	SetScore(ctx context.Context, id uint, score float64) error
}

// Stats summarises one scoring run.
type Stats struct {
	Scored   int
	Failed   int
	Duration time.Duration
}

// Runner scores every unprocessed record of a store.
type Runner struct {
	queue     Queue
	scorer    Scorer
	batchSize int
	logger    zerolog.Logger
}

func NewRunner(queue Queue, scorer Scorer, batchSize int, logger zerolog.Logger) *Runner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{queue: queue, scorer: scorer, batchSize: batchSize, logger: logger}
}

// Run walks the pending records once in id order. A record whose scoring
// fails is logged and left unprocessed for the next run; store errors
// abort the run.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats
	var cursor uint

	r.logger.Info().Msg("Starting sentiment scoring")

	for {
		batch, err := r.queue.Unprocessed(ctx, cursor, r.batchSize)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			cursor = rec.ID
			if err := ctx.Err(); err != nil {
				stats.Duration = time.Since(start)
				return stats, err
			}

			score, err := r.scorer.Score(ctx, rec.Content)
			if err != nil {
				stats.Failed++
				r.logger.Error().Err(err).Uint("id", rec.ID).Msg("Failed to score news")
				continue
			}
			if err := r.queue.SetScore(ctx, rec.ID, score); err != nil {
				stats.Duration = time.Since(start)
				return stats, err
			}
			stats.Scored++
			r.logger.Debug().Uint("id", rec.ID).Float64("score", score).Msg("News scored")
		}

		if len(batch) < r.batchSize {
			break
		}
	}

	stats.Duration = time.Since(start)
	r.logger.Info().
		Int("scored", stats.Scored).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Sentiment scoring completed")
	return stats, nil
}
