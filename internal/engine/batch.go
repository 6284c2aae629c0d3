package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchOptions configures ClassifyBatch.
type BatchOptions struct {
	// Progress is called once per classified record. It may be called from
	// several goroutines at once.
	Progress func(model.ClassificationResult)
	// Workers overrides the waterfall's configured parallelism when positive.
	Workers int
}

// BatchSummary contains statistics about a classification run.
type BatchSummary struct {
	ByTier           map[model.ResolutionTier]int
	ByFailure        map[model.AdvisoryFailure]int
	Total            int
	AutoCleared      int
	ManualReview     int
	RiskFlagged      int
	AdvisoryFailures int
	Duration         time.Duration
}

// ClassifyBatch validates every record up front, then classifies them in
// parallel. Results are returned in input order. A single invalid record
// rejects the whole batch before any advisory call is made.
func (w *Waterfall) ClassifyBatch(ctx context.Context, records []model.TransactionRecord, opts BatchOptions) ([]model.ClassificationResult, error) {
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("record at index %d: %w", i, err)
		}
		if _, dup := seen[record.ID]; dup {
			return nil, fmt.Errorf("record at index %d: %w: duplicate id %s", i, model.ErrInvalidRecord, record.ID)
		}
		seen[record.ID] = struct{}{}
	}

	workers := w.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	results := make([]model.ClassificationResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := w.Classify(gctx, record)
			if err != nil {
				return fmt.Errorf("failed to classify transaction %s: %w", record.ID, err)
			}
			results[i] = result
			if opts.Progress != nil {
				opts.Progress(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Summarize aggregates a batch of results.
func Summarize(results []model.ClassificationResult, duration time.Duration) BatchSummary {
	summary := BatchSummary{
		ByTier:    make(map[model.ResolutionTier]int),
		ByFailure: make(map[model.AdvisoryFailure]int),
		Total:     len(results),
		Duration:  duration,
	}

	for _, r := range results {
		summary.ByTier[r.ResolutionTier]++
		if r.NeedsReview() {
			summary.ManualReview++
		} else {
			summary.AutoCleared++
		}
		if r.RiskFlag {
			summary.RiskFlagged++
		}
		if r.AdvisoryFailure != model.FailureNone {
			summary.AdvisoryFailures++
			summary.ByFailure[r.AdvisoryFailure]++
		}
	}

	return summary
}

// LogSummary writes the summary to the logger.
func LogSummary(logger *slog.Logger, s BatchSummary) {
	logger.Info("Classification complete",
		"total", s.Total,
		"product_map", s.ByTier[model.TierProductMap],
		"keyword_rule", s.ByTier[model.TierKeywordRule],
		"advisory", s.ByTier[model.TierAdvisoryClassifier],
		"auto_cleared", s.AutoCleared,
		"manual_review", s.ManualReview,
		"risk_flagged", s.RiskFlagged,
		"advisory_failures", s.AdvisoryFailures,
		"duration", s.Duration)
}
