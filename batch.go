package viben

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/viben/pkg/domain"
)

// BatchOptions tunes GenerateBatch.
type BatchOptions struct {
	// Concurrency caps in-flight generations (default 1).
	Concurrency int
	// Delay spaces out the start of consecutive generations.
	Delay time.Duration
	Force bool
}

// BatchResult is the outcome for one record.
type BatchResult struct {
	RecordID string
	Tutorial *domain.Tutorial
	Reused   bool
	Err      error
}

// GenerateBatch generates tutorials for several records. A failing record
// never stops the others; its error is reported in its result.
// Results are returned in input order.
func (p *Pipeline) GenerateBatch(ctx context.Context, recordIDs []string, opts BatchOptions) []BatchResult {
	results := make([]BatchResult, len(recordIDs))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range recordIDs {
		results[i].RecordID = id
		if i > 0 && opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
			}
		}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			res, err := p.Generate(ctx, id, GenerateOptions{Force: opts.Force})
			if err != nil {
				results[i].Err = err
				p.logger.Warn("batch generation failed", "record_id", id, "err", err)
				return nil
			}
			results[i].Tutorial = res.Tutorial
			results[i].Reused = res.Reused
			return nil
		})
	}
	_ = g.Wait()
	return results
}
