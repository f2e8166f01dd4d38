// File: internal/generator/batch.go
package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// Batch runs requests one after another, paced by batch.min_interval. Unless
// batch.continue_on_error is set, the first failure stops the batch and is
// returned along with the items completed so far.
func (g *Generator) Batch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	bc := g.cfg.Batch()
	limiter := rate.NewLimiter(rate.Inf, 1)
	if bc.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(bc.MinInterval), 1)
	}

	items := make([]BatchItem, 0, len(reqs))
	for i, req := range reqs {
		if err := limiter.Wait(ctx); err != nil {
			return items, fmt.Errorf("batch interrupted before request %d: %w", i, err)
		}
		res, err := g.Generate(ctx, req)
		items = append(items, BatchItem{Index: i, Result: res, Err: err})
		if err != nil {
			if !bc.ContinueOnError {
				return items, fmt.Errorf("request %d failed: %w", i, err)
			}
			g.logger.Warn("Batch request failed, continuing.", zap.Int("index", i), zap.Error(err))
		}
	}
	return items, nil
}
