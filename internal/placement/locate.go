package placement

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// Lookup maps a selector to its rendered rectangle; nil means no match.
type Lookup map[string]*geometry.RawRect

// Querier answers geometry queries against a rendered document.
type Querier interface {
	QueryRect(ctx context.Context, selector string) (*geometry.RawRect, error)
}

// Selectors returns the distinct selectors of specs in first-seen order.
func Selectors(specs []*fields.Spec) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range specs {
		if s.Selector == "" || s.Position != nil {
			continue
		}
		if _, dup := seen[s.Selector]; dup {
			continue
		}
		seen[s.Selector] = struct{}{}
		out = append(out, s.Selector)
	}
	return out
}

// Locate queries every selector concurrently, at most limit at a time, and
// returns once all queries completed. Any query error fails the whole call.
func Locate(ctx context.Context, q Querier, selectors []string, limit int, logger *zap.Logger) (Lookup, error) {
	out := make(Lookup, len(selectors))
	if len(selectors) == 0 {
		return out, nil
	}
	if limit <= 0 {
		limit = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, sel := range selectors {
		sel := sel
		g.Go(func() error {
			rect, err := q.QueryRect(gctx, sel)
			if err != nil {
				return fmt.Errorf("query %q: %w", sel, err)
			}
			mu.Lock()
			out[sel] = rect
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := 0
	for _, r := range out {
		if r != nil {
			found++
		}
	}
	logger.Debug("Selectors located.", zap.Int("queried", len(selectors)), zap.Int("found", found))
	return out, nil
}
