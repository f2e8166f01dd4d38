// File: internal/browser/types.go
package browser

import (
	"context"

	"github.com/xkilldash9x/formforge/internal/geometry"
)

// RenderOptions describes one document load. Viewport sizes are CSS pixels.
type RenderOptions struct {
	HTML           string
	ViewportWidth  int64
	ViewportHeight int64
}

// PrintOptions controls PDF export. Paper and margin sizes are inches.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	PrintBackground bool
}

// SessionContext is a single rendering tab.
type SessionContext interface {
	ID() string
	Render(ctx context.Context, opts RenderOptions) error
	QueryRect(ctx context.Context, selector string) (*geometry.RawRect, error)
	PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error)
	Close(ctx context.Context) error
}
