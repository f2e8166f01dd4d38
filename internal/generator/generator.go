// File: internal/generator/generator.go
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/markup"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Collaborator failures. Generate wraps one of these and returns no bytes.
var (
	ErrEngine    = errors.New("rendering engine unavailable")
	ErrRender    = errors.New("render failed")
	ErrExport    = errors.New("export failed")
	ErrSerialize = errors.New("serialization failed")
)

// Engine hands out isolated rendering sessions. *browser.Manager satisfies it.
type Engine interface {
	NewSession(ctx context.Context) (browser.SessionContext, error)
}

// Request is one generation call.
type Request struct {
	// ID tags logs and the result; one is generated when empty.
	ID string
	// Markup is rendered by the engine into the base pages. It may be empty
	// when the document consists only of blocks and flowed fields.
	Markup string
	CSS    string
	Format markup.Format
	Title  string

	Fields []*fields.Spec
	Blocks []Block

	// Page overrides the configured page layout for this call.
	Page *config.PageConfig

	// Colors and Sizes extend the style tables for this call only.
	Colors map[string]style.RGB
	Sizes  map[string]float64
}

// Result describes a produced document.
type Result struct {
	ID         string
	Bytes      []byte
	PageCount  int
	FieldCount int
	Skipped    []fields.Skipped
	Warnings   []string
}

// Generator runs generation calls. It holds no per-call state, so one
// Generator may serve concurrent calls.
type Generator struct {
	cfg     config.Interface
	engine  Engine
	factory document.Factory
	logger  *zap.Logger
}

// New builds a Generator. engine may be nil; requests with markup then fail
// with ErrEngine.
func New(cfg config.Interface, engine Engine, factory document.Factory, logger *zap.Logger) *Generator {
	return &Generator{
		cfg:     cfg,
		engine:  engine,
		factory: factory,
		logger:  logger.Named("generator"),
	}
}

// Generate produces a fillable document for req. Per-field problems are
// reported in Result.Skipped; collaborator failures are returned as errors.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	page := g.cfg.Page()
	if req.Page != nil {
		page = *req.Page
		if err := page.ApplySize(); err != nil {
			return nil, fmt.Errorf("invalid page override: %w", err)
		}
		if err := page.Validate(); err != nil {
			return nil, fmt.Errorf("invalid page override: %w", err)
		}
	}
	if !page.Paginated {
		// Fixed layout: one flow over the available pages, never breaking.
		page.AutoPageBreak = false
	}

	s := newSession(g, id, page, req)
	s.logger.Info("Generation started.",
		zap.Int("fields", len(s.specs)),
		zap.Int("blocks", len(req.Blocks)),
		zap.Bool("paginated", page.Paginated))

	res, err := s.run(ctx)
	if err != nil {
		s.logger.Error("Generation failed.", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Generation complete.",
		zap.Int("pages", res.PageCount),
		zap.Int("fields", res.FieldCount),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("bytes", len(res.Bytes)))
	return res, nil
}
