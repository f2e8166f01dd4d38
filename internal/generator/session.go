// File: internal/generator/session.go
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/compose"
	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/flow"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/markup"
	"github.com/xkilldash9x/formforge/internal/placement"
	"github.com/xkilldash9x/formforge/internal/style"
)

const closeTimeout = 10 * time.Second

// session is the state of one generation call. Nothing in it is shared with
// other calls.
type session struct {
	g      *Generator
	id     string
	logger *zap.Logger
	page   config.PageConfig
	req    Request

	// specs holds request fields followed by block fields, in order.
	specs   []*fields.Spec
	flowed  map[*fields.Spec]bool
	rc      geometry.Reconciler
	styles  *style.Resolver
	lookup  placement.Lookup
	geom    *placement.PageGeometry
	base    []byte
	skipped []fields.Skipped

	registry *fields.Registry[document.Field]
	doc      document.Builder
	ctl      *flow.Controller
	composer *compose.Composer
	splitter *flow.Splitter

	basePages   int
	flowStarted bool
}

func newSession(g *Generator, id string, page config.PageConfig, req Request) *session {
	s := &session{
		g:        g,
		id:       id,
		logger:   g.logger.With(zap.String("generation_id", id)),
		page:     page,
		req:      req,
		flowed:   make(map[*fields.Spec]bool),
		rc:       geometry.NewReconciler(g.cfg.Render().Scale),
		styles:   style.NewResolver(),
		registry: fields.NewRegistry[document.Field](),
	}
	for name, c := range req.Colors {
		s.styles.RegisterColor(name, style.NormalizeRGB(c))
	}
	for name, pt := range req.Sizes {
		s.styles.RegisterSize(name, pt)
	}
	s.specs = append(s.specs, req.Fields...)
	for _, b := range req.Blocks {
		if b.Kind == BlockField && b.Field != nil {
			s.specs = append(s.specs, b.Field)
			s.flowed[b.Field] = true
		}
	}
	return s
}

func (s *session) skip(sk fields.Skipped) {
	s.skipped = append(s.skipped, sk)
	s.logger.Warn("Field skipped.",
		zap.String("field", sk.Name),
		zap.String("reason", string(sk.Reason)),
		zap.String("detail", sk.Detail))
}

func (s *session) run(ctx context.Context) (*Result, error) {
	accepted := s.admit()

	if s.req.Markup != "" {
		if err := s.render(ctx, accepted); err != nil {
			return nil, err
		}
	}

	doc, err := s.g.factory(s.base)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open document: %v", ErrSerialize, err)
	}
	s.doc = doc
	s.basePages = doc.PageCount()

	ctl, err := flow.NewController(doc, s.page, s.logger)
	if err != nil {
		return nil, fmt.Errorf("invalid page templates: %w", err)
	}
	s.ctl = ctl
	s.splitter = flow.NewSplitter(ctl)
	s.composer = compose.NewComposer(doc, s.styles, s.g.cfg.Fields(), s.logger)

	if s.basePages > 0 {
		if err := ctl.Adopt(s.basePages); err != nil {
			return nil, err
		}
	} else if !s.page.Paginated {
		if _, err := ctl.NewPage(); err != nil {
			return nil, err
		}
	}

	if err := s.flowContent(accepted); err != nil {
		return nil, err
	}
	s.placeFields(accepted)

	if err := ctl.Finalize(); err != nil {
		return nil, err
	}

	out, err := doc.Serialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	warnings := ctl.Warnings()
	for _, sk := range s.skipped {
		warnings = append(warnings, "skipped field "+sk.String())
	}
	return &Result{
		ID:         s.id,
		Bytes:      out,
		PageCount:  doc.PageCount(),
		FieldCount: s.registry.Len(),
		Skipped:    s.skipped,
		Warnings:   warnings,
	}, nil
}

// admit validates every spec and reserves its name. Rejected specs are
// recorded as skipped.
func (s *session) admit() []*fields.Spec {
	var out []*fields.Spec
	for _, spec := range s.specs {
		if err := spec.Validate(); err != nil {
			s.skip(skippedFrom(spec.Name, err))
			continue
		}
		if err := s.registry.Reserve(spec.Name, spec.Kind); err != nil {
			s.skip(skippedFrom(spec.Name, err))
			continue
		}
		out = append(out, spec)
	}
	return out
}

func skippedFrom(name string, err error) fields.Skipped {
	var inv *fields.InvalidError
	if errors.As(err, &inv) {
		return fields.Skipped{Name: name, Reason: inv.Reason, Detail: inv.Detail}
	}
	return fields.Skipped{Name: name, Reason: fields.ReasonInvalidSpec, Detail: err.Error()}
}

// render loads the markup, measures every selector and exports the base pages.
func (s *session) render(ctx context.Context, accepted []*fields.Spec) error {
	if s.g.engine == nil {
		return fmt.Errorf("%w: no rendering engine configured", ErrEngine)
	}
	sess, err := s.g.engine.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngine, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			s.logger.Warn("Failed to close rendering session.", zap.Error(err))
		}
	}()

	p := s.page
	top := p.Margins.Top + p.HeaderHeight
	bottom := p.Margins.Bottom + p.FooterHeight
	rcfg := s.g.cfg.Render()

	format := s.req.Format
	if format == "" {
		if format, err = markup.ParseFormat(rcfg.Format); err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
	}
	title := s.req.Title
	if title == "" {
		title = rcfg.Title
	}
	html, err := markup.Assemble(s.req.Markup, markup.Options{
		Format:   format,
		CSS:      s.req.CSS,
		Title:    title,
		Sanitize: rcfg.Sanitize,
		Page: &markup.PageBox{
			Width:   p.Width,
			Height:  p.Height,
			Margins: config.MarginConfig{Top: top, Right: p.Margins.Right, Bottom: bottom, Left: p.Margins.Left},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := sess.Render(ctx, browser.RenderOptions{
		HTML:           html,
		ViewportWidth:  int64(s.rc.ToPixels(p.Width)),
		ViewportHeight: int64(s.rc.ToPixels(p.Height)),
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	lookup, err := placement.Locate(ctx, sess, placement.Selectors(s.placedSpecs(accepted)), s.g.cfg.Browser().QueryConcurrency, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	s.lookup = lookup
	s.geom = &placement.PageGeometry{
		ContentHeight: s.rc.ToPixels(p.Height - top - bottom),
		TopInset:      s.rc.ToPixels(top),
		PageHeight:    s.rc.ToPixels(p.Height),
	}

	base, err := sess.PrintPDF(ctx, browser.PrintOptions{
		PaperWidth:      p.Width / 72,
		PaperHeight:     p.Height / 72,
		MarginTop:       top / 72,
		MarginBottom:    bottom / 72,
		PrintBackground: rcfg.PrintBackground,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	s.base = base
	return nil
}

// placedSpecs are the accepted specs positioned by selector or rectangle.
func (s *session) placedSpecs(accepted []*fields.Spec) []*fields.Spec {
	var out []*fields.Spec
	for _, spec := range accepted {
		if !s.flowed[spec] && spec.HasPlacement() {
			out = append(out, spec)
		}
	}
	return out
}

// placeFields resolves and composes every positioned field against the
// final page set.
func (s *session) placeFields(accepted []*fields.Spec) {
	d := s.g.cfg.Fields()
	resolver := placement.NewResolver(s.rc, placement.Defaults{
		Width:           d.DefaultWidth,
		Height:          d.DefaultHeight,
		SignatureHeight: d.SignatureHeight,
	}, s.geom)

	for _, spec := range s.placedSpecs(accepted) {
		out := resolver.Resolve(spec, s.lookup, s.doc.PageCount())
		if !out.Placed {
			s.skip(out.Skip(spec.Name))
			continue
		}
		page, _ := s.doc.Page(out.Page)
		f, err := s.composer.Place(spec, out.Rect, page)
		if err != nil {
			s.skip(fields.Skipped{Name: spec.Name, Reason: fields.ReasonBackendRejected, Detail: err.Error()})
			continue
		}
		s.bind(spec, f)
	}
}

func (s *session) bind(spec *fields.Spec, f document.Field) {
	if err := s.registry.Bind(spec.Name, f); err != nil {
		// Names are reserved during admission; a failure here is a bug.
		s.logger.Error("Failed to bind field.", zap.String("field", spec.Name), zap.Error(err))
	}
}
