// File: internal/compose/composer.go
package compose

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/flow"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/style"
)

// ErrRejected wraps a backend refusal to place a single field. Generation
// records the field as skipped and continues.
var ErrRejected = errors.New("backend rejected field")

// Composer turns resolved placements into widgets and hands them to the document builder.
type Composer struct {
	doc      document.Builder
	styles   *style.Resolver
	defaults config.FieldsConfig
	logger   *zap.Logger
}

func NewComposer(doc document.Builder, styles *style.Resolver, defaults config.FieldsConfig, logger *zap.Logger) *Composer {
	return &Composer{doc: doc, styles: styles, defaults: defaults, logger: logger.Named("compose")}
}

// Place puts spec on page at rect. rect is in document space; FlippedY is its
// bottom edge.
func (c *Composer) Place(spec *fields.Spec, rect geometry.DocRect, page document.Page) (document.Field, error) {
	spec.Normalize()
	a := c.Appearance(spec)
	box := geometry.Rect{X: rect.X, Y: rect.FlippedY, Width: rect.Width, Height: rect.Height}
	w := c.widget(spec, a, box, box.Y+box.Height)
	return c.commit(spec, page, w)
}

// widget builds the per-kind widget inside box. top is the upper edge used
// for kinds that size themselves (checkbox and radio).
func (c *Composer) widget(spec *fields.Spec, a document.Appearance, box geometry.Rect, top float64) document.Widget {
	w := document.Widget{Rect: box, Appearance: a, Spec: spec}
	switch spec.Kind {
	case fields.KindCheckbox:
		size := c.checkboxSize(spec)
		w.Rect = geometry.Rect{X: box.X, Y: top - size, Width: size, Height: size}
	case fields.KindRadio:
		w.Options = c.RadioLayout(spec, box.X, top)
		w.Rect = Bounds(w.Options)
		w.Caption = &document.Caption{Text: c.labelOptions(), Gap: c.defaults.LabelGap}
	}
	return w
}

// backendCaptions reports whether the document draws radio option captions itself.
func (c *Composer) backendCaptions() bool {
	oc, ok := c.doc.(document.OptionCaptioner)
	return ok && oc.CaptionsOptions()
}

func (c *Composer) commit(spec *fields.Spec, page document.Page, w document.Widget) (document.Field, error) {
	f, err := c.doc.CreateField(spec.Kind, spec.Name)
	if err != nil {
		return document.Field{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if err := c.doc.PlaceField(f, page, w); err != nil {
		return document.Field{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if spec.Kind == fields.KindRadio && !c.backendCaptions() {
		if err := c.drawOptionLabels(page, w); err != nil {
			return document.Field{}, err
		}
	}
	c.logger.Debug("Field placed.",
		zap.String("field", spec.Name),
		zap.String("kind", string(spec.Kind)),
		zap.Int("page", page.Index),
		zap.Float64("x", w.Rect.X),
		zap.Float64("y", w.Rect.Y))
	return f, nil
}

func (c *Composer) checkboxSize(spec *fields.Spec) float64 {
	if spec.Checkbox != nil && spec.Checkbox.Size > 0 {
		return spec.Checkbox.Size
	}
	return c.defaults.CheckboxSize
}

func (c *Composer) labelOptions() document.TextOptions {
	return document.TextOptions{FontName: c.defaults.FontName, FontSize: c.defaults.LabelFontSize, Color: style.Black}
}

func (c *Composer) drawOptionLabels(page document.Page, w document.Widget) error {
	opts := c.labelOptions()
	for _, o := range w.Options {
		x := o.Rect.X + o.Rect.Width + c.defaults.LabelGap
		y := o.Rect.Y + (o.Rect.Height-opts.FontSize)/2 + opts.FontSize*0.15
		if err := c.doc.DrawText(page, o.Label, x, y, opts); err != nil {
			return fmt.Errorf("failed to draw option label: %w", err)
		}
	}
	return nil
}

// Flow places spec at the controller's cursor: caption, overflow check,
// widget, then a single cursor advance.
func (c *Composer) Flow(ctl *flow.Controller, spec *fields.Spec) (document.Field, error) {
	spec.Normalize()
	a := c.Appearance(spec)
	cfg := ctl.Config()
	d := c.defaults

	labelBlock := 0.0
	captionRight := spec.Kind == fields.KindCheckbox && spec.Label != ""
	if spec.Label != "" && !captionRight {
		labelBlock = d.LabelFontSize + d.LabelGap
	}

	x := cfg.Margins.Left + spec.OffsetX
	width := spec.Width
	if width <= 0 {
		width = d.DefaultWidth
	}

	// Lay out at the current cursor first; a page break shifts the result.
	top := ctl.State().CursorY - labelBlock
	var (
		options []document.Option
		height  float64
	)
	switch spec.Kind {
	case fields.KindRadio:
		options = c.RadioLayout(spec, x, top)
		height = AggregateHeight(options)
	case fields.KindCheckbox:
		height = c.checkboxSize(spec)
	case fields.KindSignature:
		height = pickPositive(spec.Height, d.SignatureHeight)
	default:
		height = pickPositive(spec.Height, d.DefaultHeight)
	}

	before := ctl.State().CursorY
	if _, err := ctl.HandleOverflow(labelBlock + height); err != nil {
		return document.Field{}, err
	}
	if delta := ctl.State().CursorY - before; delta != 0 {
		top += delta
		Shift(options, delta)
	}
	page := ctl.Page()

	if labelBlock > 0 {
		opts := c.labelOptions()
		if err := c.doc.DrawText(page, spec.Label, x, top+d.LabelGap, opts); err != nil {
			return document.Field{}, fmt.Errorf("failed to draw label: %w", err)
		}
	}

	box := geometry.Rect{X: x, Y: top - height, Width: width, Height: height}
	w := c.widget(spec, a, box, top)
	if options != nil {
		w.Options = options
		w.Rect = Bounds(options)
	}
	f, err := c.commit(spec, page, w)
	if err != nil {
		return document.Field{}, err
	}

	if captionRight {
		opts := c.labelOptions()
		lx := w.Rect.X + w.Rect.Width + d.LabelGap
		ly := w.Rect.Y + (w.Rect.Height-opts.FontSize)/2 + opts.FontSize*0.15
		if err := c.doc.DrawText(page, spec.Label, lx, ly, opts); err != nil {
			return document.Field{}, fmt.Errorf("failed to draw label: %w", err)
		}
	}

	ctl.Advance(labelBlock + height + d.BlockSpacing)
	return f, nil
}

func pickPositive(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
