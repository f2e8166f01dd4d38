// File: internal/document/pdfform/builder.go
package pdfform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	json "github.com/json-iterator/go"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Builder collects pages, drawings and form fields into pdfcpu's JSON content
// model and merges it onto the base document on Serialize.
type Builder struct {
	logger *zap.Logger
	conf   *model.Configuration
	base   []byte

	pages  []document.Page
	model  contentModel
	fields int
}

// NewFactory returns a document.Factory backed by pdfcpu.
func NewFactory(logger *zap.Logger) document.Factory {
	return func(base []byte) (document.Builder, error) {
		return New(logger, base)
	}
}

// New creates a Builder. When base is non-empty its pages are adopted as the
// initial page set and fields are drawn over them.
func New(logger *zap.Logger, base []byte) (*Builder, error) {
	b := &Builder{
		logger: logger.Named("pdfform"),
		conf:   model.NewDefaultConfiguration(),
		base:   base,
		model:  contentModel{Origin: "LowerLeft", Pages: make(map[string]*pageModel)},
	}
	if len(base) == 0 {
		return b, nil
	}

	dims, err := api.PageDims(bytes.NewReader(base), b.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read base document: %w", err)
	}
	for i, d := range dims {
		b.pages = append(b.pages, document.Page{Index: i, Width: d.Width, Height: d.Height})
	}
	b.logger.Debug("Adopted base document.", zap.Int("pages", len(b.pages)))
	return b, nil
}

// CountPages returns the number of pages in a serialized document.
func CountPages(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

func (b *Builder) PageCount() int { return len(b.pages) }

func (b *Builder) Page(index int) (document.Page, bool) {
	if index < 0 || index >= len(b.pages) {
		return document.Page{}, false
	}
	return b.pages[index], true
}

func (b *Builder) AddPage(width, height float64) (document.Page, error) {
	p := document.Page{Index: len(b.pages), Width: width, Height: height}
	pm := b.page(p.Index)
	if name, ok := paperName(width, height); ok {
		pm.Paper = name
	} else {
		b.logger.Warn("Page size has no paper name, pdfcpu will use its default.",
			zap.Float64("width", width), zap.Float64("height", height))
	}
	if b.model.Paper == "" {
		b.model.Paper = pm.Paper
	}
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *Builder) page(index int) *pageModel {
	key := pageKey(index)
	pm, ok := b.model.Pages[key]
	if !ok {
		pm = &pageModel{}
		b.model.Pages[key] = pm
	}
	return pm
}

func (b *Builder) checkPage(p document.Page) (*pageModel, error) {
	if _, ok := b.Page(p.Index); !ok {
		return nil, fmt.Errorf("page %d: %w", p.Index, document.ErrNoPage)
	}
	return b.page(p.Index), nil
}

func (b *Builder) CreateField(kind fields.Kind, name string) (document.Field, error) {
	if name == "" {
		return document.Field{}, fmt.Errorf("field name must not be empty")
	}
	b.fields++
	return document.Field{ID: b.fields, Name: name, Kind: kind}, nil
}

func (b *Builder) DrawText(p document.Page, text string, x, y float64, opts document.TextOptions) error {
	pm, err := b.checkPage(p)
	if err != nil {
		return err
	}
	name := opts.FontName
	if name == "" {
		name = document.DefaultFontName
	}
	if opts.Bold {
		name += "-Bold"
	}
	pm.Content.Text = append(pm.Content.Text, textItem{
		Value: text,
		Pos:   [2]float64{x, y},
		Font:  font(name, opts.FontSize, opts.Color),
		Align: string(opts.Align),
		Width: opts.Width,
	})
	return nil
}

func (b *Builder) DrawRect(p document.Page, r geometry.Rect, opts document.RectOptions) error {
	pm, err := b.checkPage(p)
	if err != nil {
		return err
	}
	item := boxItem{
		Pos:       [2]float64{r.X, r.Y},
		Width:     r.Width,
		Height:    r.Height,
		FillColor: hexPtr(opts.Fill),
	}
	if opts.Stroke != nil {
		item.Border = border(opts.LineWidth, *opts.Stroke)
	}
	pm.Content.Box = append(pm.Content.Box, item)
	return nil
}

func (b *Builder) PlaceField(f document.Field, p document.Page, w document.Widget) error {
	pm, err := b.checkPage(p)
	if err != nil {
		return err
	}
	if w.Spec == nil {
		return fmt.Errorf("field %q has no spec", f.Name)
	}
	a := w.Appearance
	pos := [2]float64{w.Rect.X, w.Rect.Y}
	fnt := font(a.FontName, a.FontSize, a.TextColor)
	brd := border(a.BorderWidth, a.BorderColor)
	locked := w.Spec.ReadOnly

	switch f.Kind {
	case fields.KindText:
		t := w.Spec.Text
		if t == nil {
			t = &fields.TextOptions{}
		}
		if t.Password {
			b.logger.Debug("Password masking is not supported by the backend; emitting a plain text field.", zap.String("field", f.Name))
		}
		pm.Content.TextFields = append(pm.Content.TextFields, textField{
			ID: f.Name, Value: t.Default, Default: t.Default, Pos: pos,
			Width: w.Rect.Width, Height: w.Rect.Height, Multiline: t.Multiline,
			Font: fnt, Border: brd, Background: hexPtr(a.Background),
			Align: alignOf(t.Align, a.Align), Locked: locked, MaxLen: t.MaxLength,
		})

	case fields.KindSignature:
		// The create model has no signature widget: a multiline text field inside a frame.
		pm.Content.Box = append(pm.Content.Box, boxItem{
			Pos: pos, Width: w.Rect.Width, Height: w.Rect.Height,
			FillColor: hexPtr(a.Background), Border: border(maxf(a.BorderWidth, 1), a.BorderColor),
		})
		pm.Content.TextFields = append(pm.Content.TextFields, textField{
			ID: f.Name, Pos: pos, Width: w.Rect.Width, Height: w.Rect.Height,
			Multiline: true, Font: fnt, Locked: locked,
		})

	case fields.KindCheckbox:
		c := w.Spec.Checkbox
		if c == nil {
			c = &fields.CheckboxOptions{}
		}
		pm.Content.CheckBoxes = append(pm.Content.CheckBoxes, checkBox{
			ID: f.Name, Value: c.Default, Default: c.Default, Pos: pos,
			Width: w.Rect.Width, Font: fnt, Locked: locked,
		})

	case fields.KindRadio:
		r := w.Spec.Radio
		top := pos
		if len(w.Options) > 0 {
			top = [2]float64{w.Options[0].Rect.X, w.Options[0].Rect.Y}
		}
		pm.Content.RadioGroups = append(pm.Content.RadioGroups, radioGroup{
			ID: f.Name, Value: r.Default, Default: r.Default, Pos: top,
			Width: w.Rect.Width, Orientation: "vertical",
			Buttons: b.radioButtons(f.Name, w, a), Font: fnt, Locked: locked,
		})

	case fields.KindDropdown:
		d := w.Spec.Dropdown
		pm.Content.ComboBoxes = append(pm.Content.ComboBoxes, comboBox{
			ID: f.Name, Value: d.Default, Default: d.Default, Options: d.Options,
			Pos: pos, Width: w.Rect.Width, Font: fnt, Border: brd,
			Background: hexPtr(a.Background), Align: string(a.Align), Edit: d.Editable, Locked: locked,
		})

	case fields.KindButton:
		// Push buttons are drawn as a framed caption; the action is not attached.
		btn := w.Spec.Button
		if btn == nil {
			btn = &fields.ButtonOptions{Action: fields.ActionNone}
		}
		if btn.Action != "" && btn.Action != fields.ActionNone {
			b.logger.Warn("Button actions are not supported by the backend; drawing appearance only.",
				zap.String("field", f.Name), zap.String("action", string(btn.Action)))
		}
		fill := a.Background
		if fill == nil {
			fill = &style.RGB{0.9, 0.9, 0.9}
		}
		pm.Content.Box = append(pm.Content.Box, boxItem{
			Pos: pos, Width: w.Rect.Width, Height: w.Rect.Height,
			FillColor: hex(*fill), Border: brd, Round: a.BorderRadius,
		})
		label := btn.Label
		if label == "" {
			label = f.Name
		}
		pm.Content.Text = append(pm.Content.Text, textItem{
			Value: label,
			Pos:   [2]float64{w.Rect.X, w.Rect.Y + (w.Rect.Height-a.FontSize)/2},
			Font:  fnt, Align: "center", Width: w.Rect.Width,
		})

	default:
		return fmt.Errorf("field %q: unsupported kind %q", f.Name, f.Kind)
	}
	return nil
}

// CaptionsOptions reports that radio groups placed here carry their own option
// captions.
func (b *Builder) CaptionsOptions() bool { return true }

// radioButtons builds the button set of a radio group. The backend captions
// every button with its export value, so a differing option label is logged
// and not drawn.
func (b *Builder) radioButtons(name string, w document.Widget, a document.Appearance) radioButtons {
	capt := document.Caption{
		Text: document.TextOptions{FontName: a.FontName, FontSize: a.FontSize, Color: a.TextColor},
	}
	if w.Caption != nil {
		capt = *w.Caption
	}
	if capt.Text.FontName == "" {
		capt.Text.FontName = document.DefaultFontName
	}
	if capt.Text.FontSize <= 0 {
		capt.Text.FontSize = 10
	}

	values := make([]string, 0, len(w.Options))
	widest, spacing := 0.0, 0.0
	for i, o := range w.Options {
		values = append(values, o.Value)
		if o.Label != "" && o.Label != o.Value {
			b.logger.Warn("Radio option is captioned with its value.",
				zap.String("field", name), zap.String("value", o.Value), zap.String("label", o.Label))
		}
		widest = math.Max(widest, document.TextWidth(o.Value, capt.Text.FontName, capt.Text.FontSize))
		if i == 1 {
			spacing = w.Options[0].Rect.Y - o.Rect.Y - o.Rect.Height
		}
	}
	return radioButtons{
		Values: values,
		Gap:    int(math.Round(capt.Gap)),
		Label: &buttonLabel{
			Value:    name,
			Width:    int(math.Ceil(widest)) + 1,
			Gap:      int(math.Round(spacing)),
			Position: "right",
			Font:     font(capt.Text.FontName, capt.Text.FontSize, capt.Text.Color),
		},
	}
}

func alignOf(explicit, resolved style.Align) string {
	if explicit != "" {
		return string(explicit)
	}
	return string(resolved)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Serialize merges the content model onto the base document and returns the PDF bytes.
func (b *Builder) Serialize(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(b.model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content model: %w", err)
	}

	var rs io.ReadSeeker
	if len(b.base) > 0 {
		rs = bytes.NewReader(b.base)
	}
	var out bytes.Buffer
	if err := api.Create(rs, bytes.NewReader(payload), &out, b.conf); err != nil {
		return nil, fmt.Errorf("pdfcpu create failed: %w", err)
	}
	b.logger.Debug("Document serialized.",
		zap.Int("pages", len(b.pages)), zap.Int("fields", b.fields), zap.Int("bytes", out.Len()))
	return out.Bytes(), nil
}

// ContentModel returns the JSON content model that Serialize would submit.
func (b *Builder) ContentModel() ([]byte, error) {
	return json.MarshalIndent(b.model, "", "  ")
}
