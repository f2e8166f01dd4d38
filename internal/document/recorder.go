package document

import (
	"context"
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// Op is one recorded drawing operation.
type Op struct {
	Kind    string        `json:"op"`
	Page    int           `json:"page"`
	Text    string        `json:"text,omitempty"`
	X       float64       `json:"x,omitempty"`
	Y       float64       `json:"y,omitempty"`
	Rect    geometry.Rect `json:"rect,omitempty"`
	Field   string        `json:"field,omitempty"`
	Widget  *Widget       `json:"widget,omitempty"`
	TextOpt *TextOptions  `json:"textOptions,omitempty"`
	RectOpt *RectOptions  `json:"rectOptions,omitempty"`
}

// Recorder is an in-memory Builder. Serialize returns the operation log as JSON,
// which backs the dry-run output and the layout tests.
type Recorder struct {
	Base   []byte
	Pages  []Page
	Fields []Field
	Ops    []Op

	// Reject, when set, is consulted by PlaceField and may refuse a widget.
	Reject func(f Field, w Widget) error
}

// NewRecorder returns a Recorder seeded with basePages pages of the given size.
func NewRecorder(basePages int, width, height float64) *Recorder {
	r := &Recorder{}
	for i := 0; i < basePages; i++ {
		r.Pages = append(r.Pages, Page{Index: i, Width: width, Height: height})
	}
	return r
}

// RecorderFactory adapts NewRecorder to a Factory that ignores base bytes.
func RecorderFactory(basePages int, width, height float64) Factory {
	return func(base []byte) (Builder, error) {
		r := NewRecorder(basePages, width, height)
		r.Base = base
		return r, nil
	}
}

func (r *Recorder) PageCount() int { return len(r.Pages) }

func (r *Recorder) AddPage(width, height float64) (Page, error) {
	p := Page{Index: len(r.Pages), Width: width, Height: height}
	r.Pages = append(r.Pages, p)
	r.Ops = append(r.Ops, Op{Kind: "page", Page: p.Index})
	return p, nil
}

func (r *Recorder) Page(index int) (Page, bool) {
	if index < 0 || index >= len(r.Pages) {
		return Page{}, false
	}
	return r.Pages[index], true
}

func (r *Recorder) CreateField(kind fields.Kind, name string) (Field, error) {
	f := Field{ID: len(r.Fields) + 1, Name: name, Kind: kind}
	r.Fields = append(r.Fields, f)
	return f, nil
}

func (r *Recorder) PlaceField(f Field, p Page, w Widget) error {
	if _, ok := r.Page(p.Index); !ok {
		return fmt.Errorf("place %q on page %d: %w", f.Name, p.Index, ErrNoPage)
	}
	if r.Reject != nil {
		if err := r.Reject(f, w); err != nil {
			return err
		}
	}
	wc := w
	r.Ops = append(r.Ops, Op{Kind: "field", Page: p.Index, Field: f.Name, Rect: w.Rect, Widget: &wc})
	return nil
}

func (r *Recorder) DrawText(p Page, text string, x, y float64, opts TextOptions) error {
	if _, ok := r.Page(p.Index); !ok {
		return fmt.Errorf("draw text on page %d: %w", p.Index, ErrNoPage)
	}
	o := opts
	r.Ops = append(r.Ops, Op{Kind: "text", Page: p.Index, Text: text, X: x, Y: y, TextOpt: &o})
	return nil
}

func (r *Recorder) DrawRect(p Page, rect geometry.Rect, opts RectOptions) error {
	if _, ok := r.Page(p.Index); !ok {
		return fmt.Errorf("draw rect on page %d: %w", p.Index, ErrNoPage)
	}
	o := opts
	r.Ops = append(r.Ops, Op{Kind: "rect", Page: p.Index, Rect: rect, RectOpt: &o})
	return nil
}

func (r *Recorder) Serialize(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(struct {
		Pages []Page `json:"pages"`
		Ops   []Op   `json:"ops"`
	}{r.Pages, r.Ops}, "", "  ")
}

// OpsOf filters the log by kind.
func (r *Recorder) OpsOf(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every string drawn on page.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" && op.Page == page {
			out = append(out, op.Text)
		}
	}
	return out
}
