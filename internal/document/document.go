// File: internal/document/document.go
package document

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/font"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/style"
)

// ErrNoPage is returned when an operation targets a page that was never created.
var ErrNoPage = errors.New("page does not exist")

// Page identifies a page in the document under construction.
type Page struct {
	Index  int
	Width  float64
	Height float64
}

// Field is the handle returned by CreateField.
type Field struct {
	ID   int
	Name string
	Kind fields.Kind
}

// Appearance is the fully composed visual attributes of a widget.
type Appearance struct {
	FontName     string      `json:"fontName"`
	FontSize     float64     `json:"fontSize"`
	TextColor    style.RGB   `json:"textColor"`
	BorderColor  style.RGB   `json:"borderColor"`
	BorderWidth  float64     `json:"borderWidth"`
	BorderRadius float64     `json:"borderRadius,omitempty"`
	Background   *style.RGB  `json:"background,omitempty"`
	Align        style.Align `json:"align,omitempty"`
	Bold         bool        `json:"bold,omitempty"`
	Italic       bool        `json:"italic,omitempty"`
	Padding      style.Edges `json:"padding"`
	Opacity      float64     `json:"opacity"`
}

// Option is one placed choice of a radio group.
type Option struct {
	Value string        `json:"value"`
	Label string        `json:"label"`
	Rect  geometry.Rect `json:"rect"`
}

// Caption is how option captions of a radio group are set: the text style
// and the gap between a button and its caption.
type Caption struct {
	Text TextOptions `json:"text"`
	Gap  float64     `json:"gap"`
}

// Widget is a field's placement on a page. Rect uses the bottom-left origin.
type Widget struct {
	Rect       geometry.Rect `json:"rect"`
	Appearance Appearance    `json:"appearance"`
	Spec       *fields.Spec  `json:"-"`
	Options    []Option      `json:"options,omitempty"`
	Caption    *Caption      `json:"caption,omitempty"`
}

// TextOptions controls DrawText.
type TextOptions struct {
	FontName string      `json:"fontName,omitempty"`
	FontSize float64     `json:"fontSize"`
	Color    style.RGB   `json:"color"`
	Bold     bool        `json:"bold,omitempty"`
	Align    style.Align `json:"align,omitempty"`
	// Width is the box the text is aligned within; zero means no box.
	Width float64 `json:"width,omitempty"`
}

// RectOptions controls DrawRect. A nil color disables that paint operation.
type RectOptions struct {
	Stroke    *style.RGB `json:"stroke,omitempty"`
	Fill      *style.RGB `json:"fill,omitempty"`
	LineWidth float64    `json:"lineWidth"`
}

// Builder is the document-construction capability the layout core drives.
// Implementations are used by a single goroutine.
type Builder interface {
	PageCount() int
	AddPage(width, height float64) (Page, error)
	Page(index int) (Page, bool)
	CreateField(kind fields.Kind, name string) (Field, error)
	PlaceField(f Field, p Page, w Widget) error
	DrawText(p Page, text string, x, y float64, opts TextOptions) error
	DrawRect(p Page, r geometry.Rect, opts RectOptions) error
	Serialize(ctx context.Context) ([]byte, error)
}

// OptionCaptioner is implemented by builders whose radio widgets carry their
// own option captions. The composer does not draw captions for them.
type OptionCaptioner interface {
	CaptionsOptions() bool
}

// Factory creates a Builder. base holds previously rendered pages to draw on
// top of and may be nil for an empty document.
type Factory func(base []byte) (Builder, error)

// DefaultFontName is used when no font is configured.
const DefaultFontName = "Helvetica"

// metricsSize is the font size metrics are queried at; core font widths are
// defined per 1000 units of text space.
const metricsSize = 1000

// TextWidth is the advance width of s set in fontName at fontSize, from the
// font's metrics when it is one of the 14 core fonts. Other fonts, and non-ASCII
// text, fall back to an average glyph width of half the font size.
func TextWidth(s, fontName string, fontSize float64) float64 {
	if fontName == "" {
		fontName = DefaultFontName
	}
	if font.IsCoreFont(fontName) && ascii(s) {
		return font.TextWidth(s, fontName, metricsSize) * fontSize / metricsSize
	}
	return float64(utf8.RuneCountInString(s)) * fontSize * 0.5
}

func ascii(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
