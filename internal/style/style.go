// File: internal/style/style.go
package style

// Align is horizontal text alignment.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Decoration is a text decoration line.
type Decoration string

const (
	DecorationNone        Decoration = "none"
	DecorationUnderline   Decoration = "underline"
	DecorationLineThrough Decoration = "line-through"
)

// Edges holds per-side spacing in points.
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns Edges with the same value on every side.
func Uniform(v float64) Edges { return Edges{Top: v, Right: v, Bottom: v, Left: v} }

// Horizontal is Left + Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical is Top + Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Style is a partial style record. A nil field means no token set it.
type Style struct {
	Background   *RGB
	TextColor    *RGB
	BorderColor  *RGB
	FontSize     *float64
	BorderWidth  *float64
	BorderRadius *float64
	Align        *Align
	FontWeight   *int
	Italic       *bool
	Decoration   *Decoration
	Padding      *Edges
	Margin       *Edges
	Opacity      *float64
}

// Bold reports whether the resolved weight is 600 or heavier.
func (s Style) Bold() bool {
	return s.FontWeight != nil && *s.FontWeight >= 600
}

func ptr[T any](v T) *T { return &v }
