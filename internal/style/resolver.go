// File: internal/style/resolver.go
package style

import (
	"math"
	"strconv"
	"strings"
)

// SpacingUnit is the number of points one spacing step represents.
const SpacingUnit = 3.0

var borderWidths = map[string]float64{
	"border":   1,
	"border-0": 0,
	"border-2": 2,
	"border-4": 4,
	"border-8": 8,
}

var radii = map[string]float64{
	"rounded-none": 0,
	"rounded-sm":   2,
	"rounded":      4,
	"rounded-md":   6,
	"rounded-lg":   8,
	"rounded-xl":   12,
	"rounded-2xl":  16,
	"rounded-full": 9999,
}

var weights = map[string]int{
	"font-thin":       100,
	"font-extralight": 200,
	"font-light":      300,
	"font-normal":     400,
	"font-medium":     500,
	"font-semibold":   600,
	"font-bold":       700,
	"font-extrabold":  800,
	"font-black":      900,
}

var alignments = map[string]Align{
	"text-left":    AlignLeft,
	"text-center":  AlignCenter,
	"text-right":   AlignRight,
	"text-justify": AlignJustify,
}

// Resolver maps atomic class tokens to a partial Style. The zero value is not
// usable; call NewResolver. A Resolver is not safe for concurrent registration.
type Resolver struct {
	colors map[string]RGB
	sizes  map[string]float64
}

// NewResolver returns a Resolver backed by the built-in tables.
func NewResolver() *Resolver {
	return &Resolver{
		colors: make(map[string]RGB),
		sizes:  make(map[string]float64),
	}
}

// RegisterColor adds a named color. It shadows a built-in only when the names match.
func (r *Resolver) RegisterColor(name string, c RGB) {
	r.colors[name] = NormalizeRGB(c)
}

// RegisterSize adds a named text size in points, used as "text-<name>".
func (r *Resolver) RegisterSize(name string, points float64) {
	r.sizes[name] = points
}

func (r *Resolver) color(name string) (RGB, bool) {
	if c, ok := r.colors[name]; ok {
		return c, true
	}
	c, ok := ColorTable[name]
	return c, ok
}

func (r *Resolver) size(name string) (float64, bool) {
	if s, ok := r.sizes[name]; ok {
		return s, true
	}
	s, ok := SizeTable[name]
	return s, ok
}

// ResolveClasses splits a whitespace separated class list and resolves it.
func (r *Resolver) ResolveClasses(classes string) Style {
	return r.Resolve(strings.Fields(classes))
}

// Resolve evaluates tokens left to right; within a category the last match wins.
// Unknown tokens are ignored.
func (r *Resolver) Resolve(tokens []string) Style {
	var s Style
	for _, tok := range tokens {
		r.apply(&s, strings.TrimSpace(tok))
	}
	return s
}

func (r *Resolver) apply(s *Style, tok string) {
	if tok == "" {
		return
	}
	if w, ok := borderWidths[tok]; ok {
		s.BorderWidth = ptr(w)
		return
	}
	if v, ok := radii[tok]; ok {
		s.BorderRadius = ptr(v)
		return
	}
	if v, ok := weights[tok]; ok {
		s.FontWeight = ptr(v)
		return
	}
	if a, ok := alignments[tok]; ok {
		s.Align = ptr(a)
		return
	}

	switch tok {
	case "italic":
		s.Italic = ptr(true)
		return
	case "not-italic":
		s.Italic = ptr(false)
		return
	case "underline":
		s.Decoration = ptr(DecorationUnderline)
		return
	case "line-through":
		s.Decoration = ptr(DecorationLineThrough)
		return
	case "no-underline":
		s.Decoration = ptr(DecorationNone)
		return
	}

	switch {
	case strings.HasPrefix(tok, "bg-"):
		if c, ok := r.color(tok[3:]); ok {
			s.Background = ptr(c)
		}
	case strings.HasPrefix(tok, "text-"):
		name := tok[5:]
		if sz, ok := r.size(name); ok {
			s.FontSize = ptr(sz)
		} else if c, ok := r.color(name); ok {
			s.TextColor = ptr(c)
		}
	case strings.HasPrefix(tok, "border-"):
		if c, ok := r.color(tok[7:]); ok {
			s.BorderColor = ptr(c)
		}
	case strings.HasPrefix(tok, "opacity-"):
		if n, ok := parseFinite(tok[8:]); ok && n >= 0 && n <= 100 {
			s.Opacity = ptr(n / 100)
		}
	case strings.HasPrefix(tok, "p"):
		applySpacing(&s.Padding, tok[1:])
	case strings.HasPrefix(tok, "m"):
		applySpacing(&s.Margin, tok[1:])
	}
}

// applySpacing handles the remainder of a spacing token after its p/m prefix:
// "-4", "x-2", "t-1", and so on.
func applySpacing(dst **Edges, rest string) {
	side, num, ok := strings.Cut(rest, "-")
	if !ok || len(side) > 1 {
		return
	}
	n, ok := parseFinite(num)
	if !ok || n < 0 {
		return
	}
	v := n * SpacingUnit

	e := Edges{}
	if *dst != nil {
		e = **dst
	}
	switch side {
	case "":
		e = Uniform(v)
	case "x":
		e.Left, e.Right = v, v
	case "y":
		e.Top, e.Bottom = v, v
	case "t":
		e.Top = v
	case "r":
		e.Right = v
	case "b":
		e.Bottom = v
	case "l":
		e.Left = v
	default:
		return
	}
	*dst = &e
}

// parseFinite parses s as a float. NaN and infinities are rejected.
func parseFinite(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
