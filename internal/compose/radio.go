package compose

import (
	"math"

	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// RadioLayout stacks the options of a radio group downward from top.
func (c *Composer) RadioLayout(spec *fields.Spec, x, top float64) []document.Option {
	r := spec.Radio
	size, spacing := c.defaults.RadioSize, c.defaults.RadioSpacing
	if r.Size > 0 {
		size = r.Size
	}
	if r.Spacing > 0 {
		spacing = r.Spacing
	}
	out := make([]document.Option, len(r.Options))
	for i, o := range r.Options {
		optTop := top - float64(i)*(size+spacing)
		out[i] = document.Option{
			Value: o.Value,
			Label: o.Caption(),
			Rect:  geometry.Rect{X: x, Y: optTop - size, Width: size, Height: size},
		}
	}
	return out
}

// AggregateHeight is max(y+h) - min(y) over the options.
func AggregateHeight(opts []document.Option) float64 {
	if len(opts) == 0 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range opts {
		lo = math.Min(lo, o.Rect.Y)
		hi = math.Max(hi, o.Rect.Y+o.Rect.Height)
	}
	return hi - lo
}

// Bounds is the rectangle enclosing every option.
func Bounds(opts []document.Option) geometry.Rect {
	if len(opts) == 0 {
		return geometry.Rect{}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	left, right := math.Inf(1), math.Inf(-1)
	for _, o := range opts {
		lo = math.Min(lo, o.Rect.Y)
		hi = math.Max(hi, o.Rect.Y+o.Rect.Height)
		left = math.Min(left, o.Rect.X)
		right = math.Max(right, o.Rect.X+o.Rect.Width)
	}
	return geometry.Rect{X: left, Y: lo, Width: right - left, Height: hi - lo}
}

// Shift moves every option vertically by the same delta.
func Shift(opts []document.Option, delta float64) {
	for i := range opts {
		opts[i].Rect.Y += delta
	}
}
