// File: internal/geometry/geometry.go
package geometry

// PointsPerPixel converts CSS pixels (96 per inch) into PDF points (72 per inch).
const PointsPerPixel = 0.75

// RawRect is an element rectangle as reported by the rendering engine.
// Origin is the top-left of the document, Y grows downward, units are CSS pixels.
// Top is measured from the start of the document, so it includes the scroll offset.
type RawRect struct {
	Left           float64 `json:"left"`
	Top            float64 `json:"top"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// Bottom returns the lower edge of the rectangle in rendering space.
func (r RawRect) Bottom() float64 { return r.Top + r.Height }

// DocRect is a rectangle in document space (points, origin bottom-left, Y up).
// FlippedY is the bottom-left ordinate the document backend expects and is the
// field to place by. For rectangles reconciled from the renderer Y keeps the
// top-down ordinate; for explicit positions it equals FlippedY.
type DocRect struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FlippedY float64 `json:"flippedY"`
}

// Rect is an explicitly supplied document-space rectangle. Y is the bottom-left ordinate.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DocRect returns the rectangle unchanged, with FlippedY equal to Y.
func (r Rect) DocRect() DocRect {
	return DocRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, FlippedY: r.Y}
}

// Reconciler maps rendering-space rectangles into document space.
type Reconciler struct {
	Scale float64
}

// NewReconciler returns a Reconciler using scale, or PointsPerPixel when scale is not positive.
func NewReconciler(scale float64) Reconciler {
	if scale <= 0 {
		scale = PointsPerPixel
	}
	return Reconciler{Scale: scale}
}

// ToDocSpace converts a RawRect. It is pure and has no error path.
func (rc Reconciler) ToDocSpace(r RawRect) DocRect {
	s := rc.Scale
	return DocRect{
		X:        r.Left * s,
		Y:        r.Top * s,
		Width:    r.Width * s,
		Height:   r.Height * s,
		FlippedY: (r.ViewportHeight - r.Bottom()) * s,
	}
}

// ToPixels converts a length in points back into rendering pixels.
func (rc Reconciler) ToPixels(points float64) float64 {
	if rc.Scale == 0 {
		return points / PointsPerPixel
	}
	return points / rc.Scale
}
