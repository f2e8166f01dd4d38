package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDocSpace(t *testing.T) {
	t.Run("converts and flips a rendered rectangle", func(t *testing.T) {
		rc := NewReconciler(0.75)
		got := rc.ToDocSpace(RawRect{Left: 100, Top: 50, Width: 200, Height: 30, ViewportHeight: 800})

		assert.Equal(t, DocRect{X: 75, Y: 37.5, Width: 150, Height: 22.5, FlippedY: 540}, got)
	})

	t.Run("falls back to the default scale", func(t *testing.T) {
		rc := NewReconciler(0)
		assert.Equal(t, PointsPerPixel, rc.Scale)
		assert.InDelta(t, 96.0, rc.ToPixels(72), 1e-9)
	})

	t.Run("element below the viewport yields a negative ordinate", func(t *testing.T) {
		rc := NewReconciler(1)
		got := rc.ToDocSpace(RawRect{Top: 900, Height: 20, ViewportHeight: 800})
		assert.Equal(t, -120.0, got.FlippedY)
	})
}

func TestExplicitRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, DocRect{X: 10, Y: 20, Width: 30, Height: 40, FlippedY: 20}, r.DocRect())
}

func TestLookupPaper(t *testing.T) {
	p, ok := LookupPaper(" Letter ")
	assert.True(t, ok)
	assert.Equal(t, 612.0, p.Width)
	assert.Equal(t, 792.0, p.Height)

	l := p.Landscape()
	assert.Equal(t, 792.0, l.Width)
	assert.InDelta(t, 11.0, l.WidthInches(), 1e-9)

	_, ok = LookupPaper("b5")
	assert.False(t, ok)
}
