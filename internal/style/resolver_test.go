package style

import (
	"math"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_LastMatchWins(t *testing.T) {
	r := NewResolver()
	s := r.Resolve([]string{"text-sm", "text-lg"})

	require.NotNil(t, s.FontSize)
	assert.Equal(t, 16.0, *s.FontSize)
}

func TestResolve_Composition(t *testing.T) {
	r := NewResolver()
	s := r.Resolve([]string{"bg-blue-500", "text-white", "border-2", "rounded-lg", "p-4"})

	require.NotNil(t, s.Background)
	assert.InDelta(t, 59.0/255, s.Background[0], 1e-9)
	assert.InDelta(t, 130.0/255, s.Background[1], 1e-9)
	assert.InDelta(t, 246.0/255, s.Background[2], 1e-9)

	require.NotNil(t, s.TextColor)
	assert.Equal(t, RGB{1, 1, 1}, *s.TextColor)
	require.NotNil(t, s.BorderWidth)
	assert.Equal(t, 2.0, *s.BorderWidth)
	require.NotNil(t, s.BorderRadius)
	assert.Equal(t, 8.0, *s.BorderRadius)
	require.NotNil(t, s.Padding)
	assert.Equal(t, Uniform(12), *s.Padding)

	assert.Nil(t, s.FontSize, "text-white is a color, not a size")
	assert.Nil(t, s.BorderColor, "border-2 is a width, not a color")
}

func TestResolve_Categories(t *testing.T) {
	r := NewResolver()

	t.Run("text alignment is not a color", func(t *testing.T) {
		s := r.ResolveClasses("text-center text-red-500")
		require.NotNil(t, s.Align)
		assert.Equal(t, AlignCenter, *s.Align)
		require.NotNil(t, s.TextColor)
	})

	t.Run("border color after border width", func(t *testing.T) {
		s := r.ResolveClasses("border border-gray-300")
		require.NotNil(t, s.BorderWidth)
		assert.Equal(t, 1.0, *s.BorderWidth)
		require.NotNil(t, s.BorderColor)
		assert.Equal(t, ColorTable["gray-300"], *s.BorderColor)
	})

	t.Run("axis and side spacing refine earlier tokens", func(t *testing.T) {
		s := r.ResolveClasses("p-2 px-4 pt-1 m-1 mb-3")
		require.NotNil(t, s.Padding)
		assert.Equal(t, Edges{Top: 3, Right: 12, Bottom: 6, Left: 12}, *s.Padding)
		require.NotNil(t, s.Margin)
		assert.Equal(t, Edges{Top: 3, Right: 3, Bottom: 9, Left: 3}, *s.Margin)
	})

	t.Run("weight style decoration opacity", func(t *testing.T) {
		s := r.ResolveClasses("font-bold italic underline opacity-50")
		assert.True(t, s.Bold())
		require.NotNil(t, s.Italic)
		assert.True(t, *s.Italic)
		require.NotNil(t, s.Decoration)
		assert.Equal(t, DecorationUnderline, *s.Decoration)
		require.NotNil(t, s.Opacity)
		assert.Equal(t, 0.5, *s.Opacity)
	})

	t.Run("unknown tokens are ignored", func(t *testing.T) {
		s := r.ResolveClasses("flex grid-cols-2 bg-chartreuse-500 placeholder-gray mx-auto")
		assert.Equal(t, Style{}, s)
	})
}

func TestResolver_Registration(t *testing.T) {
	r := NewResolver()
	r.RegisterColor("brand", RGB{255, 0, 0})
	r.RegisterColor("blue-500", RGB{0, 0, 0})
	r.RegisterSize("huge", 48)

	s := r.ResolveClasses("bg-brand text-huge border-blue-500")
	require.NotNil(t, s.Background)
	assert.Equal(t, RGB{1, 0, 0}, *s.Background)
	require.NotNil(t, s.FontSize)
	assert.Equal(t, 48.0, *s.FontSize)
	require.NotNil(t, s.BorderColor)
	assert.Equal(t, Black, *s.BorderColor, "registered name shadows the built-in")

	other := NewResolver()
	s = other.ResolveClasses("bg-blue-500")
	assert.Equal(t, ColorTable["blue-500"], *s.Background, "registrations stay with their resolver")
}

func TestNormalize(t *testing.T) {
	got := NormalizeRGB(RGB{300, -50, 1.5})
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 0.0, got[1])
	assert.InDelta(t, 1.5/255, got[2], 1e-9)

	assert.Equal(t, 0.5, Normalize(0.5))
	assert.Equal(t, 1.0, Normalize(1))
	assert.InDelta(t, 2.0/255, Normalize(2), 1e-12)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#3b82f6")
	require.NoError(t, err)
	assert.Equal(t, "#3b82f6", c.Hex())

	c, err = ParseHex("fff")
	require.NoError(t, err)
	assert.Equal(t, White, c)

	_, err = ParseHex("#12")
	assert.Error(t, err)
}

func TestResolve_NonFiniteNumbers(t *testing.T) {
	s := NewResolver().Resolve([]string{"p-NaN", "m-Inf", "px-+Inf", "opacity-NaN", "opacity-Inf"})
	assert.Nil(t, s.Padding)
	assert.Nil(t, s.Margin)
	assert.Nil(t, s.Opacity)

	s = NewResolver().Resolve([]string{"p-2", "p-NaN"})
	require.NotNil(t, s.Padding)
	assert.Equal(t, Uniform(6), *s.Padding, "a rejected token leaves earlier spacing intact")
}

func FuzzResolve(f *testing.F) {
	f.Add([]byte("bg-blue-500 text-sm p-4"))
	f.Fuzz(func(t *testing.T, data []byte) {
		input := struct{ Tokens []string }{}
		consumer := fuzz.NewConsumer(data)
		if err := consumer.GenerateStruct(&input); err != nil {
			return
		}
		s := NewResolver().Resolve(input.Tokens)
		if s.Opacity != nil {
			assert.GreaterOrEqual(t, *s.Opacity, 0.0)
			assert.LessOrEqual(t, *s.Opacity, 1.0)
		}
		for _, e := range []*Edges{s.Padding, s.Margin} {
			if e == nil {
				continue
			}
			for _, v := range []float64{e.Top, e.Right, e.Bottom, e.Left} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "spacing must be finite: %v", v)
				assert.GreaterOrEqual(t, v, 0.0)
			}
		}
		for _, c := range []*RGB{s.Background, s.TextColor, s.BorderColor} {
			if c == nil {
				continue
			}
			for _, ch := range c {
				assert.GreaterOrEqual(t, ch, 0.0)
				assert.LessOrEqual(t, ch, 1.0)
			}
		}
	})
}
