// File: internal/style/color.go
package style

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a color triple. Channels are in [0,1] once normalised; raw input may
// use the 0-255 range instead.
type RGB [3]float64

var (
	White = RGB{1, 1, 1}
	Black = RGB{0, 0, 0}
)

// Normalize maps one channel into [0,1]. Values above 1 are treated as 0-255
// and divided first; the clamp is applied afterwards.
func Normalize(c float64) float64 {
	if c > 1 {
		c /= 255
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NormalizeRGB normalises every channel of c.
func NormalizeRGB(c RGB) RGB {
	return RGB{Normalize(c[0]), Normalize(c[1]), Normalize(c[2])}
}

// ParseHex parses "#rrggbb" or "#rgb" into a normalised triple.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}, nil
}

func mustHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders c as "#rrggbb".
func (c RGB) Hex() string {
	n := NormalizeRGB(c)
	return fmt.Sprintf("#%02x%02x%02x",
		int(n[0]*255+0.5), int(n[1]*255+0.5), int(n[2]*255+0.5))
}

var shades = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}

var palette = map[string][]string{
	"slate":  {"#f8fafc", "#f1f5f9", "#e2e8f0", "#cbd5e1", "#94a3b8", "#64748b", "#475569", "#334155", "#1e293b", "#0f172a"},
	"gray":   {"#f9fafb", "#f3f4f6", "#e5e7eb", "#d1d5db", "#9ca3af", "#6b7280", "#4b5563", "#374151", "#1f2937", "#111827"},
	"red":    {"#fef2f2", "#fee2e2", "#fecaca", "#fca5a5", "#f87171", "#ef4444", "#dc2626", "#b91c1c", "#991b1b", "#7f1d1d"},
	"orange": {"#fff7ed", "#ffedd5", "#fed7aa", "#fdba74", "#fb923c", "#f97316", "#ea580c", "#c2410c", "#9a3412", "#7c2d12"},
	"yellow": {"#fefce8", "#fef9c3", "#fef08a", "#fde047", "#facc15", "#eab308", "#ca8a04", "#a16207", "#854d0e", "#713f12"},
	"green":  {"#f0fdf4", "#dcfce7", "#bbf7d0", "#86efac", "#4ade80", "#22c55e", "#16a34a", "#15803d", "#166534", "#14532d"},
	"blue":   {"#eff6ff", "#dbeafe", "#bfdbfe", "#93c5fd", "#60a5fa", "#3b82f6", "#2563eb", "#1d4ed8", "#1e40af", "#1e3a8a"},
	"indigo": {"#eef2ff", "#e0e7ff", "#c7d2fe", "#a5b4fc", "#818cf8", "#6366f1", "#4f46e5", "#4338ca", "#3730a3", "#312e81"},
	"purple": {"#faf5ff", "#f3e8ff", "#e9d5ff", "#d8b4fe", "#c084fc", "#a855f7", "#9333ea", "#7e22ce", "#6b21a8", "#581c87"},
	"pink":   {"#fdf2f8", "#fce7f3", "#fbcfe8", "#f9a8d4", "#f472b6", "#ec4899", "#db2777", "#be185d", "#9d174d", "#831843"},
}

// ColorTable maps color tokens such as "blue-500" to normalised triples.
var ColorTable = buildColorTable()

func buildColorTable() map[string]RGB {
	t := map[string]RGB{"white": White, "black": Black}
	for family, hexes := range palette {
		for i, h := range hexes {
			t[family+"-"+shades[i]] = mustHex(h)
		}
	}
	return t
}

// SizeTable maps text size tokens to points.
var SizeTable = map[string]float64{
	"xs":   10,
	"sm":   12,
	"base": 14,
	"lg":   16,
	"xl":   18,
	"2xl":  22,
	"3xl":  26,
	"4xl":  32,
}
