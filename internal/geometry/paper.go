package geometry

import "strings"

// PaperSize is a named page size in points, portrait orientation.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

var papers = map[string]PaperSize{
	"a3":      {Name: "A3", Width: 842, Height: 1191},
	"a4":      {Name: "A4", Width: 595, Height: 842},
	"a5":      {Name: "A5", Width: 420, Height: 595},
	"letter":  {Name: "Letter", Width: 612, Height: 792},
	"legal":   {Name: "Legal", Width: 612, Height: 1008},
	"tabloid": {Name: "Tabloid", Width: 792, Height: 1224},
}

// LookupPaper finds a paper size by case-insensitive name.
func LookupPaper(name string) (PaperSize, bool) {
	p, ok := papers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Landscape swaps width and height.
func (p PaperSize) Landscape() PaperSize {
	return PaperSize{Name: p.Name, Width: p.Height, Height: p.Width}
}

// WidthInches and HeightInches are used when asking the renderer to print at this size.
func (p PaperSize) WidthInches() float64  { return p.Width / 72 }
func (p PaperSize) HeightInches() float64 { return p.Height / 72 }
