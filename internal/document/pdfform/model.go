// File: internal/document/pdfform/model.go
package pdfform

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/formforge/internal/style"
)

// The types below mirror pdfcpu's JSON content model for "create".
// Coordinates use the lower-left origin.

type contentModel struct {
	Paper  string                `json:"paper,omitempty"`
	Origin string                `json:"origin"`
	Pages  map[string]*pageModel `json:"pages"`
}

type pageModel struct {
	Paper   string      `json:"paper,omitempty"`
	Content pageContent `json:"content"`
}

type pageContent struct {
	Text        []textItem   `json:"text,omitempty"`
	Box         []boxItem    `json:"box,omitempty"`
	TextFields  []textField  `json:"textfield,omitempty"`
	CheckBoxes  []checkBox   `json:"checkbox,omitempty"`
	RadioGroups []radioGroup `json:"radiobuttongroup,omitempty"`
	ComboBoxes  []comboBox   `json:"combobox,omitempty"`
}

type fontModel struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col,omitempty"`
}

type borderModel struct {
	Width int    `json:"width"`
	Color string `json:"col,omitempty"`
}

type textItem struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  *fontModel `json:"font,omitempty"`
	Align string     `json:"align,omitempty"`
	Width float64    `json:"width,omitempty"`
}

type boxItem struct {
	Pos       [2]float64   `json:"pos"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	FillColor string       `json:"fillCol,omitempty"`
	Border    *borderModel `json:"border,omitempty"`
	Round     float64      `json:"rnd,omitempty"`
}

type textField struct {
	ID         string       `json:"id"`
	Value      string       `json:"value,omitempty"`
	Default    string       `json:"default,omitempty"`
	Pos        [2]float64   `json:"pos"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height,omitempty"`
	Multiline  bool         `json:"multiline,omitempty"`
	Font       *fontModel   `json:"font,omitempty"`
	Border     *borderModel `json:"border,omitempty"`
	Background string       `json:"bgCol,omitempty"`
	Align      string       `json:"align,omitempty"`
	Locked     bool         `json:"locked,omitempty"`
	MaxLen     int          `json:"maxlen,omitempty"`
}

type checkBox struct {
	ID      string     `json:"id"`
	Value   bool       `json:"value"`
	Default bool       `json:"default,omitempty"`
	Pos     [2]float64 `json:"pos"`
	Width   float64    `json:"width"`
	Font    *fontModel `json:"font,omitempty"`
	Locked  bool       `json:"locked,omitempty"`
}

// buttonLabel sets the captions drawn next to each button, which show the
// button values. Gap is the vertical space between stacked buttons; Value is
// required but never drawn.
type buttonLabel struct {
	Value    string     `json:"value"`
	Width    int        `json:"width"`
	Gap      int        `json:"gap,omitempty"`
	Position string     `json:"pos"`
	Font     *fontModel `json:"font,omitempty"`
}

type radioButtons struct {
	Values []string     `json:"values"`
	Label  *buttonLabel `json:"label"`
	// Gap is the horizontal space between a button and its caption.
	Gap int `json:"gap,omitempty"`
}

type radioGroup struct {
	ID          string       `json:"id"`
	Value       string       `json:"value,omitempty"`
	Default     string       `json:"default,omitempty"`
	Pos         [2]float64   `json:"pos"`
	Width       float64      `json:"width"`
	Orientation string       `json:"orientation"`
	Buttons     radioButtons `json:"buttons"`
	Font        *fontModel   `json:"font,omitempty"`
	Locked      bool         `json:"locked,omitempty"`
}

type comboBox struct {
	ID         string       `json:"id"`
	Value      string       `json:"value,omitempty"`
	Default    string       `json:"default,omitempty"`
	Options    []string     `json:"options"`
	Pos        [2]float64   `json:"pos"`
	Width      float64      `json:"width"`
	Font       *fontModel   `json:"font,omitempty"`
	Border     *borderModel `json:"border,omitempty"`
	Background string       `json:"bgCol,omitempty"`
	Align      string       `json:"align,omitempty"`
	Edit       bool         `json:"edit,omitempty"`
	Locked     bool         `json:"locked,omitempty"`
}

func hex(c style.RGB) string { return c.Hex() }

func hexPtr(c *style.RGB) string {
	if c == nil {
		return ""
	}
	return c.Hex()
}

func font(name string, size float64, col style.RGB) *fontModel {
	if size <= 0 {
		size = 12
	}
	return &fontModel{Name: name, Size: int(math.Round(size)), Color: hex(col)}
}

func border(width float64, col style.RGB) *borderModel {
	if width <= 0 {
		return nil
	}
	w := int(math.Round(width))
	if w == 0 {
		w = 1
	}
	return &borderModel{Width: w, Color: hex(col)}
}

var paperNames = []struct {
	name string
	w, h float64
}{
	{"A3", 842, 1191},
	{"A4", 595, 842},
	{"A5", 420, 595},
	{"Letter", 612, 792},
	{"Legal", 612, 1008},
	{"Tabloid", 792, 1224},
}

// paperName maps page dimensions onto a pdfcpu paper name such as "A4P".
func paperName(w, h float64) (string, bool) {
	near := func(a, b float64) bool { return math.Abs(a-b) < 1.5 }
	for _, p := range paperNames {
		if near(w, p.w) && near(h, p.h) {
			return p.name + "P", true
		}
		if near(w, p.h) && near(h, p.w) {
			return p.name + "L", true
		}
	}
	return "", false
}

func pageKey(index int) string { return fmt.Sprintf("%d", index+1) }
