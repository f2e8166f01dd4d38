// File: internal/flow/label.go
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Page label templates are literal text with placeholders:
//
//	Page {page} of {total}
//	{page|roman}
var labelLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Open", Pattern: `\{`, Action: lexer.Push("Placeholder")},
		{Name: "Text", Pattern: `[^{]+`},
	},
	"Placeholder": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "Close", Pattern: `\}`, Action: lexer.Pop()},
	},
})

// Label is a parsed page label template.
type Label struct {
	Parts []*LabelPart `parser:"@@*"`
}

type LabelPart struct {
	Text        string       `parser:"  @Text"`
	Placeholder *Placeholder `parser:"| Open @@ Close"`
}

type Placeholder struct {
	Name   string `parser:"@Ident"`
	Filter string `parser:"( Pipe @Ident )?"`
}

var labelParser = participle.MustBuild[Label](
	participle.Lexer(labelLexer),
	participle.Elide("Whitespace"),
)

// ParseLabel parses a template. The empty template yields an empty Label.
func ParseLabel(template string) (*Label, error) {
	if template == "" {
		return &Label{}, nil
	}
	l, err := labelParser.ParseString("", template)
	if err != nil {
		return nil, fmt.Errorf("invalid page label %q: %w", template, err)
	}
	return l, nil
}

// Empty reports whether the label renders nothing.
func (l *Label) Empty() bool { return l == nil || len(l.Parts) == 0 }

// UsesTotal reports whether rendering needs the final page count.
func (l *Label) UsesTotal() bool {
	if l == nil {
		return false
	}
	for _, p := range l.Parts {
		if p.Placeholder != nil && p.Placeholder.Name == "total" {
			return true
		}
	}
	return false
}

// Render expands the template for a 1-based page number. Unknown placeholders
// are written back verbatim.
func (l *Label) Render(page, total int) string {
	if l == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range l.Parts {
		if p.Placeholder == nil {
			sb.WriteString(p.Text)
			continue
		}
		ph := p.Placeholder
		var n int
		switch ph.Name {
		case "page":
			n = page
		case "total":
			n = total
		default:
			sb.WriteString("{" + ph.Name)
			if ph.Filter != "" {
				sb.WriteString("|" + ph.Filter)
			}
			sb.WriteString("}")
			continue
		}
		sb.WriteString(formatNumber(n, ph.Filter))
	}
	return sb.String()
}

func formatNumber(n int, filter string) string {
	switch filter {
	case "roman":
		return roman(n)
	case "alpha":
		return alpha(n)
	default:
		return strconv.Itoa(n)
	}
}

var romanTable = []struct {
	v int
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.v {
			sb.WriteString(r.s)
			n -= r.v
		}
	}
	return sb.String()
}

// alpha numbers pages A..Z, AA..AZ, and so on.
func alpha(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
