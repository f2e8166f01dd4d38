// File: internal/generator/blocks.go
package generator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/flow"
	"github.com/xkilldash9x/formforge/internal/style"
)

// BlockKind names a content block.
type BlockKind string

const (
	BlockHeading BlockKind = "heading"
	BlockText    BlockKind = "text"
	BlockField   BlockKind = "field"
	BlockTable   BlockKind = "table"
	BlockSpacer  BlockKind = "spacer"
)

// Block is one item of flowing content, laid out in order at the cursor.
type Block struct {
	Kind BlockKind `yaml:"kind"`

	// Text is the heading or paragraph text.
	Text string `yaml:"text,omitempty"`
	// Level is the heading level, 1 to 3.
	Level    int     `yaml:"level,omitempty"`
	FontSize float64 `yaml:"font_size,omitempty"`

	Field *fields.Spec `yaml:"field,omitempty"`
	Table *TableBlock  `yaml:"table,omitempty"`

	// Height is the spacer height in points.
	Height float64 `yaml:"height,omitempty"`
}

// TableBlock is a text grid split across pages as needed.
type TableBlock struct {
	Headers    []string   `yaml:"headers,omitempty"`
	Rows       [][]string `yaml:"rows"`
	CellHeight float64    `yaml:"cell_height,omitempty"`
	FontSize   float64    `yaml:"font_size,omitempty"`
}

var headingSizes = map[int]float64{1: 18, 2: 14, 3: 12}

const (
	defaultTextSize   = 11
	defaultCellHeight = 20
	lineSpacing       = 1.4
)

// flowContent lays out blocks in order, then any field that has neither a
// selector nor a position. Unpositioned fields only flow in paginated mode.
func (s *session) flowContent(accepted []*fields.Spec) error {
	var loose []*fields.Spec
	for _, spec := range accepted {
		if s.flowed[spec] || spec.HasPlacement() {
			continue
		}
		if !s.page.Paginated {
			s.skip(fields.Skipped{Name: spec.Name, Reason: fields.ReasonNoPlacement, Detail: "field has neither selector nor position"})
			continue
		}
		loose = append(loose, spec)
	}

	admitted := make(map[*fields.Spec]bool, len(accepted))
	for _, spec := range accepted {
		admitted[spec] = true
	}

	for i, b := range s.req.Blocks {
		if b.Kind == BlockField && (b.Field == nil || !admitted[b.Field]) {
			// Rejected during admission and already recorded.
			continue
		}
		if err := s.startFlow(); err != nil {
			return err
		}
		if err := s.layoutBlock(b); err != nil {
			return fmt.Errorf("block %d (%s): %w", i, b.Kind, err)
		}
	}
	for _, spec := range loose {
		if err := s.startFlow(); err != nil {
			return err
		}
		s.flowField(spec)
	}
	return nil
}

// startFlow opens a fresh page after rendered pages before the first flowed
// item in paginated mode.
func (s *session) startFlow() error {
	if s.flowStarted {
		return nil
	}
	s.flowStarted = true
	if s.page.Paginated && s.basePages > 0 {
		_, err := s.ctl.NewPage()
		return err
	}
	return nil
}

func (s *session) layoutBlock(b Block) error {
	spacing := s.g.cfg.Fields().BlockSpacing
	switch b.Kind {
	case BlockHeading:
		return s.heading(b, spacing)
	case BlockText:
		size := b.FontSize
		if size <= 0 {
			size = defaultTextSize
		}
		opts := document.TextOptions{FontName: s.g.cfg.Fields().FontName, FontSize: size, Color: style.Black}
		lines := wrapText(b.Text, s.page.ContentWidth(), opts.FontName, size)
		if len(lines) == 0 {
			return nil
		}
		if _, err := s.splitter.LayoutLines(lines, size*lineSpacing, opts); err != nil {
			return err
		}
		s.ctl.Advance(spacing)
	case BlockField:
		if b.Field.HasPlacement() {
			s.logger.Warn("Field block ignores selector and position.", zap.String("field", b.Field.Name))
		}
		s.flowField(b.Field)
	case BlockTable:
		if b.Table == nil {
			return fmt.Errorf("table block without table")
		}
		t := flow.Table{
			Headers:    b.Table.Headers,
			Rows:       b.Table.Rows,
			CellHeight: b.Table.CellHeight,
			FontSize:   b.Table.FontSize,
			Border:     style.ColorTable["gray-400"],
			HeaderFill: style.ColorTable["gray-100"],
		}
		if t.CellHeight <= 0 {
			t.CellHeight = defaultCellHeight
		}
		if _, err := s.splitter.LayoutTable(t); err != nil {
			return err
		}
		s.ctl.Advance(spacing)
	case BlockSpacer:
		if b.Height <= 0 {
			return nil
		}
		broke, err := s.ctl.HandleOverflow(b.Height)
		if err != nil {
			return err
		}
		if !broke {
			s.ctl.Advance(b.Height)
		}
	default:
		return fmt.Errorf("unknown block kind %q", b.Kind)
	}
	return nil
}

func (s *session) heading(b Block, spacing float64) error {
	size := b.FontSize
	if size <= 0 {
		size = headingSizes[b.Level]
	}
	if size <= 0 {
		size = headingSizes[1]
	}
	lineHeight := size * lineSpacing
	if _, err := s.ctl.HandleOverflow(lineHeight); err != nil {
		return err
	}
	y := s.ctl.State().CursorY - size
	if err := s.doc.DrawText(s.ctl.Page(), b.Text, s.page.Margins.Left, y, document.TextOptions{
		FontName: s.g.cfg.Fields().FontName,
		FontSize: size,
		Color:    style.Black,
		Bold:     true,
	}); err != nil {
		return err
	}
	s.ctl.Advance(lineHeight + spacing/2)
	return nil
}

// flowField places spec at the cursor. Any failure skips the field.
func (s *session) flowField(spec *fields.Spec) {
	f, err := s.composer.Flow(s.ctl, spec)
	if err != nil {
		s.skip(fields.Skipped{Name: spec.Name, Reason: fields.ReasonBackendRejected, Detail: err.Error()})
		return
	}
	s.bind(spec, f)
}

// wrapText breaks text into lines no wider than width when set in fontName at
// fontSize. Explicit newlines start a new line; a single word wider than width
// gets a line of its own.
func wrapText(text string, width float64, fontName string, fontSize float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			if len(out) > 0 {
				out = append(out, "")
			}
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if document.TextWidth(candidate, fontName, fontSize) > width {
				out = append(out, line)
				line = w
				continue
			}
			line = candidate
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
