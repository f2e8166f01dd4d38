// File: internal/flow/splitter.go
package flow

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Fragment is one page's share of a split table or section: data rows
// [Start, End). NewPage asks for a page break before the fragment is drawn.
type Fragment struct {
	Start        int
	End          int
	RepeatHeader bool
	NewPage      bool
}

// Len is the number of data rows in the fragment.
func (f Fragment) Len() int { return f.End - f.Start }

// Plan splits rows of equal height across pages. firstCapacity is the space
// left on the current page and fullCapacity the content height of a fresh page.
// A header, when present, takes the first row slot of every fragment.
// Forced is set when a fresh page cannot hold even one data row; such
// fragments hold exactly one row so the plan always terminates.
func Plan(rows int, header bool, cellHeight, firstCapacity, fullCapacity float64) (frags []Fragment, forced bool) {
	headerRows := 0
	if header {
		headerRows = 1
	}
	total := float64(rows+headerRows) * cellHeight
	if rows == 0 || cellHeight <= 0 || total <= firstCapacity {
		return []Fragment{{Start: 0, End: rows, RepeatHeader: header}}, false
	}

	remaining := firstCapacity
	fresh := firstCapacity >= fullCapacity
	breakNext := false
	for start := 0; start < rows; {
		perPage := int(math.Floor(remaining/cellHeight)) - headerRows
		if perPage <= 0 {
			if !fresh {
				remaining, fresh, breakNext = fullCapacity, true, true
				continue
			}
			perPage, forced = 1, true
		}
		end := start + perPage
		if end > rows {
			end = rows
		}
		frags = append(frags, Fragment{Start: start, End: end, RepeatHeader: header, NewPage: breakNext})
		start = end
		remaining, fresh, breakNext = fullCapacity, true, true
	}
	return frags, forced
}

// Table is a grid of text cells drawn row by row.
type Table struct {
	Headers    []string
	Rows       [][]string
	Columns    int
	CellWidth  float64
	CellHeight float64
	FontSize   float64
	Padding    float64
	Border     style.RGB
	HeaderFill style.RGB
}

func (t Table) columns() int {
	n := t.Columns
	if len(t.Headers) > n {
		n = len(t.Headers)
	}
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Splitter draws tables and line sections through the controller, breaking
// pages between fragments.
type Splitter struct {
	ctl *Controller
}

func NewSplitter(ctl *Controller) *Splitter { return &Splitter{ctl: ctl} }

// LayoutTable plans and draws t starting at the cursor. It returns the plan it drew.
func (s *Splitter) LayoutTable(t Table) ([]Fragment, error) {
	if t.CellHeight <= 0 {
		return nil, fmt.Errorf("table cell height must be positive")
	}
	if t.FontSize <= 0 {
		t.FontSize = 10
	}
	if t.Padding <= 0 {
		t.Padding = 4
	}
	cols := t.columns()
	if cols == 0 {
		return nil, nil
	}
	cfg := s.ctl.Config()
	if t.CellWidth <= 0 {
		t.CellWidth = cfg.ContentWidth() / float64(cols)
	}
	header := len(t.Headers) > 0

	frags, err := s.plan(len(t.Rows), header, t.CellHeight)
	if err != nil {
		return nil, err
	}

	for _, f := range frags {
		if f.NewPage {
			if _, err := s.ctl.NewPage(); err != nil {
				return nil, err
			}
		}
		if f.RepeatHeader {
			if err := s.drawRow(t, t.Headers, cols, true); err != nil {
				return nil, err
			}
		}
		for _, row := range t.Rows[f.Start:f.End] {
			if err := s.drawRow(t, row, cols, false); err != nil {
				return nil, err
			}
		}
	}
	s.ctl.logger.Debug("Table laid out.", zap.Int("rows", len(t.Rows)), zap.Int("fragments", len(frags)))
	return frags, nil
}

// LayoutLines splits a section of text lines like a table without header.
func (s *Splitter) LayoutLines(lines []string, lineHeight float64, opts document.TextOptions) ([]Fragment, error) {
	if lineHeight <= 0 {
		return nil, fmt.Errorf("line height must be positive")
	}
	frags, err := s.plan(len(lines), false, lineHeight)
	if err != nil {
		return nil, err
	}
	x := s.ctl.Config().Margins.Left
	for _, f := range frags {
		if f.NewPage {
			if _, err := s.ctl.NewPage(); err != nil {
				return nil, err
			}
		}
		for _, line := range lines[f.Start:f.End] {
			y := s.ctl.State().CursorY - lineHeight/2 - opts.FontSize*0.35
			if err := s.ctl.Document().DrawText(s.ctl.Page(), line, x, y, opts); err != nil {
				return nil, err
			}
			s.ctl.Advance(lineHeight)
		}
	}
	return frags, nil
}

// plan makes sure a page is active, then computes fragments for the current
// position. Without auto page break everything goes on the current page.
func (s *Splitter) plan(rows int, header bool, cellHeight float64) ([]Fragment, error) {
	if s.ctl.Phase() == PhaseIdle {
		if _, err := s.ctl.NewPage(); err != nil {
			return nil, err
		}
	}
	cfg := s.ctl.Config()
	headerRows := 0
	if header {
		headerRows = 1
	}
	if !cfg.AutoPageBreak {
		if _, err := s.ctl.HandleOverflow(float64(rows+headerRows) * cellHeight); err != nil {
			return nil, err
		}
		return []Fragment{{Start: 0, End: rows, RepeatHeader: header}}, nil
	}
	frags, forced := Plan(rows, header, cellHeight, s.ctl.State().RemainingHeight, cfg.ContentHeight())
	if forced {
		s.ctl.markOverflow(float64(1+headerRows) * cellHeight)
	}
	return frags, nil
}

func (s *Splitter) drawRow(t Table, cells []string, cols int, header bool) error {
	cfg := s.ctl.Config()
	doc := s.ctl.Document()
	page := s.ctl.Page()
	top := s.ctl.State().CursorY

	for i := 0; i < cols; i++ {
		rect := geometry.Rect{
			X:      cfg.Margins.Left + float64(i)*t.CellWidth,
			Y:      top - t.CellHeight,
			Width:  t.CellWidth,
			Height: t.CellHeight,
		}
		border := t.Border
		opts := document.RectOptions{Stroke: &border, LineWidth: 0.5}
		if header {
			fill := t.HeaderFill
			opts.Fill = &fill
		}
		if err := doc.DrawRect(page, rect, opts); err != nil {
			return err
		}
		if i >= len(cells) || cells[i] == "" {
			continue
		}
		if err := doc.DrawText(page, cells[i], rect.X+t.Padding, top-t.CellHeight/2-t.FontSize*0.35, document.TextOptions{
			FontSize: t.FontSize,
			Color:    style.Black,
			Bold:     header,
		}); err != nil {
			return err
		}
	}
	s.ctl.Advance(t.CellHeight)
	return nil
}
