// File: internal/flow/controller.go
package flow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Phase is the controller lifecycle stage.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOnPage
	PhaseFinalizing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOnPage:
		return "on-page"
	case PhaseFinalizing:
		return "finalizing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the content-flow state of one session.
type State struct {
	CursorY            float64
	RemainingHeight    float64
	PageNumber         int
	TotalPagesEstimate int
	Overflowed         bool
}

type band int

const (
	bandHeader band = iota
	bandFooter
)

// stamp is a header, footer or page-number template bound to its position.
type stamp struct {
	label *Label
	band  band
	align style.Align
}

// Controller owns the content-flow state and is the only thing that mutates it.
// It is not safe for concurrent use.
type Controller struct {
	cfg    config.PageConfig
	doc    document.Builder
	logger *zap.Logger

	state State
	phase Phase
	page  document.Page

	stamps   []stamp
	fontSize float64
	warnings []string
}

// NewController parses the band templates of cfg. No page exists until
// NewPage or Adopt is called.
func NewController(doc document.Builder, cfg config.PageConfig, logger *zap.Logger) (*Controller, error) {
	c := &Controller{
		cfg:      cfg,
		doc:      doc,
		logger:   logger.Named("flow"),
		fontSize: cfg.BandFontSize,
	}
	if c.fontSize <= 0 {
		c.fontSize = 9
	}

	templates := []struct {
		text  string
		band  band
		align style.Align
	}{
		{cfg.HeaderText, bandHeader, style.AlignLeft},
		{cfg.FooterText, bandFooter, style.AlignLeft},
		{cfg.PageNumberFormat, bandFooter, alignOf(cfg.PageNumberAlign)},
	}
	for _, t := range templates {
		l, err := ParseLabel(t.text)
		if err != nil {
			return nil, err
		}
		if !l.Empty() {
			c.stamps = append(c.stamps, stamp{label: l, band: t.band, align: t.align})
		}
	}
	c.warnings = append(c.warnings, cfg.Warnings()...)
	return c, nil
}

func alignOf(s string) style.Align {
	switch s {
	case "left":
		return style.AlignLeft
	case "right":
		return style.AlignRight
	default:
		return style.AlignCenter
	}
}

func (c *Controller) State() State               { return c.state }
func (c *Controller) Phase() Phase               { return c.phase }
func (c *Controller) Page() document.Page        { return c.page }
func (c *Controller) Config() config.PageConfig  { return c.cfg }
func (c *Controller) Document() document.Builder { return c.doc }
func (c *Controller) Warnings() []string         { return append([]string(nil), c.warnings...) }

func (c *Controller) warn(format string, a ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

// AtTop reports whether nothing has been placed on the active page yet.
func (c *Controller) AtTop() bool {
	return c.phase == PhaseOnPage && c.state.CursorY >= c.cfg.ContentTop()
}

// NewPage appends a page, resets the cursor below the header band and draws
// every band template that does not depend on the page total.
func (c *Controller) NewPage() (document.Page, error) {
	if c.phase == PhaseFinalizing {
		return document.Page{}, fmt.Errorf("cannot add pages while finalizing")
	}
	p, err := c.doc.AddPage(c.cfg.Width, c.cfg.Height)
	if err != nil {
		return document.Page{}, fmt.Errorf("failed to add page: %w", err)
	}
	c.activate(p)
	c.state.PageNumber = p.Index + 1
	c.state.TotalPagesEstimate = c.doc.PageCount()
	if err := c.stampEager(p); err != nil {
		return document.Page{}, err
	}
	c.logger.Debug("New page.", zap.Int("page", c.state.PageNumber))
	return p, nil
}

// Adopt registers the first n pages already in the document and activates the
// first one. This is the fixed layout: pages come from the renderer.
func (c *Controller) Adopt(n int) error {
	if c.phase != PhaseIdle {
		return fmt.Errorf("adopt called in phase %s", c.phase)
	}
	if n > c.doc.PageCount() {
		return fmt.Errorf("cannot adopt %d pages, document has %d", n, c.doc.PageCount())
	}
	for i := 0; i < n; i++ {
		p, _ := c.doc.Page(i)
		if i == 0 {
			c.activate(p)
			c.state.PageNumber = 1
		}
		if err := c.stampEager(p); err != nil {
			return err
		}
	}
	c.state.TotalPagesEstimate = c.doc.PageCount()
	return nil
}

func (c *Controller) activate(p document.Page) {
	c.page = p
	c.phase = PhaseOnPage
	c.state.CursorY = c.cfg.ContentTop()
	c.state.RemainingHeight = c.cfg.ContentHeight()
}

// WillOverflow checks h against the current cursor.
func (c *Controller) WillOverflow(h float64) bool {
	return c.WillOverflowAt(h, c.state.CursorY)
}

// WillOverflowAt reports whether an element of height h whose top is at y
// would cross into the footer band or bottom margin.
func (c *Controller) WillOverflowAt(h, y float64) bool {
	return y-h < c.cfg.ContentBottom()
}

// HandleOverflow starts a new page when h does not fit and auto page break is
// on. It reports whether a break happened. An element taller than a whole page
// is left on a fresh page and marks the state as overflowed.
func (c *Controller) HandleOverflow(h float64) (bool, error) {
	if c.phase == PhaseIdle {
		if _, err := c.NewPage(); err != nil {
			return false, err
		}
		if c.WillOverflow(h) {
			c.markOverflow(h)
		}
		return true, nil
	}
	if !c.WillOverflow(h) {
		return false, nil
	}
	if !c.cfg.AutoPageBreak || c.AtTop() {
		c.markOverflow(h)
		return false, nil
	}
	if _, err := c.NewPage(); err != nil {
		return false, err
	}
	if c.WillOverflow(h) {
		c.markOverflow(h)
	}
	return true, nil
}

func (c *Controller) markOverflow(h float64) {
	c.state.Overflowed = true
	c.warn("content of height %.1f overflows page %d", h, c.state.PageNumber)
}

// Advance moves the cursor down by dy. Call it once per placed block, in order.
func (c *Controller) Advance(dy float64) {
	c.state.CursorY -= dy
	c.state.RemainingHeight -= dy
}

// Finalize enters the finalizing phase and stamps every template that needs
// the page total onto every page.
func (c *Controller) Finalize() error {
	c.phase = PhaseFinalizing
	total := c.doc.PageCount()
	c.state.TotalPagesEstimate = total
	for i := 0; i < total; i++ {
		p, _ := c.doc.Page(i)
		for _, s := range c.stamps {
			if !s.label.UsesTotal() {
				continue
			}
			if err := c.drawStamp(p, s, i+1, total); err != nil {
				return err
			}
		}
	}
	c.logger.Debug("Flow finalized.", zap.Int("pages", total))
	return nil
}

func (c *Controller) stampEager(p document.Page) error {
	for _, s := range c.stamps {
		if s.label.UsesTotal() {
			continue
		}
		if err := c.drawStamp(p, s, p.Index+1, 0); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) drawStamp(p document.Page, s stamp, page, total int) error {
	text := s.label.Render(page, total)
	if text == "" {
		return nil
	}
	w := document.TextWidth(text, document.DefaultFontName, c.fontSize)
	var x float64
	switch s.align {
	case style.AlignCenter:
		x = c.cfg.Margins.Left + (c.cfg.ContentWidth()-w)/2
	case style.AlignRight:
		x = c.cfg.Width - c.cfg.Margins.Right - w
	default:
		x = c.cfg.Margins.Left
	}
	if err := c.doc.DrawText(p, text, x, c.bandBaseline(s.band), document.TextOptions{
		FontName: document.DefaultFontName,
		FontSize: c.fontSize,
		Color:    style.Black,
	}); err != nil {
		return fmt.Errorf("failed to stamp page %d: %w", page, err)
	}
	return nil
}

// bandBaseline centers text vertically in its band. A band of zero height
// falls back to the middle of the adjoining margin.
func (c *Controller) bandBaseline(b band) float64 {
	var center float64
	switch b {
	case bandHeader:
		if c.cfg.HeaderHeight > 0 {
			center = c.cfg.ContentTop() + c.cfg.HeaderHeight/2
		} else {
			center = c.cfg.Height - c.cfg.Margins.Top/2
		}
	default:
		if c.cfg.FooterHeight > 0 {
			center = c.cfg.Margins.Bottom + c.cfg.FooterHeight/2
		} else {
			center = c.cfg.Margins.Bottom / 2
		}
	}
	return center - c.fontSize*0.35
}
