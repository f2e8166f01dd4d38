// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

const (
	defaultRenderTimeout = 60 * time.Second
	closeTimeout         = 10 * time.Second
)

var _ SessionContext = (*Session)(nil)

// Session is one browser tab driven over CDP.
type Session struct {
	id       string
	cfg      config.BrowserConfig
	logger   *zap.Logger
	allocCtx context.Context

	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	viewportHeight int64
	isClosed       bool
	mu             sync.Mutex
}

func newSession(allocCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:       id,
		cfg:      cfg,
		logger:   logger.Named("session").With(zap.String("session_id", id[:8])),
		allocCtx: allocCtx,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.sessionCtx != nil {
		s.mu.Unlock()
		return fmt.Errorf("session already initialized")
	}
	sessionCtx, cancel := chromedp.NewContext(s.allocCtx)
	s.sessionCtx = sessionCtx
	s.sessionCancel = cancel
	s.mu.Unlock()

	// The first Run allocates the tab.
	runCtx, done := s.runContext(ctx)
	defer done()
	if err := chromedp.Run(runCtx); err != nil {
		s.Close(ctx)
		return err
	}
	s.logger.Debug("Rendering session opened.")
	return nil
}

// runContext derives a bounded context from the tab that is also cancelled
// when the caller's ctx is.
func (s *Session) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	runCtx, cancel := context.WithTimeout(s.sessionCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Render loads opts.HTML into the tab at the requested viewport and waits for
// the body plus the configured settle time.
func (s *Session) Render(ctx context.Context, opts RenderOptions) error {
	runCtx, done := s.runContext(ctx)
	defer done()

	tasks := chromedp.Tasks{
		emulation.SetDeviceMetricsOverride(opts.ViewportWidth, opts.ViewportHeight, 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, opts.HTML).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.cfg.SettleWait > 0 {
		tasks = append(tasks, chromedp.Sleep(s.cfg.SettleWait))
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	s.mu.Lock()
	s.viewportHeight = opts.ViewportHeight
	s.mu.Unlock()
	s.logger.Debug("Document rendered.", zap.Int("bytes", len(opts.HTML)), zap.Int64("viewport_width", opts.ViewportWidth))
	return nil
}

type rectResult struct {
	Found          bool    `json:"found"`
	Left           float64 `json:"left"`
	Top            float64 `json:"top"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	ViewportHeight float64 `json:"viewportHeight"`
}

func (r rectResult) raw() *geometry.RawRect {
	if !r.Found {
		return nil
	}
	return &geometry.RawRect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height, ViewportHeight: r.ViewportHeight}
}

// rectScript returns the document-relative bounding box of the first match.
func rectScript(selector string) (string, error) {
	sel, err := json.MarshalToString(selector)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) { return {found: false}; }
	const r = el.getBoundingClientRect();
	return {found: true, left: r.left + window.scrollX, top: r.top + window.scrollY,
		width: r.width, height: r.height, viewportHeight: window.innerHeight};
})()`, sel), nil
}

// QueryRect returns nil without error when nothing matches selector.
func (s *Session) QueryRect(ctx context.Context, selector string) (*geometry.RawRect, error) {
	script, err := rectScript(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selector %q: %w", selector, err)
	}
	runCtx, done := s.runContext(ctx)
	defer done()

	var res rectResult
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &res)); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	return res.raw(), nil
}

// PrintPDF exports the rendered document.
func (s *Session) PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	runCtx, done := s.runContext(ctx)
	defer done()

	var out []byte
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.MarginTop).
			WithMarginBottom(opts.MarginBottom).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPrintBackground(opts.PrintBackground).
			WithPreferCSSPageSize(true).
			Do(ctx)
		if err != nil {
			return err
		}
		out = data
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	s.logger.Debug("Document exported.", zap.Int("bytes", len(out)))
	return out, nil
}

// Close terminates the tab.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	cancel := s.sessionCancel
	sessionCtx := s.sessionCtx
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sessionCtx == nil {
		return nil
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, closeTimeout)
	defer cancelWait()
	select {
	case <-sessionCtx.Done():
		s.logger.Debug("Rendering session closed.")
	case <-waitCtx.Done():
		s.logger.Warn("Deadline exceeded waiting for rendering session to close.", zap.Error(waitCtx.Err()))
	}
	return nil
}
