// File: internal/browser/integration_test.go
package browser_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/config"
)

// testFixture holds the environment for browser integration tests.
type testFixture struct {
	Manager *browser.Manager
	Logger  *zap.Logger
	Config  config.BrowserConfig
	// MgrCtx bounds the allocator lifetime.
	MgrCtx context.Context
}

// chromePath finds a browser binary or skips the test.
func chromePath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser integration tests are skipped in short mode")
	}
	if p := os.Getenv("FORMFORGE_CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome or Chromium binary found")
	return ""
}

func setupBrowserManager(t *testing.T) *testFixture {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))
	cfg := config.BrowserConfig{
		Headless:         true,
		ExecPath:         chromePath(t),
		LaunchTimeout:    30 * time.Second,
		RenderTimeout:    30 * time.Second,
		SettleWait:       100 * time.Millisecond,
		QueryConcurrency: 4,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	mgr, err := browser.NewManager(ctx, logger, cfg)
	if err != nil {
		cancel()
		t.Fatalf("Failed to start the browser manager: %v", err)
	}

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := mgr.Shutdown(shutdownCtx); err != nil {
			t.Logf("Error during browser manager shutdown: %v", err)
		}
		cancel()
	})

	return &testFixture{Manager: mgr, Logger: logger, Config: cfg, MgrCtx: ctx}
}

func (f *testFixture) initializeSession(t *testing.T) browser.SessionContext {
	t.Helper()
	initCtx, cancelInit := context.WithTimeout(f.MgrCtx, 30*time.Second)
	session, err := f.Manager.NewSession(initCtx)
	if err != nil {
		cancelInit()
		t.Fatalf("Failed to open session: %v", err)
	}
	t.Cleanup(func() {
		cancelInit()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := session.Close(closeCtx); err != nil {
			t.Logf("Error closing session %s: %v", session.ID(), err)
		}
	})
	return session
}

const positionedPage = `<!DOCTYPE html>
<html><head><style>
html, body { margin: 0; }
#slot { position: absolute; left: 48px; top: 1200px; width: 240px; height: 30px; }
</style></head>
<body><div style="height: 2000px"></div><div id="slot"></div></body></html>`

func TestSession_RenderLocatePrint(t *testing.T) {
	f := setupBrowserManager(t)
	session := f.initializeSession(t)
	ctx := f.MgrCtx

	require.NoError(t, session.Render(ctx, browser.RenderOptions{
		HTML:           positionedPage,
		ViewportWidth:  816,
		ViewportHeight: 1056,
	}))

	t.Run("finds an element below the first viewport", func(t *testing.T) {
		r, err := session.QueryRect(ctx, "#slot")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.InDelta(t, 48, r.Left, 0.5)
		assert.InDelta(t, 1200, r.Top, 0.5)
		assert.InDelta(t, 240, r.Width, 0.5)
		assert.InDelta(t, 30, r.Height, 0.5)
		assert.InDelta(t, 1056, r.ViewportHeight, 0.5)
	})

	t.Run("a missing element is not an error", func(t *testing.T) {
		r, err := session.QueryRect(ctx, "#nope")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("selectors with quotes are passed through intact", func(t *testing.T) {
		r, err := session.QueryRect(ctx, `div[id="slot"]`)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("prints a PDF", func(t *testing.T) {
		data, err := session.PrintPDF(ctx, browser.PrintOptions{
			PaperWidth:      8.5,
			PaperHeight:     11,
			PrintBackground: true,
		})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	f := setupBrowserManager(t)
	a := f.initializeSession(t)
	b := f.initializeSession(t)
	assert.NotEqual(t, a.ID(), b.ID())

	ctx := f.MgrCtx
	require.NoError(t, a.Render(ctx, browser.RenderOptions{HTML: positionedPage, ViewportWidth: 816, ViewportHeight: 1056}))
	require.NoError(t, b.Render(ctx, browser.RenderOptions{HTML: "<html><body></body></html>", ViewportWidth: 816, ViewportHeight: 1056}))

	r, err := b.QueryRect(ctx, "#slot")
	require.NoError(t, err)
	assert.Nil(t, r, "documents do not leak between sessions")
}
