// File: internal/browser/manager_test.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// hasOption inspects the printed form of each option; ExecAllocatorOption is an opaque func.
func hasOption(opts []chromedp.ExecAllocatorOption, substring string) bool {
	for _, opt := range opts {
		if strings.Contains(fmt.Sprintf("%#v", opt), substring) {
			return true
		}
	}
	return false
}

func TestAllocatorOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{Headless: true})
		assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions))
	})

	t.Run("CustomArgs", func(t *testing.T) {
		base := len(AllocatorOptions(config.BrowserConfig{}))
		opts := AllocatorOptions(config.BrowserConfig{Args: []string{"--lang=de-DE", "--mute-audio"}})
		assert.Len(t, opts, base+2)
	})

	t.Run("ExecPath", func(t *testing.T) {
		base := len(AllocatorOptions(config.BrowserConfig{}))
		opts := AllocatorOptions(config.BrowserConfig{ExecPath: "/usr/bin/chromium"})
		assert.Len(t, opts, base+1)
	})

	t.Run("DoesNotMutateDefaults", func(t *testing.T) {
		before := len(chromedp.DefaultExecAllocatorOptions)
		_ = AllocatorOptions(config.BrowserConfig{Args: []string{"--a", "--b"}})
		assert.Equal(t, before, len(chromedp.DefaultExecAllocatorOptions))
		assert.False(t, hasOption(chromedp.DefaultExecAllocatorOptions[:], "no-such-flag"))
	})
}

type fakeSession struct {
	mu     sync.Mutex
	closes int
	err    error
}

func (f *fakeSession) ID() string                                             { return "fake" }
func (f *fakeSession) Render(context.Context, RenderOptions) error            { return nil }
func (f *fakeSession) PrintPDF(context.Context, PrintOptions) ([]byte, error) { return nil, nil }
func (f *fakeSession) QueryRect(context.Context, string) (*geometry.RawRect, error) {
	return nil, nil
}
func (f *fakeSession) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return f.err
}

func TestSessionWrapper_ClosesOnce(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	inner := &fakeSession{err: errors.New("tab crashed")}
	sw := &sessionWrapper{SessionContext: inner, wg: &wg}

	err := sw.Close(context.Background())
	assert.EqualError(t, err, "tab crashed")
	assert.NoError(t, sw.Close(context.Background()), "second close is a no-op")
	assert.Equal(t, 1, inner.closes)

	// A second Done would panic on a negative counter.
	wg.Wait()
}

func TestManagerShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	allocCtx, cancel := context.WithCancel(context.Background())
	m := &Manager{logger: zap.NewNop(), allocatorCtx: allocCtx, allocatorCancel: cancel}

	m.wg.Add(1)
	sw := &sessionWrapper{SessionContext: &fakeSession{}, wg: &m.wg}
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = sw.Close(context.Background())
	}()

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, m.Shutdown(ctx))
	assert.ErrorIs(t, allocCtx.Err(), context.Canceled)
	assert.NoError(t, m.Shutdown(ctx), "shutdown is idempotent")
}

func TestManagerShutdown_DeadlineForcesTermination(t *testing.T) {
	allocCtx, cancel := context.WithCancel(context.Background())
	m := &Manager{logger: zap.NewNop(), allocatorCtx: allocCtx, allocatorCancel: cancel}
	m.wg.Add(1) // never released

	ctx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	require.NoError(t, m.Shutdown(ctx))
	assert.Error(t, allocCtx.Err())
}
