// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// -- Rendering Mocks --

var _ browser.SessionContext = (*MockSession)(nil)

// MockEngine mocks the generator's rendering engine.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) NewSession(ctx context.Context) (browser.SessionContext, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(browser.SessionContext)
	return s, args.Error(1)
}

// MockSession mocks browser.SessionContext. QueryRect may be called from
// several goroutines at once; mock.Mock is safe for that.
type MockSession struct {
	mock.Mock

	mu       sync.Mutex
	Rendered []browser.RenderOptions
}

func (m *MockSession) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) Render(ctx context.Context, opts browser.RenderOptions) error {
	m.mu.Lock()
	m.Rendered = append(m.Rendered, opts)
	m.mu.Unlock()
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockSession) QueryRect(ctx context.Context, selector string) (*geometry.RawRect, error) {
	args := m.Called(ctx, selector)
	r, _ := args.Get(0).(*geometry.RawRect)
	return r, args.Error(1)
}

func (m *MockSession) PrintPDF(ctx context.Context, opts browser.PrintOptions) ([]byte, error) {
	args := m.Called(ctx, opts)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockSession) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// LastRender returns the most recent render request.
func (m *MockSession) LastRender() (browser.RenderOptions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Rendered) == 0 {
		return browser.RenderOptions{}, false
	}
	return m.Rendered[len(m.Rendered)-1], true
}
