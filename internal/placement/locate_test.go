package placement

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

type fakeQuerier struct {
	rects    map[string]*geometry.RawRect
	fail     string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	calls    []string
}

func (f *fakeQuerier) QueryRect(ctx context.Context, selector string) (*geometry.RawRect, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxSeen.Load()
		if n <= cur || f.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, selector)
	f.mu.Unlock()

	select {
	case <-time.After(5 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if selector == f.fail {
		return nil, errors.New("target closed")
	}
	return f.rects[selector], nil
}

func TestLocate(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &fakeQuerier{rects: map[string]*geometry.RawRect{
		"#a": {Top: 1},
		"#b": {Top: 2},
		"#c": {Top: 3},
	}}
	selectors := []string{"#a", "#b", "#c", "#missing"}

	got, err := Locate(context.Background(), q, selectors, 2, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Nil(t, got["#missing"])
	assert.Equal(t, 2.0, got["#b"].Top)
	assert.LessOrEqual(t, q.maxSeen.Load(), int32(2))
	assert.Len(t, q.calls, 4)
}

func TestLocate_ErrorFailsTheCall(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &fakeQuerier{fail: "#b"}
	_, err := Locate(context.Background(), q, []string{"#a", "#b", "#c"}, 3, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `query "#b"`)
}

func TestLocate_Empty(t *testing.T) {
	got, err := Locate(context.Background(), &fakeQuerier{}, nil, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectors(t *testing.T) {
	specs := []*fields.Spec{
		{Name: "a", Selector: "#x"},
		{Name: "b", Selector: "#y"},
		{Name: "c", Selector: "#x"},
		{Name: "d", Position: &geometry.Rect{}},
		{Name: "e"},
	}
	assert.Equal(t, []string{"#x", "#y"}, Selectors(specs))
}
