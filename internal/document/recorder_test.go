package document

import (
	"context"
	"errors"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(1, 612, 792)
	require.Equal(t, 1, r.PageCount())

	p, err := r.AddPage(612, 792)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index)

	f, err := r.CreateField(fields.KindText, "email")
	require.NoError(t, err)
	require.NoError(t, r.PlaceField(f, p, Widget{Rect: geometry.Rect{X: 10, Y: 20, Width: 100, Height: 20}}))
	require.NoError(t, r.DrawText(p, "hello", 1, 2, TextOptions{FontSize: 12}))

	err = r.DrawRect(Page{Index: 5}, geometry.Rect{}, RectOptions{})
	assert.True(t, errors.Is(err, ErrNoPage))

	assert.Len(t, r.OpsOf("field"), 1)
	assert.Equal(t, []string{"hello"}, r.Texts(1))

	out, err := r.Serialize(context.Background())
	require.NoError(t, err)
	var decoded struct {
		Pages []Page `json:"pages"`
		Ops   []Op   `json:"ops"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded.Pages, 2)
	assert.Len(t, decoded.Ops, 3)
}

func TestRecorder_SerializeHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRecorder(0, 0, 0).Serialize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextWidth(t *testing.T) {
	assert.InDelta(t, 32.688, TextWidth("abcde", "Helvetica", 12), 1e-9)
	assert.InDelta(t, 32.688, TextWidth("abcde", "", 12), 1e-9, "empty name is the default font")
	assert.InDelta(t, 36.0, TextWidth("abcde", "Courier", 12), 1e-9)
	assert.Equal(t, 30.0, TextWidth("abcde", "NotAFont", 12))
	assert.Equal(t, 6.0, TextWidth("é", "Helvetica", 12), "non-ASCII text falls back to the estimate")
}
