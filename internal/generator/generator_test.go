package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/mocks"
	"github.com/xkilldash9x/formforge/internal/style"
)

const fakePDF = "%PDF-1.7 fake"

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.QueryConcurrency = 4
	return cfg
}

// recorderFactory returns a factory seeding pages base pages and a pointer
// that receives the recorder once the generator opens it.
func recorderFactory(pages int) (document.Factory, **document.Recorder) {
	var rec *document.Recorder
	return func(base []byte) (document.Builder, error) {
		rec = document.NewRecorder(pages, 612, 792)
		rec.Base = base
		return rec, nil
	}, &rec
}

func newRenderingMocks() (*mocks.MockEngine, *mocks.MockSession) {
	engine := &mocks.MockEngine{}
	sess := &mocks.MockSession{}
	engine.On("NewSession", mock.Anything).Return(sess, nil)
	sess.On("Render", mock.Anything, mock.Anything).Return(nil)
	sess.On("PrintPDF", mock.Anything, mock.Anything).Return([]byte(fakePDF), nil)
	sess.On("Close", mock.Anything).Return(nil)
	return engine, sess
}

func textField(name, selector string) *fields.Spec {
	return &fields.Spec{Name: name, Kind: fields.KindText, Selector: selector}
}

func reasons(skipped []fields.Skipped) map[string]fields.Reason {
	out := make(map[string]fields.Reason, len(skipped))
	for _, s := range skipped {
		out[s.Name] = s.Reason
	}
	return out
}

func TestGenerate_FieldCountInvariant(t *testing.T) {
	engine, sess := newRenderingMocks()
	sess.On("QueryRect", mock.Anything, "#name").Return(&geometry.RawRect{Left: 48, Top: 100, Width: 200, Height: 24}, nil)
	sess.On("QueryRect", mock.Anything, "#email").Return(&geometry.RawRect{Left: 48, Top: 1000, Width: 200, Height: 24}, nil)
	sess.On("QueryRect", mock.Anything, "#missing").Return(nil, nil)

	factory, rec := recorderFactory(2)
	g := New(testConfig(), engine, factory, zap.NewNop())

	five := 5
	req := Request{
		Markup: `<div id="name"></div><div id="email"></div>`,
		Fields: []*fields.Spec{
			textField("name", "#name"),
			textField("email", "#email"),
			textField("ghost", "#missing"),
			{Name: "name", Kind: fields.KindText, Position: &geometry.Rect{X: 10, Y: 10, Width: 50, Height: 10}},
			{Name: "far", Kind: fields.KindText, Position: &geometry.Rect{X: 10, Y: 10, Width: 50, Height: 10}, Page: &five},
			{Name: "empty-radio", Kind: fields.KindRadio, Radio: &fields.RadioOptions{}},
		},
	}

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, res.FieldCount)
	assert.Len(t, res.Skipped, 4)
	assert.Equal(t, len(req.Fields), res.FieldCount+len(res.Skipped))
	assert.Equal(t, map[string]fields.Reason{
		"ghost":       fields.ReasonSelectorNotFound,
		"name":        fields.ReasonDuplicateName,
		"far":         fields.ReasonInvalidPage,
		"empty-radio": fields.ReasonInvalidSpec,
	}, reasons(res.Skipped))
	assert.Equal(t, 2, res.PageCount)
	assert.NotEmpty(t, res.Bytes)
	assert.NotEmpty(t, res.ID)

	r := *rec
	require.NotNil(t, r)
	assert.Equal(t, fakePDF, string(r.Base))
	placed := map[string]int{}
	for _, op := range r.OpsOf("field") {
		placed[op.Field] = op.Page
	}
	assert.Equal(t, map[string]int{"name": 0, "email": 1}, placed, "the element at 1000px starts on the second page")

	assert.Contains(t, r.Texts(0), "Page 1 of 2")
	assert.Contains(t, r.Texts(1), "Page 2 of 2")

	opts, ok := sess.LastRender()
	require.True(t, ok)
	assert.Equal(t, int64(816), opts.ViewportWidth)
	assert.Equal(t, int64(1056), opts.ViewportHeight)
	assert.Contains(t, opts.HTML, "@page")

	engine.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestGenerate_SelectorGeometryIsLocalizedToPage(t *testing.T) {
	engine, sess := newRenderingMocks()
	// Content height is 700pt (933.33px); the top inset is 36pt (48px).
	sess.On("QueryRect", mock.Anything, "#sig").Return(&geometry.RawRect{Left: 48, Top: 1033.3333333333333, Width: 200, Height: 80}, nil)

	factory, rec := recorderFactory(2)
	g := New(testConfig(), engine, factory, zap.NewNop())

	res, err := g.Generate(context.Background(), Request{
		Markup: "<div id=sig></div>",
		Fields: []*fields.Spec{{Name: "sig", Kind: fields.KindSignature, Selector: "#sig"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.FieldCount)

	ops := (*rec).OpsOf("field")
	require.Len(t, ops, 1)
	assert.Equal(t, 1, ops[0].Page)
	// Local top is 100px + 48px inset = 148px, so the top edge sits at 792-111 = 681pt.
	assert.InDelta(t, 681.0, ops[0].Rect.Y+ops[0].Rect.Height, 1e-6)
	assert.InDelta(t, 60.0, ops[0].Rect.Height, 1e-6)
	assert.InDelta(t, 36.0, ops[0].Rect.X, 1e-6)
}

func TestGenerate_PaginatedFlow(t *testing.T) {
	cfg := testConfig()
	cfg.PageCfg.Paginated = true
	factory, rec := recorderFactory(0)
	g := New(cfg, nil, factory, zap.NewNop())

	rows := make([][]string, 60)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("item %d", i), "1"}
	}
	zero := 0
	req := Request{
		Blocks: []Block{
			{Kind: BlockHeading, Text: "Order form", Level: 1},
			{Kind: BlockText, Text: "Please list every item you wish to order. Quantities are per unit."},
			{Kind: BlockTable, Table: &TableBlock{Headers: []string{"Item", "Qty"}, Rows: rows}},
			{Kind: BlockSpacer, Height: 12},
			{Kind: BlockField, Field: &fields.Spec{Name: "notes", Kind: fields.KindText, Label: "Notes"}},
		},
		Fields: []*fields.Spec{
			{Name: "agree", Kind: fields.KindCheckbox, Label: "I agree"},
			{Name: "stamp", Kind: fields.KindText, Position: &geometry.Rect{X: 400, Y: 700, Width: 100, Height: 20}, Page: &zero},
		},
	}

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, res.FieldCount)
	assert.Empty(t, res.Skipped)
	assert.Greater(t, res.PageCount, 1, "sixty rows do not fit on one page")

	r := *rec
	for i := 0; i < res.PageCount; i++ {
		assert.Contains(t, r.Texts(i), fmt.Sprintf("Page %d of %d", i+1, res.PageCount))
	}
	assert.Contains(t, r.Texts(0), "Order form")

	headers := 0
	for _, op := range r.OpsOf("text") {
		if op.Text == "Item" {
			headers++
		}
	}
	assert.Equal(t, res.PageCount, headers, "the header repeats on every table fragment")

	var order []string
	for _, op := range r.OpsOf("field") {
		order = append(order, op.Field)
	}
	assert.Equal(t, []string{"notes", "agree", "stamp"}, order, "block fields, then loose fields, then positioned fields")
}

func TestGenerate_FixedModeWithoutMarkup(t *testing.T) {
	factory, rec := recorderFactory(0)
	g := New(testConfig(), nil, factory, zap.NewNop())

	res, err := g.Generate(context.Background(), Request{
		Fields: []*fields.Spec{
			{Name: "loose", Kind: fields.KindText},
			{Name: "pinned", Kind: fields.KindText, Position: &geometry.Rect{X: 72, Y: 600, Width: 100, Height: 20}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.PageCount, "fixed layout pre-creates a single page")
	assert.Equal(t, 1, res.FieldCount)
	assert.Equal(t, map[string]fields.Reason{"loose": fields.ReasonNoPlacement}, reasons(res.Skipped))
	assert.Contains(t, res.Warnings, "skipped field loose: no-placement (field has neither selector nor position)")
	assert.Len(t, (*rec).Pages, 1)
}

func TestGenerate_PageOverride(t *testing.T) {
	factory, rec := recorderFactory(0)
	g := New(testConfig(), nil, factory, zap.NewNop())

	page := testConfig().PageCfg
	page.Size = "A4"
	page.Landscape = true
	res, err := g.Generate(context.Background(), Request{Page: &page})
	require.NoError(t, err)
	require.Equal(t, 1, res.PageCount)
	assert.Equal(t, 842.0, (*rec).Pages[0].Width)
	assert.Equal(t, 595.0, (*rec).Pages[0].Height)

	page.Size = "B7"
	_, err = g.Generate(context.Background(), Request{Page: &page})
	assert.ErrorContains(t, err, "unknown page size")
}

func TestGenerate_BackendRejection(t *testing.T) {
	g := New(testConfig(), nil, func(base []byte) (document.Builder, error) {
		rec := document.NewRecorder(0, 612, 792)
		rec.Reject = func(f document.Field, w document.Widget) error {
			if f.Kind == fields.KindSignature {
				return errors.New("signature widgets unsupported")
			}
			return nil
		}
		return rec, nil
	}, zap.NewNop())

	res, err := g.Generate(context.Background(), Request{
		Fields: []*fields.Spec{
			{Name: "a", Kind: fields.KindText, Position: &geometry.Rect{X: 1, Y: 1, Width: 10, Height: 10}},
			{Name: "s", Kind: fields.KindSignature, Position: &geometry.Rect{X: 1, Y: 100, Width: 10, Height: 10}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FieldCount)
	assert.Equal(t, map[string]fields.Reason{"s": fields.ReasonBackendRejected}, reasons(res.Skipped))
}

type failingSerializer struct {
	*document.Recorder
}

func (failingSerializer) Serialize(context.Context) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestGenerate_CollaboratorFailuresAreFatal(t *testing.T) {
	boom := errors.New("boom")
	okFactory, _ := recorderFactory(1)

	tests := []struct {
		name    string
		engine  func() Engine
		factory document.Factory
		markup  string
		want    error
	}{
		{
			name:    "NoEngine",
			engine:  func() Engine { return nil },
			factory: okFactory,
			markup:  "<p>x</p>",
			want:    ErrEngine,
		},
		{
			name: "SessionUnavailable",
			engine: func() Engine {
				e := &mocks.MockEngine{}
				e.On("NewSession", mock.Anything).Return(nil, boom)
				return e
			},
			factory: okFactory,
			markup:  "<p>x</p>",
			want:    ErrEngine,
		},
		{
			name: "RenderFails",
			engine: func() Engine {
				e := &mocks.MockEngine{}
				s := &mocks.MockSession{}
				e.On("NewSession", mock.Anything).Return(s, nil)
				s.On("Render", mock.Anything, mock.Anything).Return(boom)
				s.On("Close", mock.Anything).Return(nil)
				return e
			},
			factory: okFactory,
			markup:  "<p>x</p>",
			want:    ErrRender,
		},
		{
			name: "QueryFails",
			engine: func() Engine {
				e, s := newRenderingMocks()
				s.On("QueryRect", mock.Anything, "#a").Return(nil, boom)
				return e
			},
			factory: okFactory,
			markup:  "<p id=a>x</p>",
			want:    ErrRender,
		},
		{
			name: "ExportFails",
			engine: func() Engine {
				e := &mocks.MockEngine{}
				s := &mocks.MockSession{}
				e.On("NewSession", mock.Anything).Return(s, nil)
				s.On("Render", mock.Anything, mock.Anything).Return(nil)
				s.On("QueryRect", mock.Anything, "#a").Return(nil, nil)
				s.On("PrintPDF", mock.Anything, mock.Anything).Return(nil, boom)
				s.On("Close", mock.Anything).Return(nil)
				return e
			},
			factory: okFactory,
			markup:  "<p>x</p>",
			want:    ErrExport,
		},
		{
			name:   "SerializeFails",
			engine: func() Engine { return nil },
			factory: func(base []byte) (document.Builder, error) {
				return failingSerializer{document.NewRecorder(0, 612, 792)}, nil
			},
			want: ErrSerialize,
		},
		{
			name:   "OpenFails",
			engine: func() Engine { return nil },
			factory: func(base []byte) (document.Builder, error) {
				return nil, boom
			},
			want: ErrSerialize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(testConfig(), tt.engine(), tt.factory, zap.NewNop())
			res, err := g.Generate(context.Background(), Request{
				Markup: tt.markup,
				Fields: []*fields.Spec{textField("a", "#a")},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestGenerate_ClosesSessionOnFailure(t *testing.T) {
	engine := &mocks.MockEngine{}
	sess := &mocks.MockSession{}
	engine.On("NewSession", mock.Anything).Return(sess, nil)
	sess.On("Render", mock.Anything, mock.Anything).Return(errors.New("crashed"))
	sess.On("Close", mock.Anything).Return(nil).Once()

	factory, _ := recorderFactory(1)
	g := New(testConfig(), engine, factory, zap.NewNop())
	_, err := g.Generate(context.Background(), Request{Markup: "<p/>"})
	require.ErrorIs(t, err, ErrRender)
	sess.AssertCalled(t, "Close", mock.Anything)
}

func TestGenerate_RegisteredStyles(t *testing.T) {
	factory, rec := recorderFactory(0)
	g := New(testConfig(), nil, factory, zap.NewNop())

	_, err := g.Generate(context.Background(), Request{
		Colors: map[string]style.RGB{"brand": {255, 0, 0}},
		Fields: []*fields.Spec{
			{Name: "a", Kind: fields.KindText, Classes: "bg-brand", Position: &geometry.Rect{X: 1, Y: 1, Width: 10, Height: 10}},
		},
	})
	require.NoError(t, err)
	ops := (*rec).OpsOf("field")
	require.Len(t, ops, 1)
	require.NotNil(t, ops[0].Widget.Appearance.Background)
	assert.Equal(t, style.RGB{1, 0, 0}, *ops[0].Widget.Appearance.Background)
}

var _ Engine = (*browser.Manager)(nil)
