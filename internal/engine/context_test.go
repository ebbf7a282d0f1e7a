package engine

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/render"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

var registry = property.NewDefaultRegistry()

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop()), WithViewport(200, 100), WithUserAgentSheet(true)}, opts...)
	c, err := NewContext("test", registry, fonts.NewEstimator(), opts...)
	require.NoError(t, err)
	return c
}

func parseRML(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseRML(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func rects(c *Context) map[string]box.Rect {
	out := make(map[string]box.Rect)
	c.Render(render.BridgeFunc(func(it render.Item) {
		if id := it.Node.ID(); id != "" {
			out[id] = it.Rect
		}
	}))
	return out
}

func TestNewContext(t *testing.T) {
	t.Run("Validates dependencies", func(t *testing.T) {
		_, err := NewContext("x", nil, nil)
		assert.Error(t, err)

		_, err = NewContext("x", property.NewRegistry(), nil)
		assert.ErrorIs(t, err, ErrRegistryNotSealed)

		_, err = NewContext("x", registry, nil, WithViewport(0, 10))
		assert.Error(t, err)

		_, err = NewContext("x", registry, nil, WithDensityRatio(-1))
		assert.Error(t, err)
	})

	t.Run("Generates an id", func(t *testing.T) {
		c, err := NewContext("", registry, nil, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		_, err = uuid.Parse(c.ID())
		assert.NoError(t, err)
		assert.Equal(t, box.Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight}, c.Dimensions())
	})

	t.Run("Renders nothing without a document", func(t *testing.T) {
		c := newTestContext(t)
		assert.Zero(t, c.Render(render.BridgeFunc(func(render.Item) {})))
	})
}

func TestUserAgentSheetParsesCleanly(t *testing.T) {
	sheet := stylesheet.Parse("user-agent", UserAgentCSS, registry, zap.NewNop())
	assert.Empty(t, sheet.Diagnostics)
	assert.NotZero(t, sheet.Len())
}

func TestContextRender(t *testing.T) {
	c := newTestContext(t)
	c.SetDocument(parseRML(t, `<rml><head><style>#a { height: 30px; }</style></head><body><div id="a"/></body></rml>`))

	got := rects(c)
	assert.Equal(t, 2, c.Render(render.BridgeFunc(func(render.Item) {})))
	assert.Equal(t, box.Rect{X: 8, Y: 8, Width: 184, Height: 30}, got["a"])

	t.Run("Resize", func(t *testing.T) {
		c.SetDimensions(100, 100)
		assert.Equal(t, box.Size{Width: 100, Height: 100}, c.Dimensions())
		assert.Equal(t, box.Rect{X: 8, Y: 8, Width: 84, Height: 30}, rects(c)["a"])
	})
}

func TestSheetPrecedence(t *testing.T) {
	c := newTestContext(t)
	c.AddStyleSheet(stylesheet.Parse("first.css", "#a { height: 10px; width: 50px; }", registry, nil), nil)
	_, err := c.LoadStyleSheet("second.css", strings.NewReader("#a { height: 20px; }"))
	require.NoError(t, err)

	c.SetDocument(parseRML(t, `<rml><body><div id="a"/></body></rml>`))
	assert.Equal(t, box.Rect{X: 8, Y: 8, Width: 50, Height: 20}, rects(c)["a"])

	// Embedded sheets come last.
	c.SetDocument(parseRML(t, `<rml><head><style>#a { height: 40px; }</style></head><body><div id="a"/></body></rml>`))
	assert.Equal(t, 40.0, rects(c)["a"].Height)

	// Adding a sheet later restyles the existing document.
	c.AddStyleSheet(stylesheet.Parse("late.css", "#a { width: 60px; }", registry, nil))
	assert.Equal(t, 60.0, rects(c)["a"].Width)
}

func TestDiagnosticsAccumulate(t *testing.T) {
	c := newTestContext(t)
	_, err := c.LoadStyleSheet("bad.css", strings.NewReader("#a { width: blue; } #a { bogus: 1; }"))
	require.NoError(t, err)
	c.SetDocument(parseRML(t, `<rml><head><style>p { color: 12px; }</style></head><body/></rml>`))

	diags := c.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, "bad.css", diags[0].Sheet)
	assert.Equal(t, "embedded#0", diags[2].Sheet)
	assert.True(t, property.IsUnknown(diags[1]))

	// The returned slice is a copy.
	diags[0].Line = 99
	assert.NotEqual(t, 99, c.Diagnostics()[0].Line)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestLoadStyleSheetReadError(t *testing.T) {
	c := newTestContext(t)
	_, err := c.LoadStyleSheet("broken.css", failingReader{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, c.Diagnostics())
}

func TestContextLoggerCarriesID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewContext("ctx-7", registry, nil, WithLogger(zap.New(core)))
	require.NoError(t, err)

	c.SetDocument(parseRML(t, `<rml><head><link type="text/css" href="skin.rcss"/></head><body/></rml>`))

	entries := logs.FilterMessage("Linked style sheet not loaded.").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ctx-7", fields["context"])
	assert.Equal(t, "skin.rcss", fields["href"])
}
