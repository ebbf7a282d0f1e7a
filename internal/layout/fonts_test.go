package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/mocks"
	"github.com/xkilldash9x/stylebox/internal/style"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

func TestLayoutUsesFontProvider(t *testing.T) {
	logger := zaptest.NewLogger(t)
	fp := &mocks.MockFontProvider{}
	fp.On("Metrics", mock.Anything).Return(fonts.Metrics{Size: 16, Ascent: 12, Descent: 4, LineHeight: 20, XHeight: 8})
	fp.On("Measure", mock.Anything, "ab").Return(60.0)
	fp.On("Measure", mock.Anything, "cd").Return(60.0)
	fp.On("Measure", mock.Anything, " ").Return(5.0)

	sheet := stylesheet.Parse("test.css", "body, div { display: block; } #o { width: 100px }", registry, logger)
	require.Empty(t, sheet.Diagnostics)
	styles := style.NewEngine(registry, sheet, fp, logger, style.WithViewport(800, 600))
	doc, err := dom.ParseRML(strings.NewReader(`<rml><body><div id="o">ab cd</div></body></rml>`))
	require.NoError(t, err)

	NewEngine(styles, logger).Layout(doc.Root())

	o := doc.ElementByID("o")
	frags := o.Children()[0].Fragments()
	require.Len(t, frags, 2)
	assert.Equal(t, "ab", frags[0].Text)
	assert.Equal(t, "cd", frags[1].Text)
	assert.InDelta(t, 60, frags[1].Width, delta)
	assert.InDelta(t, 20, frags[1].Offset.Y-frags[0].Offset.Y, delta)
	assert.InDelta(t, 40, o.Box().Content.Height, delta)

	fp.AssertCalled(t, "Measure", mock.Anything, "cd")
	fp.AssertCalled(t, "Metrics", mock.Anything)
}
