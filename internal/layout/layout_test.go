package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

const delta = 1e-6

var registry = property.NewDefaultRegistry()

// The estimator gives 16px text a 9.6px advance per character and a 19.2px
// line: 14.4px above the baseline and 4.8px below.
const (
	advance    = 9.6
	lineHeight = 19.2
)

type fixture struct {
	engine *Engine
	doc    *dom.Document
}

func setup(t *testing.T, css, markup string, logger *zap.Logger) *fixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	sheet := stylesheet.Parse("test.css", "body, div, p { display: block; }\n"+css, registry, logger)
	require.Empty(t, sheet.Diagnostics)
	styles := style.NewEngine(registry, sheet, fonts.NewEstimator(), logger, style.WithViewport(800, 600))

	doc, err := dom.ParseRML(strings.NewReader("<rml><body>" + markup + "</body></rml>"))
	require.NoError(t, err)
	return &fixture{engine: NewEngine(styles, logger), doc: doc}
}

func (f *fixture) layout() *fixture {
	f.engine.Layout(f.doc.Root())
	return f
}

func (f *fixture) box(t *testing.T, id string) box.Box {
	t.Helper()
	n := f.doc.ElementByID(id)
	require.NotNil(t, n, id)
	return n.Box()
}

func TestBlockWidths(t *testing.T) {
	tests := []struct {
		name    string
		css     string
		content float64
		margin  box.Edges
	}{
		{"Percent of the containing block", "#o { width: 200px } #i { width: 50% }", 100, box.Edges{}},
		{"Auto fills the container", "#o { width: 200px } #i { padding: 0 10px }", 180, box.Edges{}},
		{"Auto margins centre", "#o { width: 200px } #i { width: 50px; margin-left: auto; margin-right: auto }", 50, box.Edges{Left: 75, Right: 75}},
		{"Auto left margin takes the rest", "#o { width: 200px } #i { width: 50px; margin-left: auto }", 50, box.Edges{Left: 150}},
		{"Over-constrained keeps margins", "#o { width: 200px } #i { width: 50px; margin: 0 10px }", 50, box.Edges{Left: 10, Right: 10}},
		{"Min width beats max width", "#i { width: 100px; max-width: 50px; min-width: 80px }", 80, box.Edges{}},
		{"Border box", "#i { width: 100px; padding: 10px; border-width: 5px; box-sizing: border-box }", 70, box.Edges{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.css, `<div id="o"><div id="i"></div></div>`, nil).layout()
			b := f.box(t, "i")
			assert.InDelta(t, tt.content, b.Content.Width, delta)
			assert.InDelta(t, tt.margin.Left, b.Margin.Left, delta)
			assert.InDelta(t, tt.margin.Right, b.Margin.Right, delta)
		})
	}
}

func TestAutoHeightSumsChildren(t *testing.T) {
	f := setup(t, `
#a { height: 30px; margin-top: 5px; }
#b { height: 40px; padding-bottom: 2px; }
`, `<div id="o"><div id="a"></div><div id="b"></div></div>`, nil).layout()

	o := f.box(t, "o")
	var sum float64
	for _, c := range f.doc.ElementByID("o").Children() {
		sum += c.Box().Size(box.MarginArea).Height
	}
	assert.InDelta(t, 77, sum, delta)
	assert.InDelta(t, sum, o.Content.Height, delta)
	assert.InDelta(t, 5, f.box(t, "a").Offset.Y, delta)
	assert.InDelta(t, 35, f.box(t, "b").Offset.Y, delta)
}

func TestSiblingMarginsCollapse(t *testing.T) {
	f := setup(t, `
#a { height: 10px; margin-bottom: 20px; }
#b { height: 10px; margin-top: 10px; }
#c { height: 10px; margin-top: -5px; }
`, `<div id="a"></div><div id="b"></div><div id="c"></div>`, nil).layout()

	assert.InDelta(t, 30, f.box(t, "b").Offset.Y, delta)
	assert.InDelta(t, 35, f.box(t, "c").Offset.Y, delta)
}

func TestExplicitHeightAndPercentages(t *testing.T) {
	f := setup(t, `
#o { height: 100px; }
#i { height: 25%; }
#auto { height: 50%; }
`, `<div id="o"><div id="i"></div></div><div id="w"><div id="auto"></div></div>`, nil).layout()

	assert.InDelta(t, 100, f.box(t, "o").Content.Height, delta)
	assert.InDelta(t, 25, f.box(t, "i").Content.Height, delta)
	// A percentage of an auto height behaves as auto.
	assert.InDelta(t, 0, f.box(t, "auto").Content.Height, delta)
}

func TestInlineWrapping(t *testing.T) {
	f := setup(t, "#o { width: 100px }", `<div id="o">aaaa bbbb cccc</div>`, nil).layout()

	o := f.doc.ElementByID("o")
	text := o.Children()[0]
	frags := text.Fragments()
	require.Len(t, frags, 2)
	assert.Equal(t, "aaaa bbbb", frags[0].Text)
	assert.Equal(t, "cccc", frags[1].Text)
	assert.InDelta(t, 9*advance, frags[0].Width, delta)
	assert.InDelta(t, lineHeight, frags[1].Offset.Y-frags[0].Offset.Y, delta)
	assert.InDelta(t, 2*lineHeight, o.Box().Content.Height, delta)
	assert.Equal(t, box.Done, text.State())
}

func TestWhiteSpace(t *testing.T) {
	tests := []struct {
		name  string
		ws    string
		text  string
		lines []string
	}{
		{"Normal collapses", "normal", "  a \n  b  ", []string{"a b"}},
		{"Pre keeps everything", "pre", "a  b\nc", []string{"a  b", "c"}},
		{"Pre-line keeps newlines", "pre-line", "a   b\n c", []string{"a b", "c"}},
		{"Nowrap never breaks", "nowrap", strings.Repeat("word ", 30), []string{strings.TrimSpace(strings.Repeat("word ", 30))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, "#o { width: 100px; white-space: "+tt.ws+" }", `<div id="o"></div>`, nil)
			o := f.doc.ElementByID("o")
			o.AppendChild(dom.NewText(tt.text))
			f.layout()

			var got []string
			for _, fr := range o.Children()[0].Fragments() {
				got = append(got, fr.Text)
			}
			assert.Equal(t, tt.lines, got)
		})
	}
}

func TestTextAlign(t *testing.T) {
	tests := []struct {
		align string
		x     float64
	}{
		{"left", 0},
		{"right", 200 - 2*advance},
		{"center", (200 - 2*advance) / 2},
		{"justify", 0},
	}
	for _, tt := range tests {
		t.Run(tt.align, func(t *testing.T) {
			f := setup(t, "#o { width: 200px; text-align: "+tt.align+" }", `<div id="o">ab</div>`, nil).layout()
			text := f.doc.ElementByID("o").Children()[0]
			assert.InDelta(t, tt.x, text.Box().Offset.X, delta)
		})
	}
}

func TestInlineElements(t *testing.T) {
	t.Run("Inline-block raises the line", func(t *testing.T) {
		f := setup(t, "#ib { display: inline-block; width: 50px; height: 20px }",
			`<div id="o">a<span id="ib"></span></div>`, nil).layout()

		ib := f.box(t, "ib")
		assert.InDelta(t, advance, ib.Offset.X, delta)
		assert.InDelta(t, 0, ib.Offset.Y, delta)
		assert.InDelta(t, 20+4.8, f.box(t, "o").Content.Height, delta)
	})

	t.Run("Inline box wraps its text", func(t *testing.T) {
		f := setup(t, "#s { padding-left: 4px }", `<div id="o">ab<span id="s">cd</span></div>`, nil).layout()

		s := f.box(t, "s")
		assert.InDelta(t, 2*advance, s.Offset.X, delta)
		assert.InDelta(t, 2*advance, s.Content.Width, delta)
		assert.InDelta(t, 16, s.Content.Height, delta)

		text := f.doc.ElementByID("s").Children()[0]
		assert.InDelta(t, 4, text.Box().Offset.X, delta)
	})

	t.Run("Line break element", func(t *testing.T) {
		f := setup(t, "", `<div id="o">a<br/>b</div>`, nil).layout()
		assert.InDelta(t, 2*lineHeight, f.box(t, "o").Content.Height, delta)
	})

	t.Run("Blank runs produce nothing", func(t *testing.T) {
		f := setup(t, "#a { height: 10px }", `<div id="o">  <div id="a"></div>  </div>`, nil).layout()
		assert.InDelta(t, 10, f.box(t, "o").Content.Height, delta)
		assert.InDelta(t, 0, f.box(t, "a").Offset.Y, delta)
	})
}

func TestFloats(t *testing.T) {
	f := setup(t, `
#f { float: left; width: 100px; height: 50px; }
#r { float: right; width: 30px; height: 10px; }
#c { clear: both; height: 5px; }
`, `<div id="f"></div><div id="r"></div><p id="p">hi</p><div id="c"></div>`, nil).layout()

	assert.InDelta(t, 0, f.box(t, "f").Offset.X, delta)
	assert.InDelta(t, 770, f.box(t, "r").Offset.X, delta)

	text := f.doc.ElementByID("p").Children()[0]
	assert.InDelta(t, 100, text.Box().Offset.X, delta)
	assert.InDelta(t, 0, f.box(t, "p").Offset.Y, delta)

	assert.InDelta(t, 50, f.box(t, "c").Offset.Y, delta)
	assert.InDelta(t, 55, f.doc.Root().Box().Content.Height, delta)
}

func TestPositioning(t *testing.T) {
	t.Run("Relative shifts only itself", func(t *testing.T) {
		f := setup(t, `
#r { position: relative; left: 10px; top: 5px; height: 10px; }
#n { height: 10px; }
`, `<div id="r"></div><div id="n"></div>`, nil).layout()

		assert.Equal(t, box.Point{X: 10, Y: 5}, f.box(t, "r").Offset)
		assert.InDelta(t, 10, f.box(t, "n").Offset.Y, delta)
	})

	t.Run("Absolute against the root", func(t *testing.T) {
		f := setup(t, `
#a { position: absolute; left: 20px; top: 30px; width: 50px; height: 40px; }
#b { position: absolute; right: 10px; bottom: 10px; width: 50px; height: 40px; }
#n { height: 10px; }
`, `<div id="a"></div><div id="b"></div><div id="n"></div>`, nil).layout()

		assert.Equal(t, box.Point{X: 20, Y: 30}, f.box(t, "a").Offset)
		// The root's padding box is only as tall as #n.
		assert.Equal(t, box.Point{X: 740, Y: -40}, f.box(t, "b").Offset)
		assert.InDelta(t, 0, f.box(t, "n").Offset.Y, delta)
	})

	t.Run("Absolute inside a positioned ancestor", func(t *testing.T) {
		f := setup(t, `
#o { position: relative; margin-left: 100px; width: 200px; height: 100px; border-width: 2px; }
#i { position: absolute; left: 0; top: 0; width: 50%; height: 50%; }
`, `<div id="o"><div><div id="i"></div></div></div>`, nil).layout()

		i := f.box(t, "i")
		assert.InDelta(t, 102, i.Content.Width, delta)
		assert.InDelta(t, 52, i.Content.Height, delta)
		// The wrapper sits at the content origin of #o, two pixels in.
		assert.Equal(t, box.Point{X: 0, Y: 0}, i.Offset)
	})

	t.Run("Static position", func(t *testing.T) {
		f := setup(t, `
#p { height: 10px; }
#s { position: absolute; }
`, `<div id="p"></div><div id="s">xy</div>`, nil).layout()

		s := f.box(t, "s")
		assert.InDelta(t, 10, s.Offset.Y, delta)
		assert.InDelta(t, 2*advance, s.Content.Width, delta)
	})

	t.Run("Fixed against the viewport", func(t *testing.T) {
		f := setup(t, `
body { margin: 8px; }
#x { position: fixed; right: 0; bottom: 0; width: 10px; height: 10px; }
`, `<div><div id="x"></div></div>`, nil).layout()

		assert.Equal(t, box.Point{X: 8, Y: 8}, f.doc.Root().Box().Offset)
		assert.Equal(t, box.Point{X: 782, Y: 582}, f.box(t, "x").Offset)
	})
}

func TestDisplayNone(t *testing.T) {
	f := setup(t, "#h { display: none; width: 100px; height: 100px }",
		`<div id="h"><p id="in">x</p></div><div id="n"></div>`, nil).layout()

	assert.Equal(t, box.Box{}, f.box(t, "h"))
	assert.Equal(t, box.Box{}, f.box(t, "in"))
	assert.Equal(t, box.Done, f.doc.ElementByID("in").State())
	assert.NotNil(t, f.doc.ElementByID("in").Computed())
	assert.InDelta(t, 0, f.box(t, "n").Offset.Y, delta)
}

func TestScopedRelayout(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := setup(t, `
#a { height: 50px; }
#b { height: 20px; }
`, `<div id="a"><p id="t">one</p></div><div id="b"></div>`, zap.New(core)).layout()
	root := f.doc.Root()
	before := f.box(t, "b")

	t.Run("Unchanged geometry stays local", func(t *testing.T) {
		f.doc.ElementByID("t").Children()[0].SetText("one two three")
		f.engine.Update(root)

		assert.Equal(t, 1, logs.FilterMessage("Scoped relayout.").Len())
		assert.Equal(t, before, f.box(t, "b"))
		assert.Equal(t, "one two three", f.doc.ElementByID("t").Children()[0].Fragments()[0].Text)
		assert.False(t, root.DescendantDirty())
	})

	t.Run("Growing pushes siblings down", func(t *testing.T) {
		a := f.doc.ElementByID("a")
		a.SetInlineStyle("height: 80px")
		f.engine.Update(root)

		assert.InDelta(t, 80, f.box(t, "b").Offset.Y, delta)
		assert.InDelta(t, 100, root.Box().Content.Height, delta)
	})

	t.Run("Viewport change relays everything", func(t *testing.T) {
		f.engine.styles.SetViewport(400, 300)
		f.engine.Update(root)
		assert.InDelta(t, 400, root.Box().Content.Width, delta)
		assert.InDelta(t, 400, f.box(t, "b").Content.Width, delta)
	})
}

func boxesOf(doc *dom.Document) []box.Box {
	var out []box.Box
	doc.Root().Walk(func(n *dom.Node) bool {
		out = append(out, n.Box())
		return true
	})
	return out
}

func TestScopedRelayoutOfHiddenAbsolute(t *testing.T) {
	css := `
#w { position: relative; height: 40px; }
#ab { position: absolute; left: 5px; top: 5px; width: 10px; height: 10px; }
.hide { display: none; }
`
	markup := `<div id="w"><div id="ab"></div><p id="t">x</p></div>`

	tests := []struct {
		name string
		hide bool
	}{
		{"Hiding clears the box", true},
		{"Showing restores the box", false},
	}

	f := setup(t, css, markup, nil).layout()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.doc.ElementByID("ab").SetClass("hide", tt.hide)
			f.engine.Update(f.doc.Root())

			fresh := setup(t, css, markup, nil)
			fresh.doc.ElementByID("ab").SetClass("hide", tt.hide)
			fresh.layout()

			assert.Equal(t, boxesOf(fresh.doc), boxesOf(f.doc))
			if tt.hide {
				assert.Equal(t, box.Box{}, f.box(t, "ab"))
			} else {
				assert.InDelta(t, 10, f.box(t, "ab").Content.Width, delta)
			}
		})
	}
}

func TestBoxInvariants(t *testing.T) {
	f := setup(t, `
#a { padding: 3px; border-width: 1px; margin: 4px; width: 50%; }
#b { float: right; width: 30px; padding: 2px; }
#c { position: absolute; left: 5px; top: 5px; border-width: 2px; }
span { padding: 1px; margin: 0 2px; }
`, `<div id="a">text <span>in span</span><div id="b">f</div></div><div id="c">abs</div>`, nil).layout()

	f.doc.Root().Walk(func(n *dom.Node) bool {
		assert.Equal(t, box.Done, n.State(), n.Path())
		checkBox(t, n)
		return true
	})
}

func checkBox(t *testing.T, n *dom.Node) {
	t.Helper()
	b := n.Box()
	content, padding := b.Rect(box.ContentArea), b.Rect(box.PaddingArea)
	border, margin := b.Rect(box.BorderArea), b.Rect(box.MarginArea)
	assert.LessOrEqual(t, content.Width, padding.Width+delta, n.Path())
	assert.LessOrEqual(t, padding.Width, border.Width+delta, n.Path())
	assert.LessOrEqual(t, content.Height, padding.Height+delta, n.Path())
	assert.LessOrEqual(t, padding.Height, border.Height+delta, n.Path())
	if b.Margin.Left >= 0 && b.Margin.Right >= 0 && b.Margin.Top >= 0 && b.Margin.Bottom >= 0 {
		assert.LessOrEqual(t, border.Width, margin.Width+delta, n.Path())
		assert.LessOrEqual(t, border.Height, margin.Height+delta, n.Path())
	}
	for _, v := range []float64{b.Content.Width, b.Content.Height, b.Offset.X, b.Offset.Y} {
		assert.False(t, math.IsNaN(v), n.Path())
	}
}

func TestSolveHorizontal(t *testing.T) {
	nan := math.NaN()
	shrink := func(avail float64) float64 { return math.Min(avail, 40) }

	tests := []struct {
		name                              string
		left, width, right, mLeft, mRight float64
		want                              axis
	}{
		{"Left and width", 10, 100, nan, 0, 0, axis{start: 10, size: 100}},
		{"Right and width", nan, 100, 10, 0, 0, axis{start: 290, size: 100}},
		{"Both insets stretch", 10, nan, 10, 0, 0, axis{start: 10, size: 380}},
		{"Shrink to fit", 10, nan, nan, 0, 0, axis{start: 10, size: 40}},
		{"Static position", nan, 50, nan, 0, 0, axis{start: 7, size: 50}},
		{"Auto margins centre", 0, 100, 0, nan, nan, axis{start: 0, size: 100, marginStart: 150, marginEnd: 150}},
		{"Over-constrained ignores right", 10, 100, 10, 5, 5, axis{start: 10, size: 100, marginStart: 5, marginEnd: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := solveHorizontal(400, 0, 7, tt.left, tt.width, tt.right, tt.mLeft, tt.mRight, shrink)
			assert.InDelta(t, tt.want.start, got.start, delta)
			assert.InDelta(t, tt.want.size, got.size, delta)
			assert.InDelta(t, tt.want.marginStart, got.marginStart, delta)
			assert.InDelta(t, tt.want.marginEnd, got.marginEnd, delta)
		})
	}
}
