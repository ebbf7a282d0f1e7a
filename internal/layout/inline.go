package layout

import (
	"math"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

type itemKind uint8

const (
	textItem itemKind = iota
	spaceItem
	atomicItem
	openItem
	closeItem
	breakItem
	floatItem
	anchorItem
)

// item is one unit of inline content: a word, a space, an atomic inline box,
// the start or end edge of an inline element, or a placeholder.
type item struct {
	kind  itemKind
	node  *dom.Node
	text  string
	width float64
	// minWidth is the narrowest an atomic box can get; used when measuring.
	minWidth float64
	height   float64

	canWrap     bool
	collapsible bool
	hidden      bool

	// above and below are the extents around the baseline; shift raises
	// the item's baseline above the line's.
	above, below float64
	shift        float64
	align        string

	x, top float64
	line   int
	box    box.Box
}

// collector flattens inline-level nodes into items.
type collector struct {
	e       *Engine
	cb      box.ContainingBlock
	wraps   bool
	measure bool

	items     []*item
	nodes     []*dom.Node
	lastSpace bool
}

func newCollector(e *Engine, container *dom.Node, cb box.ContainingBlock, measure bool) *collector {
	return &collector{
		e:         e,
		cb:        cb,
		wraps:     style.Of(container.Computed()).WhiteSpace().Wraps(),
		measure:   measure,
		lastSpace: true,
	}
}

func (c *collector) add(it *item) { c.items = append(c.items, it) }

func (c *collector) collect(nodes []*dom.Node, shift float64) {
	for _, n := range nodes {
		v := style.Of(c.e.styles.Style(n, c.cb))
		if n.IsText() {
			c.nodes = append(c.nodes, n)
			c.text(n, v, shift)
			continue
		}
		switch {
		case v.Display() == style.DisplayNone:
			if !c.measure {
				c.e.hide(n, c.cb)
			}
		case v.OutOfFlow():
			if !c.measure {
				c.add(&item{kind: anchorItem, node: n})
			}
		case v.Float() != style.FloatNone:
			it := &item{kind: floatItem, node: n}
			if c.measure {
				it.minWidth, it.width = c.e.intrinsicOuter(n, c.cb)
			}
			c.add(it)
		case n.Tag() == "br":
			c.nodes = append(c.nodes, n)
			c.add(&item{kind: breakItem, node: n})
			c.lastSpace = true
		case v.Display() == style.DisplayInline:
			c.nodes = append(c.nodes, n)
			m, p, b := v.Margin(), v.Padding(), v.Border()
			inner := shift + baselineShift(v)
			c.add(&item{kind: openItem, node: n, width: m.Left + b.Left + p.Left, shift: inner})
			c.collect(n.Children(), inner)
			c.add(&item{kind: closeItem, node: n, width: p.Right + b.Right + m.Right, shift: inner})
		default:
			c.nodes = append(c.nodes, n)
			c.atomic(n, v, shift)
		}
	}
}

func (c *collector) text(n *dom.Node, v style.Values, shift float64) {
	ws := v.WhiteSpace()
	face := v.Face()
	m := c.e.fonts.Metrics(face)
	half := (v.LineHeight(c.e.fonts) - (m.Ascent + m.Descent)) / 2
	above, below := m.Ascent+half, m.Descent+half

	for _, seg := range segments(v.TransformText(n.Text()), ws) {
		it := &item{node: n, text: seg.text, canWrap: ws.Wraps(), above: above, below: below, shift: shift}
		switch {
		case seg.brk:
			it.kind = breakItem
			c.lastSpace = true
		case seg.space && ws.CollapsesSpaces():
			if c.lastSpace {
				continue
			}
			it.kind, it.collapsible = spaceItem, true
			it.width = c.e.fonts.Measure(face, seg.text)
			c.lastSpace = true
		case seg.space:
			it.kind = spaceItem
			it.width = c.e.fonts.Measure(face, seg.text)
			c.lastSpace = false
		default:
			it.kind = textItem
			it.width = c.e.fonts.Measure(face, seg.text)
			c.lastSpace = false
		}
		c.add(it)
	}
}

// atomic adds an inline-block. Outside of measuring it is laid out here, as
// a block formatting context of its own.
func (c *collector) atomic(n *dom.Node, v style.Values, shift float64) {
	it := &item{
		kind:    atomicItem,
		node:    n,
		canWrap: c.wraps,
		shift:   shift + baselineShift(v),
		align:   v.Keyword(property.VerticalAlign),
	}
	if c.measure {
		it.minWidth, it.width = c.e.intrinsicOuter(n, c.cb)
	} else {
		b := c.e.resolveWidth(n, c.cb, shrinkWidth)
		c.e.layoutContents(n, &b, nil)
		outer := b.Size(box.MarginArea)
		it.box, it.width, it.height = b, outer.Width, outer.Height
	}
	c.lastSpace = false
	c.add(it)
}

// baselineShift is how far vertical-align raises an inline box's baseline.
func baselineShift(v style.Values) float64 {
	if px, ok := v.Length(property.VerticalAlign); ok {
		return px
	}
	switch v.Keyword(property.VerticalAlign) {
	case "sub":
		return -v.FontSize() * 0.2
	case "super":
		return v.FontSize() * 0.33
	}
	return 0
}

// intrinsic returns the min-content and max-content widths of the items.
func (c *collector) intrinsic() (minW, maxW float64) {
	var lineW, chunkW float64
	flushChunk := func() {
		minW = math.Max(minW, chunkW)
		chunkW = 0
	}
	for _, it := range c.items {
		switch it.kind {
		case breakItem:
			maxW = math.Max(maxW, lineW)
			lineW = 0
			flushChunk()
		case spaceItem:
			lineW += it.width
			if it.canWrap {
				flushChunk()
			} else {
				chunkW += it.width
			}
		case atomicItem, floatItem:
			lineW += it.width
			flushChunk()
			minW = math.Max(minW, it.minWidth)
		default:
			lineW += it.width
			chunkW += it.width
		}
	}
	flushChunk()
	return minW, math.Max(maxW, lineW)
}

// lineBox is one line of an inline formatting context. Coordinates are in
// the container's content box.
type lineBox struct {
	y, x0, avail float64
	first, end   int
	width        float64
	content      bool
	forced       bool
	above, below float64
	height       float64
}

// inlineFlow lays out one run of inline-level children of a block container.
type inlineFlow struct {
	e         *Engine
	container *dom.Node
	v         style.Values
	cb        box.ContainingBlock
	fc        *flowContext
	inset     box.Point

	items []*item
	nodes []*dom.Node
	lines []*lineBox

	metrics                fonts.Metrics
	strutAbove, strutBelow float64
}

// layoutInline lays out a run of inline-level children of n whose first
// line starts at local y, and returns the height of the lines.
func (e *Engine) layoutInline(n *dom.Node, run []*dom.Node, cb box.ContainingBlock, fc *flowContext, y float64, inset box.Point) float64 {
	col := newCollector(e, n, cb, false)
	col.collect(run, 0)

	f := &inlineFlow{
		e:         e,
		container: n,
		v:         style.Of(n.Computed()),
		cb:        cb,
		fc:        fc,
		inset:     inset,
		items:     col.items,
		nodes:     col.nodes,
	}
	f.metrics = e.fonts.Metrics(f.v.Face())
	half := (f.v.LineHeight(e.fonts) - (f.metrics.Ascent + f.metrics.Descent)) / 2
	f.strutAbove, f.strutBelow = f.metrics.Ascent+half, f.metrics.Descent+half

	f.breakLines(y)
	f.place()
	f.publish()

	if len(f.lines) == 0 {
		return 0
	}
	last := f.lines[len(f.lines)-1]
	return last.y + last.height - y
}

func (f *inlineFlow) newLine(y float64, first int) *lineBox {
	x0, avail := f.fc.band(y, f.strutAbove+f.strutBelow, f.cb.Width)
	return &lineBox{y: y, x0: x0, avail: avail, first: first}
}

func (f *inlineFlow) breakLines(y float64) {
	line := f.newLine(y, 0)
	for i := 0; i < len(f.items); i++ {
		it := f.items[i]
		switch it.kind {
		case floatItem:
			f.e.layoutFloat(it.node, f.cb, f.fc, line.y, f.inset)
			line.x0, line.avail = f.fc.band(line.y, f.strutAbove+f.strutBelow, f.cb.Width)
		case breakItem:
			line.forced = true
			f.closeLine(line, i+1)
			line = f.newLine(line.y+line.height, i+1)
		case spaceItem:
			if it.collapsible && !line.content {
				it.hidden = true
				continue
			}
			line.width += it.width
		case textItem, atomicItem:
			if line.content && f.breakable(i, line) && line.width+it.width > line.avail+epsilon {
				// Opening edges stay with the content that follows them.
				k := i
				for k > line.first && f.items[k-1].kind == openItem {
					k--
				}
				f.closeLine(line, k)
				line = f.newLine(line.y+line.height, k)
				for _, o := range f.items[k:i] {
					line.width += o.width
				}
			}
			line.width += it.width
			line.content = true
		case openItem, closeItem:
			line.width += it.width
		}
	}
	if line.first < len(f.items) {
		f.closeLine(line, len(f.items))
	}
}

// breakable reports whether a line may end right before item i.
func (f *inlineFlow) breakable(i int, line *lineBox) bool {
	it := f.items[i]
	if !it.canWrap {
		return false
	}
	if it.kind == atomicItem {
		return true
	}
	for k := i - 1; k >= line.first; k-- {
		prev := f.items[k]
		switch prev.kind {
		case openItem, closeItem, anchorItem, floatItem:
			continue
		case spaceItem:
			return prev.canWrap
		case atomicItem:
			return true
		default:
			return false
		}
	}
	return false
}

func (f *inlineFlow) closeLine(line *lineBox, end int) {
	line.end = end

	// Trailing white space hangs past the end of the line.
	for k := end - 1; k >= line.first; k-- {
		it := f.items[k]
		if it.kind != spaceItem && it.kind != textItem && it.kind != atomicItem {
			continue
		}
		if it.kind != spaceItem || !(it.collapsible || it.canWrap) {
			break
		}
		if !it.hidden {
			it.hidden = true
			line.width -= it.width
		}
	}

	if !line.content && !line.forced {
		f.lines = append(f.lines, line)
		return
	}

	above, below := f.strutAbove, f.strutBelow
	edge := 0.0
	for _, it := range f.items[line.first:end] {
		switch it.kind {
		case textItem, spaceItem:
			if it.hidden {
				continue
			}
		case atomicItem:
			f.atomicExtents(it)
			if it.align == "top" || it.align == "bottom" {
				edge = math.Max(edge, it.height)
				continue
			}
		default:
			continue
		}
		above = math.Max(above, it.above+it.shift)
		below = math.Max(below, it.below-it.shift)
	}
	line.above, line.below = above, below
	line.height = math.Max(above+below, edge)
	f.lines = append(f.lines, line)
}

// atomicExtents resolves where an inline-block sits around the baseline.
// Its own baseline is the bottom margin edge.
func (f *inlineFlow) atomicExtents(it *item) {
	h := it.height
	parent := f.metrics
	if p := it.node.Parent(); p != nil && p != f.container {
		parent = f.e.fonts.Metrics(style.Of(p.Computed()).Face())
	}
	switch it.align {
	case "middle":
		it.shift = 0
		it.above, it.below = h/2+parent.XHeight/2, h/2-parent.XHeight/2
	case "text-top":
		it.shift = 0
		it.above, it.below = parent.Ascent, h-parent.Ascent
	case "text-bottom":
		it.shift = 0
		it.above, it.below = h-parent.Descent, parent.Descent
	default:
		it.above, it.below = h, 0
	}
}

// place assigns horizontal and vertical positions to every item.
func (f *inlineFlow) place() {
	align := f.v.TextAlign()
	for li, line := range f.lines {
		offset := 0.0
		switch align {
		case style.TextAlignRight:
			offset = line.avail - line.width
		case style.TextAlignCenter:
			offset = (line.avail - line.width) / 2
		}
		offset = math.Max(0, offset)

		x := line.x0 + offset
		baseline := line.y + line.above
		for _, it := range f.items[line.first:line.end] {
			it.line = li
			it.x = x
			if !it.hidden {
				x += it.width
			}
			switch {
			case it.kind == atomicItem && it.align == "top":
				it.top = line.y
			case it.kind == atomicItem && it.align == "bottom":
				it.top = line.y + line.height - it.height
			default:
				it.top = baseline - it.shift - it.above
			}
		}
	}
}

// extent accumulates a bounding rectangle.
type extent struct {
	minX, maxX, minY, maxY float64
	set                    bool
}

func (x *extent) grow(x0, x1, y0, y1 float64) {
	if !x.set {
		x.minX, x.maxX, x.minY, x.maxY, x.set = x0, x1, y0, y1, true
		return
	}
	x.minX, x.maxX = math.Min(x.minX, x0), math.Max(x.maxX, x1)
	x.minY, x.maxY = math.Min(x.minY, y0), math.Max(x.maxY, y1)
}

// publish writes boxes and text fragments for every node of the run.
func (f *inlineFlow) publish() {
	origins := map[*dom.Node]box.Point{f.container: {X: -f.inset.X, Y: -f.inset.Y}}
	extents := map[*dom.Node]*extent{}
	frags := map[*dom.Node][]box.Fragment{}
	fragLine := map[*dom.Node]int{}
	shifts := map[*dom.Node]float64{}
	atomics := map[*dom.Node]bool{}
	var stack []*dom.Node

	extentOf := func(n *dom.Node) *extent {
		x, ok := extents[n]
		if !ok {
			x = &extent{}
			extents[n] = x
		}
		return x
	}
	// fontBand is the vertical span of an inline element's own font on a line.
	fontBand := func(n *dom.Node, it *item) (float64, float64) {
		m := f.e.fonts.Metrics(style.Of(n.Computed()).Face())
		line := f.lines[it.line]
		baseline := line.y + line.above - shifts[n]
		return baseline - m.Ascent, baseline + m.Descent
	}
	growStack := func(x0, x1 float64, it *item) {
		for _, el := range stack {
			y0, y1 := fontBand(el, it)
			extentOf(el).grow(x0, x1, y0, y1)
		}
	}

	for _, it := range f.items {
		switch it.kind {
		case openItem:
			growStack(it.x, it.x, it)
			shifts[it.node] = it.shift
			stack = append(stack, it.node)
			growStack(it.x+it.width, it.x+it.width, it)
		case closeItem:
			growStack(it.x, it.x, it)
			stack = stack[:len(stack)-1]
			growStack(it.x+it.width, it.x+it.width, it)
		case textItem, spaceItem:
			if it.hidden {
				continue
			}
			growStack(it.x, it.x+it.width, it)
			list := frags[it.node]
			if n := len(list); n > 0 && fragLine[it.node] == it.line &&
				math.Abs(list[n-1].Offset.X+list[n-1].Width-it.x) < epsilon {
				list[n-1].Text += it.text
				list[n-1].Width += it.width
			} else {
				list = append(list, box.Fragment{
					Text:     it.text,
					Offset:   box.Point{X: it.x, Y: it.top},
					Width:    it.width,
					Height:   it.above + it.below,
					Baseline: it.above,
				})
			}
			frags[it.node] = list
			fragLine[it.node] = it.line
		case atomicItem:
			growStack(it.x, it.x+it.width, it)
			atomics[it.node] = true
			origins[it.node] = box.Point{X: it.x + it.box.Margin.Left, Y: it.top + it.box.Margin.Top}
		case breakItem:
			if it.node.IsElement() {
				origins[it.node] = box.Point{X: it.x, Y: f.lines[it.line].y}
			}
		case anchorItem:
			rec := recordOf(it.node)
			rec.kind = placedOutOfFlow
			rec.static = box.Point{X: it.x, Y: f.lines[it.line].y}
			rec.staticRef = f.container
		case floatItem:
			rec := recordOf(it.node)
			origins[it.node] = rec.flowOffset.Sub(f.inset)
		}
	}

	boxes := map[*dom.Node]box.Box{}
	for n, x := range extents {
		v := style.Of(n.Computed())
		b := box.Box{Padding: v.Padding(), Border: v.Border(), Margin: v.Margin()}
		b.Content = box.Size{Width: x.maxX - x.minX, Height: x.maxY - x.minY}
		boxes[n] = b
		origins[n] = box.Point{X: x.minX - b.Padding.Left - b.Border.Left, Y: x.minY - b.Padding.Top - b.Border.Top}
	}
	for n, list := range frags {
		var x extent
		for _, fr := range list {
			x.grow(fr.Offset.X, fr.Offset.X+fr.Width, fr.Offset.Y, fr.Offset.Y+fr.Height)
		}
		origin := box.Point{X: x.minX, Y: x.minY}
		for i := range list {
			list[i].Offset = box.Point{X: list[i].Offset.X - origin.X, Y: list[i].Offset.Y - origin.Y}
		}
		origins[n] = origin
		boxes[n] = box.Box{Content: box.Size{Width: x.maxX - x.minX, Height: x.maxY - x.minY}}
	}
	for _, it := range f.items {
		if it.kind == atomicItem {
			boxes[it.node] = it.box
		}
	}

	// Offsets are relative to the parent's border box, so parents come first.
	for _, n := range f.nodes {
		b := boxes[n]
		origin, ok := origins[n]
		if !ok {
			origin = origins[n.Parent()]
		}
		rel := box.Point{}
		if n.IsElement() {
			rel = relativeShift(style.Of(n.Computed()))
		}
		b.Offset = origin.Add(rel).Sub(origins[n.Parent()])
		n.SetBox(b)
		n.SetFragments(frags[n])

		rec := recordOf(n)
		rec.cb, rec.computed = f.cb, n.Computed()
		if atomics[n] {
			rec.kind = placedAtomic
		} else {
			rec.kind = placedInline
			f.e.setState(n, box.Measuring)
		}
	}
	for _, it := range f.items {
		if it.kind == floatItem {
			b := it.node.Box()
			b.Offset = origins[it.node].Add(relativeShift(style.Of(it.node.Computed()))).Sub(origins[it.node.Parent()])
			it.node.SetBox(b)
		}
	}
	for i := len(f.nodes) - 1; i >= 0; i-- {
		f.e.finish(f.nodes[i])
	}
}
