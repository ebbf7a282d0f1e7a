package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

const epsilon = 1e-6

// widthMode selects how an auto width is resolved.
type widthMode uint8

const (
	// fillWidth stretches an auto width across the containing block.
	fillWidth widthMode = iota
	// shrinkWidth sizes an auto width to the content, bounded by the
	// containing block.
	shrinkWidth
)

// autoLength reads a pixel length, returning NaN for auto or any other keyword.
func autoLength(v style.Values, name string) float64 {
	if px, ok := v.Length(name); ok {
		return px
	}
	return math.NaN()
}

func zeroIfNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// establishesBFC reports whether n's descendants float independently of the
// surrounding flow.
func establishesBFC(n *dom.Node, v style.Values) bool {
	if n.Parent() == nil {
		return true
	}
	if v.Float() != style.FloatNone || v.OutOfFlow() || v.Display() == style.DisplayInlineBlock {
		return true
	}
	ox, oy := v.Keyword(property.OverflowX), v.Keyword(property.OverflowY)
	return (ox != "" && ox != "visible") || (oy != "" && oy != "visible")
}

// resolveWidth fixes n's horizontal geometry and its vertical edges. Height
// and offset are left to the caller.
func (e *Engine) resolveWidth(n *dom.Node, cb box.ContainingBlock, mode widthMode) box.Box {
	e.setState(n, box.Measuring)
	v := style.Of(n.Computed())
	b := box.Box{Padding: v.Padding(), Border: v.Border()}
	b.Margin.Top = zeroIfNaN(autoLength(v, property.MarginTop))
	b.Margin.Bottom = zeroIfNaN(autoLength(v, property.MarginBottom))

	hStatic := b.Padding.Horizontal() + b.Border.Horizontal()
	marginLeft := autoLength(v, property.MarginLeft)
	marginRight := autoLength(v, property.MarginRight)
	width := autoLength(v, property.Width)
	if !math.IsNaN(width) && v.BoxSizing() == style.BorderBox {
		width = math.Max(0, width-hStatic)
	}

	if mode == shrinkWidth {
		marginLeft, marginRight = zeroIfNaN(marginLeft), zeroIfNaN(marginRight)
		if math.IsNaN(width) {
			avail := math.Max(0, cb.Width-marginLeft-marginRight-hStatic)
			minContent, maxContent := e.intrinsicContent(n, cb)
			width = math.Min(math.Max(minContent, avail), maxContent)
		}
		b.Content.Width = clampWidth(v, width, hStatic)
		b.Margin.Left, b.Margin.Right = marginLeft, marginRight
		return b
	}

	if math.IsNaN(width) {
		width = math.Max(0, cb.Width-hStatic-zeroIfNaN(marginLeft)-zeroIfNaN(marginRight))
	}
	width = clampWidth(v, width, hStatic)

	remaining := cb.Width - hStatic - width
	switch {
	case math.IsNaN(marginLeft) && math.IsNaN(marginRight):
		if remaining > 0 {
			marginLeft, marginRight = remaining/2, remaining/2
		} else {
			marginLeft, marginRight = 0, 0
		}
	case math.IsNaN(marginLeft):
		marginLeft = math.Max(0, remaining-marginRight)
	case math.IsNaN(marginRight):
		marginRight = math.Max(0, remaining-marginLeft)
	}

	b.Content.Width = width
	b.Margin.Left, b.Margin.Right = marginLeft, marginRight
	return b
}

// clampWidth applies min-width and max-width to a content width. When both
// conflict, min-width wins.
func clampWidth(v style.Values, width, hStatic float64) float64 {
	return clampSize(v, width, hStatic, property.MinWidth, property.MaxWidth)
}

func clampHeight(v style.Values, height, vStatic float64) float64 {
	return clampSize(v, height, vStatic, property.MinHeight, property.MaxHeight)
}

func clampSize(v style.Values, size, static float64, minName, maxName string) float64 {
	lo, _ := v.Length(minName)
	hi, ok := v.Length(maxName)
	if !ok {
		hi = math.Inf(1)
	}
	if v.BoxSizing() == style.BorderBox {
		lo = math.Max(0, lo-static)
		hi = math.Max(0, hi-static)
	}
	return math.Max(lo, math.Min(size, hi))
}

// explicitHeight returns the content height set by the height property, or
// NaN when the height depends on the content.
func explicitHeight(v style.Values, b box.Box) float64 {
	h := autoLength(v, property.Height)
	if math.IsNaN(h) {
		return h
	}
	vStatic := b.Padding.Vertical() + b.Border.Vertical()
	if v.BoxSizing() == style.BorderBox {
		h = math.Max(0, h-vStatic)
	}
	return clampHeight(v, h, vStatic)
}

// layoutContents lays out n's children inside b, whose width is already
// fixed, and then resolves b's content height. fc is the formatting context
// n participates in; elements that establish their own ignore it.
func (e *Engine) layoutContents(n *dom.Node, b *box.Box, fc *flowContext) {
	v := style.Of(n.Computed())
	height := explicitHeight(v, *b)

	childCB := box.ContainingBlock{Width: b.Content.Width, Height: height}
	if math.IsNaN(height) {
		childCB = box.ContainingBlock{Width: b.Content.Width, HeightAuto: true}
	}

	own := establishesBFC(n, v) || fc == nil
	if own {
		fc = newFlowContext()
	}
	inset := box.Point{X: b.Border.Left + b.Padding.Left, Y: b.Border.Top + b.Padding.Top}
	contentHeight := e.flow(n, childCB, fc, inset)
	if own {
		contentHeight = math.Max(contentHeight, fc.floats.GetMaxExtentY())
	}

	if math.IsNaN(height) {
		height = clampHeight(v, contentHeight, b.Padding.Vertical()+b.Border.Vertical())
	}
	b.Content.Height = height
}

// flow places n's children in block flow and returns the content height
// they take. Positions are written relative to n's border box; inset is the
// distance from that origin to the content box.
func (e *Engine) flow(n *dom.Node, cb box.ContainingBlock, fc *flowContext, inset box.Point) float64 {
	children := n.Children()
	lc := NewLayoutContext(0)

	for i := 0; i < len(children); {
		c := children[i]
		v := style.Of(e.styles.Style(c, cb))

		if c.IsElement() {
			switch {
			case v.Display() == style.DisplayNone:
				e.hide(c, cb)
				i++
				continue
			case v.OutOfFlow():
				rec := recordOf(c)
				rec.kind = placedOutOfFlow
				rec.static = box.Point{Y: lc.CurrentY + lc.CalculateCollapsedMargin()}
				rec.staticRef = nil
				i++
				continue
			case v.Float() != style.FloatNone:
				e.layoutFloat(c, cb, fc, lc.CurrentY+lc.CalculateCollapsedMargin(), inset)
				lc.IsEmpty = false
				i++
				continue
			}
		}

		if isInlineLevel(c, v) {
			j := i + 1
			for j < len(children) && isInlineLevel(children[j], style.Of(e.styles.Style(children[j], cb))) {
				j++
			}
			run := children[i:j]
			i = j
			if blankRun(run) {
				for _, t := range run {
					e.placeEmpty(t)
				}
				continue
			}
			lc.CommitMargins()
			lc.CurrentY += e.layoutInline(n, run, cb, fc, lc.CurrentY, inset)
			lc.IsEmpty = false
			continue
		}

		e.layoutBlockChild(c, cb, fc, lc, inset)
		i++
	}

	lc.CommitMargins()
	return lc.CurrentY
}

// isInlineLevel reports whether a child joins an inline formatting context.
func isInlineLevel(c *dom.Node, v style.Values) bool {
	if c.IsText() {
		return true
	}
	if v.OutOfFlow() || v.Float() != style.FloatNone {
		return false
	}
	d := v.Display()
	return d == style.DisplayInline || d == style.DisplayInlineBlock
}

// blankRun reports whether a run holds nothing but collapsible white space.
func blankRun(run []*dom.Node) bool {
	for _, c := range run {
		if c.IsElement() {
			return false
		}
		if !style.Of(c.Computed()).WhiteSpace().CollapsesSpaces() {
			return false
		}
		for _, r := range c.Text() {
			if !isSpace(r) {
				return false
			}
		}
	}
	return true
}

// placeEmpty completes a node that produces no box.
func (e *Engine) placeEmpty(n *dom.Node) {
	e.setState(n, box.Measuring)
	n.SetBox(box.Box{})
	n.SetFragments(nil)
	recordOf(n).kind = placedInline
	e.finish(n)
}

// layoutBlockChild places an in-flow block-level child below the previous
// one, collapsing adjoining vertical margins.
func (e *Engine) layoutBlockChild(c *dom.Node, cb box.ContainingBlock, fc *flowContext, lc *LayoutContext, inset box.Point) {
	v := style.Of(c.Computed())
	rec := recordOf(c)

	lc.AddToMarginTotals(zeroIfNaN(autoLength(v, property.MarginTop)))
	top := lc.CurrentY + lc.CalculateCollapsedMargin()
	if clear := v.Clear(); clear != style.ClearNone {
		if d := fc.floats.CalculateClearance(fc.origin.Y+top, clear); d > 0 {
			top += d
		}
	}
	lc.CurrentY = top
	lc.ResetMargins()
	lc.IsEmpty = false

	if e.reusable(c, rec, cb, fc) {
		b := c.Box()
		rec.flowOffset = box.Point{X: inset.X + b.Margin.Left, Y: inset.Y + top}
		b.Offset = rec.flowOffset.Add(relativeShift(v))
		c.SetBox(b)
		lc.CurrentY += b.Size(box.BorderArea).Height
		lc.AddToMarginTotals(b.Margin.Bottom)
		return
	}

	b := e.resolveWidth(c, cb, fillWidth)
	rec.kind, rec.cb, rec.computed = placedBlock, cb, c.Computed()
	rec.flowOffset = box.Point{X: inset.X + b.Margin.Left, Y: inset.Y + top}
	b.Offset = rec.flowOffset.Add(relativeShift(v))
	e.setState(c, box.Positioned)

	floatsBefore := len(fc.floats.Floats)
	childOrigin := box.Point{
		X: b.Margin.Left + b.Border.Left + b.Padding.Left,
		Y: top + b.Border.Top + b.Padding.Top,
	}
	e.layoutContents(c, &b, fc.child(childOrigin))
	rec.floatFree = floatsBefore == 0 && len(fc.floats.Floats) == 0
	c.SetBox(b)
	e.finish(c)

	lc.CurrentY += b.Size(box.BorderArea).Height
	lc.AddToMarginTotals(b.Margin.Bottom)
}

// reusable reports whether a clean child can keep its box and only move.
func (e *Engine) reusable(c *dom.Node, rec *record, cb box.ContainingBlock, fc *flowContext) bool {
	return rec.kind == placedBlock &&
		c.State() == box.Done &&
		!c.LayoutDirty() && !c.DescendantDirty() &&
		rec.cb == cb &&
		rec.computed == c.Computed() &&
		rec.floatFree && fc.floats.Empty()
}

// layoutFloat sizes a float and moves it down until it fits beside the
// floats already placed. y is the local position the float would start at.
func (e *Engine) layoutFloat(c *dom.Node, cb box.ContainingBlock, fc *flowContext, y float64, inset box.Point) {
	v := style.Of(c.Computed())
	b := e.resolveWidth(c, cb, shrinkWidth)
	e.layoutContents(c, &b, nil)

	outer := b.Size(box.MarginArea)
	x := 0.0
	for {
		left, avail := fc.band(y, outer.Height, cb.Width)
		if outer.Width <= avail+epsilon {
			x = left
			if v.Float() == style.FloatRight {
				x = left + avail - outer.Width
			}
			break
		}
		next, ok := fc.floats.NextEdgeBelow(fc.origin.Y + y)
		if !ok {
			x = left
			if v.Float() == style.FloatRight {
				x = cb.Width - outer.Width
			}
			e.logger.Debug("Float wider than its container.", zap.String("element", c.Path()))
			break
		}
		y = next - fc.origin.Y
	}

	fc.floats.Floats = append(fc.floats.Floats, floatBox{
		rect: box.Rect{X: fc.origin.X + x, Y: fc.origin.Y + y, Width: outer.Width, Height: outer.Height},
		side: v.Float(),
	})

	rec := recordOf(c)
	rec.kind, rec.cb, rec.computed = placedFloat, cb, c.Computed()
	rec.flowOffset = box.Point{X: inset.X + x + b.Margin.Left, Y: inset.Y + y + b.Margin.Top}
	b.Offset = rec.flowOffset.Add(relativeShift(v))
	c.SetBox(b)
	e.finish(c)
}

// relativeShift returns the visual offset of a relatively positioned box.
// left wins over right and top over bottom.
func relativeShift(v style.Values) box.Point {
	if v.Position() != style.PositionRelative {
		return box.Point{}
	}
	var p box.Point
	if left, ok := v.Length(property.Left); ok {
		p.X = left
	} else if right, ok := v.Length(property.Right); ok {
		p.X = -right
	}
	if top, ok := v.Length(property.Top); ok {
		p.Y = top
	} else if bottom, ok := v.Length(property.Bottom); ok {
		p.Y = -bottom
	}
	return p
}
