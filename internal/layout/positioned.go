package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

// positionedAncestor returns the nearest ancestor of n with a position other
// than static. The root always qualifies.
func positionedAncestor(n *dom.Node) *dom.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Parent() == nil || style.Of(p.Computed()).Position() != style.PositionStatic {
			return p
		}
	}
	return nil
}

// originIn returns the border-box origin of n relative to the border-box
// origin of its ancestor anc. A nil anc measures against the viewport.
func originIn(n, anc *dom.Node) box.Point {
	var p box.Point
	for c := n; c != nil && c != anc; c = c.Parent() {
		p = p.Add(c.Box().Offset)
	}
	return p
}

// layoutOutOfFlow places the absolutely positioned descendants whose
// containing block is pcb. Fixed boxes wait for the root.
func (e *Engine) layoutOutOfFlow(pcb *dom.Node) {
	var walk func(n *dom.Node)
	walk = func(n *dom.Node) {
		for _, c := range n.Children() {
			if !c.IsElement() || c.Computed() == nil {
				continue
			}
			v := style.Of(c.Computed())
			if v.Display() == style.DisplayNone {
				continue
			}
			switch v.Position() {
			case style.PositionAbsolute:
				e.layoutAbsolute(c)
			case style.PositionStatic:
				walk(c)
			}
		}
	}
	walk(pcb)
}

// layoutFixed places every fixed box in the tree against the viewport.
func (e *Engine) layoutFixed(root *dom.Node) {
	var fixed []*dom.Node
	root.Walk(func(n *dom.Node) bool {
		if !n.IsElement() || n.Computed() == nil {
			return false
		}
		v := style.Of(n.Computed())
		if v.Display() == style.DisplayNone {
			return false
		}
		if n != root && v.Position() == style.PositionFixed {
			fixed = append(fixed, n)
		}
		return true
	})
	// Outer fixed boxes place their own fixed descendants, which are then
	// placed again here; the second placement is identical.
	for _, n := range fixed {
		e.layoutAbsolute(n)
	}
}

// layoutEscapingOutOfFlow places the out-of-flow descendants of scope whose
// containing block lies outside of it. It runs after scope was laid out on
// its own, since nothing above scope is revisited then.
func (e *Engine) layoutEscapingOutOfFlow(scope *dom.Node) {
	var walk func(n *dom.Node, contained bool)
	walk = func(n *dom.Node, contained bool) {
		for _, c := range n.Children() {
			if !c.IsElement() || c.Computed() == nil {
				continue
			}
			v := style.Of(c.Computed())
			if v.Display() == style.DisplayNone {
				continue
			}
			pos := v.Position()
			if pos == style.PositionFixed || (pos == style.PositionAbsolute && !contained) {
				e.layoutAbsolute(c)
			}
			walk(c, contained || pos != style.PositionStatic)
		}
	}
	walk(scope, style.Of(scope.Computed()).Position() != style.PositionStatic)
}

// layoutAbsolute sizes and places an absolutely positioned or fixed element
// inside the padding box of its containing block. The box's offset is still
// written relative to its DOM parent.
func (e *Engine) layoutAbsolute(n *dom.Node) {
	var (
		anc       *dom.Node
		cbSize    box.Size
		cbOrigin  box.Point
		hasParent = n.Parent() != nil
	)
	if style.Of(n.Computed()).Position() == style.PositionFixed || !hasParent {
		cbSize = e.styles.Viewport()
	} else {
		anc = positionedAncestor(n)
		ab := anc.Box()
		cbSize = ab.Size(box.PaddingArea)
		cbOrigin = box.Point{X: ab.Border.Left, Y: ab.Border.Top}
	}
	cb := box.ContainingBlock{Width: cbSize.Width, Height: cbSize.Height}

	cv := e.styles.Style(n, cb)
	v := style.Of(cv)
	rec := recordOf(n)
	rec.kind, rec.cb, rec.computed = placedOutOfFlow, cb, cv
	e.setState(n, box.Measuring)

	// The static position, in the containing block's padding coordinates.
	ref := rec.staticRef
	if ref == nil || ref.Root() != n.Root() {
		ref = n.Parent()
	}
	var static box.Point
	if ref != nil {
		rb := ref.Box()
		static = originIn(ref, anc).
			Add(box.Point{X: rb.Border.Left + rb.Padding.Left, Y: rb.Border.Top + rb.Padding.Top}).
			Add(rec.static).
			Sub(cbOrigin)
	}

	b := box.Box{Padding: v.Padding(), Border: v.Border()}
	hStatic := b.Padding.Horizontal() + b.Border.Horizontal()
	vStatic := b.Padding.Vertical() + b.Border.Vertical()

	left := autoLength(v, property.Left)
	right := autoLength(v, property.Right)
	width := autoLength(v, property.Width)
	top := autoLength(v, property.Top)
	bottom := autoLength(v, property.Bottom)
	height := autoLength(v, property.Height)
	if v.BoxSizing() == style.BorderBox {
		if !math.IsNaN(width) {
			width = math.Max(0, width-hStatic)
		}
		if !math.IsNaN(height) {
			height = math.Max(0, height-vStatic)
		}
	}

	shrink := func(avail float64) float64 {
		minContent, maxContent := e.intrinsicContent(n, cb)
		return math.Min(math.Max(minContent, avail), maxContent)
	}
	h := solveHorizontal(cb.Width, hStatic, static.X, left, width, right,
		autoLength(v, property.MarginLeft), autoLength(v, property.MarginRight), shrink)
	b.Content.Width = clampWidth(v, h.size, hStatic)
	b.Margin.Left, b.Margin.Right = h.marginStart, h.marginEnd

	e.setState(n, box.Positioned)
	e.layoutContents(n, &b, nil)
	if math.IsNaN(height) && !math.IsNaN(top) && !math.IsNaN(bottom) {
		stretched := cb.Height - top - bottom - vStatic -
			zeroIfNaN(autoLength(v, property.MarginTop)) - zeroIfNaN(autoLength(v, property.MarginBottom))
		b.Content.Height = clampHeight(v, math.Max(0, stretched), vStatic)
	}

	vs := solveVertical(cb.Height, vStatic, static.Y, top, b.Content.Height, bottom,
		autoLength(v, property.MarginTop), autoLength(v, property.MarginBottom))
	b.Margin.Top, b.Margin.Bottom = vs.marginStart, vs.marginEnd

	pos := cbOrigin.Add(box.Point{X: h.start + b.Margin.Left, Y: vs.start + b.Margin.Top})
	var parentOrigin box.Point
	if hasParent {
		parentOrigin = originIn(n.Parent(), anc)
	}
	b.Offset = pos.Sub(parentOrigin)
	rec.flowOffset = b.Offset
	n.SetBox(b)
	e.finish(n)

	e.logger.Debug("Placed out-of-flow box.",
		zap.String("element", n.Path()),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
}

// axis is a solved set of positioned constraints along one axis.
type axis struct {
	start, size            float64
	marginStart, marginEnd float64
}

// solveHorizontal resolves left, width, right and the horizontal margins of
// an absolutely positioned box. NaN stands for auto. When width is auto and
// not pinned by both insets, shrink sizes it from the available width.
func solveHorizontal(cbWidth, hStatic, staticX, left, width, right, marginLeft, marginRight float64, shrink func(float64) float64) axis {
	avail := cbWidth - zeroIfNaN(left) - zeroIfNaN(right) - zeroIfNaN(marginLeft) - zeroIfNaN(marginRight) - hStatic
	avail = math.Max(0, avail)

	if math.IsNaN(width) && (math.IsNaN(left) || math.IsNaN(right)) {
		width = shrink(avail)
	}
	if math.IsNaN(left) && math.IsNaN(right) {
		left = staticX
	}

	if !math.IsNaN(left) && !math.IsNaN(right) && !math.IsNaN(width) {
		remaining := cbWidth - left - right - width - hStatic
		switch {
		case math.IsNaN(marginLeft) && math.IsNaN(marginRight):
			if remaining < 0 {
				marginLeft, marginRight = 0, remaining
			} else {
				marginLeft, marginRight = remaining/2, remaining/2
			}
		case math.IsNaN(marginLeft):
			marginLeft = remaining - marginRight
		case math.IsNaN(marginRight):
			marginRight = remaining - marginLeft
		}
		// Over-constrained: right is ignored.
	} else {
		marginLeft, marginRight = zeroIfNaN(marginLeft), zeroIfNaN(marginRight)
		switch {
		case math.IsNaN(width):
			width = math.Max(0, cbWidth-left-right-hStatic-marginLeft-marginRight)
		case math.IsNaN(left):
			left = cbWidth - right - width - hStatic - marginLeft - marginRight
		}
	}
	return axis{start: left, size: width, marginStart: zeroIfNaN(marginLeft), marginEnd: zeroIfNaN(marginRight)}
}

// solveVertical resolves top and the vertical margins once the content
// height is known.
func solveVertical(cbHeight, vStatic, staticY, top, height, bottom, marginTop, marginBottom float64) axis {
	if math.IsNaN(top) && math.IsNaN(bottom) {
		top = staticY
	}
	if !math.IsNaN(top) && !math.IsNaN(bottom) {
		remaining := cbHeight - top - bottom - height - vStatic
		switch {
		case math.IsNaN(marginTop) && math.IsNaN(marginBottom):
			marginTop, marginBottom = remaining/2, remaining/2
		case math.IsNaN(marginTop):
			marginTop = remaining - marginBottom
		case math.IsNaN(marginBottom):
			marginBottom = remaining - marginTop
		}
	} else {
		marginTop, marginBottom = zeroIfNaN(marginTop), zeroIfNaN(marginBottom)
		if math.IsNaN(top) {
			top = cbHeight - bottom - height - vStatic - marginTop - marginBottom
		}
	}
	return axis{start: top, size: height, marginStart: zeroIfNaN(marginTop), marginEnd: zeroIfNaN(marginBottom)}
}
