package layout

import (
	"math"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

// intrinsicContent returns the min-content and max-content widths of n's
// content box: the narrowest it can be without overflow, and the width it
// takes when nothing wraps.
func (e *Engine) intrinsicContent(n *dom.Node, cb box.ContainingBlock) (minW, maxW float64) {
	children := n.Children()
	childCB := box.ContainingBlock{Width: cb.Width, HeightAuto: true}
	participates := func(c *dom.Node) bool {
		v := style.Of(e.styles.Style(c, childCB))
		return isInlineLevel(c, v) || v.Float() != style.FloatNone && v.Display() != style.DisplayNone
	}

	for i := 0; i < len(children); {
		c := children[i]
		v := style.Of(e.styles.Style(c, childCB))
		if c.IsElement() && (v.Display() == style.DisplayNone || v.OutOfFlow()) {
			i++
			continue
		}
		if participates(c) {
			j := i + 1
			for j < len(children) && participates(children[j]) {
				j++
			}
			col := newCollector(e, n, childCB, true)
			col.collect(children[i:j], 0)
			lo, hi := col.intrinsic()
			minW, maxW = math.Max(minW, lo), math.Max(maxW, hi)
			i = j
			continue
		}
		lo, hi := e.intrinsicOuter(c, childCB)
		minW, maxW = math.Max(minW, lo), math.Max(maxW, hi)
		i++
	}
	return minW, maxW
}

// intrinsicOuter is intrinsicContent for a child, widened by its padding,
// border and margins. An explicit width fixes both results.
func (e *Engine) intrinsicOuter(n *dom.Node, cb box.ContainingBlock) (minW, maxW float64) {
	v := style.Of(e.styles.Style(n, cb))
	edges := v.Padding().Horizontal() + v.Border().Horizontal()
	outer := edges + v.Margin().Horizontal()

	if w, ok := v.Length(property.Width); ok {
		if v.BoxSizing() == style.BorderBox {
			w = math.Max(0, w-edges)
		}
		w = clampWidth(v, w, edges)
		return w + outer, w + outer
	}
	lo, hi := e.intrinsicContent(n, cb)
	return clampWidth(v, lo, edges) + outer, clampWidth(v, hi, edges) + outer
}
