// Package render publishes layout results to a host renderer. It never draws;
// it walks the laid-out tree in paint order and hands each node's absolute
// geometry and drawing values to a Bridge.
package render

import (
	"sort"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

// Bridge receives published items. Publish is called synchronously, parents
// before children.
type Bridge interface {
	Publish(Item)
}

// BridgeFunc adapts a function to the Bridge interface.
type BridgeFunc func(Item)

func (f BridgeFunc) Publish(it Item) { f(it) }

// Item is one element or text node ready to draw.
type Item struct {
	Node  *dom.Node
	Depth int
	// Rect is the border box in viewport coordinates.
	Rect      box.Rect
	Box       box.Box
	Draw      DrawValues
	Fragments []box.Fragment
}

// DrawValues is the subset of computed values a renderer needs.
type DrawValues struct {
	Color          property.Color
	Background     property.Color
	BorderColors   [4]property.Color
	Font           fonts.Face
	Opacity        float64
	Visible        bool
	ZIndex         int
	ZIndexSet      bool
	TextDecoration string
	Cursor         string
}

// DrawValuesOf extracts drawing values from a computed snapshot.
func DrawValuesOf(cv *property.ComputedValues) DrawValues {
	v := style.Of(cv)
	d := DrawValues{Opacity: 1, Visible: v.Visible()}
	if cv == nil {
		return d
	}
	d.Color = cv.Color(property.TextColor)
	d.Background = cv.Color(property.BackgroundColor)
	for i, name := range property.BorderColorEdges {
		d.BorderColors[i] = cv.Color(name)
	}
	d.Font = v.Face()
	d.Opacity = cv.Number(property.Opacity)
	d.ZIndex, d.ZIndexSet = v.ZIndex()
	d.TextDecoration = cv.Keyword(property.TextDecoration)
	if c := cv.Value(property.Cursor); c.Kind == property.KindString {
		d.Cursor = c.Str
	} else {
		d.Cursor = c.Keyword
	}
	return d
}

// Walk publishes root and its descendants in paint order: document order,
// with siblings stably sorted by z-index. Elements with display none are
// skipped along with their subtrees. It returns the number of items published.
func Walk(root *dom.Node, bridge Bridge) int {
	count := 0
	var visit func(n *dom.Node, parent box.Point, depth int)
	visit = func(n *dom.Node, parent box.Point, depth int) {
		cv := n.Computed()
		if cv == nil || (n.IsElement() && style.Of(cv).Display() == style.DisplayNone) {
			return
		}
		b := n.Box()
		origin := parent.Add(b.Offset)
		bridge.Publish(Item{
			Node:      n,
			Depth:     depth,
			Rect:      b.Rect(box.BorderArea).Translate(origin),
			Box:       b,
			Draw:      DrawValuesOf(cv),
			Fragments: n.Fragments(),
		})
		count++
		for _, c := range paintOrder(n.Children()) {
			visit(c, origin, depth+1)
		}
	}
	visit(root, box.Point{}, 0)
	return count
}

func paintOrder(children []*dom.Node) []*dom.Node {
	out := make([]*dom.Node, len(children))
	copy(out, children)
	z := func(n *dom.Node) int {
		if !n.IsElement() {
			return 0
		}
		i, _ := style.Of(n.Computed()).ZIndex()
		return i
	}
	sort.SliceStable(out, func(i, j int) bool { return z(out[i]) < z(out[j]) })
	return out
}
