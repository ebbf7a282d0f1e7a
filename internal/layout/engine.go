// Package layout turns styled element trees into boxes. Block-level children
// stack vertically in a block formatting context; inline-level children are
// broken into line boxes. Floats and absolutely positioned boxes are placed
// without disturbing their in-flow siblings.
package layout

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/style"
)

// Engine lays out one document at a time. It is not safe for concurrent use.
type Engine struct {
	styles *style.Engine
	fonts  fonts.Provider
	logger *zap.Logger
}

func NewEngine(styles *style.Engine, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		styles: styles,
		fonts:  styles.Fonts(),
		logger: logger.Named("layout"),
	}
}

// recordKind says how an element was last placed by its parent.
type recordKind uint8

const (
	placedBlock recordKind = iota
	placedInline
	placedAtomic
	placedFloat
	placedOutOfFlow
	placedRoot
	placedHidden
)

// record is the per-element state kept in dom.Node.LayoutCache.
type record struct {
	kind     recordKind
	cb       box.ContainingBlock
	computed *property.ComputedValues
	// flowOffset is the offset before relative positioning was applied.
	flowOffset box.Point
	// static is where an out-of-flow box would have been placed, in the
	// content coordinates of staticRef, or of the parent when that is nil.
	static    box.Point
	staticRef *dom.Node
	// floatFree is set when no float of an enclosing formatting context
	// touched the element's layout.
	floatFree bool
}

func recordOf(n *dom.Node) *record {
	if r, ok := n.LayoutCache.(*record); ok {
		return r
	}
	r := &record{}
	n.LayoutCache = r
	return r
}

func (e *Engine) viewportBlock() box.ContainingBlock {
	vp := e.styles.Viewport()
	return box.ContainingBlock{Width: vp.Width, Height: vp.Height}
}

// Layout runs a complete pass over the tree rooted at root, using the
// viewport as the initial containing block. Clean subtrees whose containing
// block did not change keep their boxes.
func (e *Engine) Layout(root *dom.Node) {
	cb := e.viewportBlock()
	cv := e.styles.Style(root, cb)
	rec := recordOf(root)
	rec.kind, rec.cb, rec.computed = placedRoot, cb, cv

	if style.Of(cv).Display() == style.DisplayNone {
		e.hide(root, cb)
		return
	}

	b := e.resolveWidth(root, cb, fillWidth)
	b.Offset = box.Point{X: b.Margin.Left, Y: b.Margin.Top}
	rec.flowOffset = b.Offset
	e.setState(root, box.Positioned)
	e.layoutContents(root, &b, nil)
	root.SetBox(b)
	e.finish(root)
	e.layoutFixed(root)
	settle(root)
}

// Update brings the tree up to date after mutations. Only subtrees marked
// dirty are laid out again; see Relayout for how far a change spreads.
func (e *Engine) Update(root *dom.Node) {
	rec, ok := root.LayoutCache.(*record)
	if !ok || root.LayoutDirty() || root.State() != box.Done || rec.cb != e.viewportBlock() {
		e.Layout(root)
		return
	}
	if !root.DescendantDirty() {
		return
	}

	var dirty []*dom.Node
	var collect func(n *dom.Node)
	collect = func(n *dom.Node) {
		for _, c := range n.Children() {
			switch {
			case c.LayoutDirty():
				dirty = append(dirty, c)
			case c.DescendantDirty():
				collect(c)
			}
		}
	}
	collect(root)

	for _, n := range dirty {
		// An earlier relayout may have covered this node already.
		if n.LayoutDirty() && n.Root() == root {
			e.Relayout(n)
		}
	}
	settle(root)
}

// Relayout lays out n again inside the containing block it was last given.
// When n's resulting geometry differs from its previous box, the change is
// pushed up to the parent, and so on; the walk stops at the first element
// whose geometry is unchanged, so siblings of that element keep their boxes.
func (e *Engine) Relayout(n *dom.Node) {
	for {
		p := n.Parent()
		if p == nil {
			e.Layout(n)
			return
		}
		rec, ok := n.LayoutCache.(*record)
		if !ok || n.IsText() || p.Computed() == nil {
			n = p
			continue
		}

		switch rec.kind {
		case placedOutOfFlow:
			cv := e.styles.Style(n, rec.cb)
			v := style.Of(cv)
			if v.Display() == style.DisplayNone {
				e.hide(n, rec.cb)
				return
			}
			if v.OutOfFlow() {
				e.layoutAbsolute(n)
				e.layoutEscapingOutOfFlow(n)
				n.ClearLayoutDirty()
				return
			}
		case placedBlock:
			if e.relayoutBlock(n, rec) {
				return
			}
		}
		n = p
	}
}

// relayoutBlock lays out an in-flow block in place. It reports false when the
// parent has to be laid out instead.
func (e *Engine) relayoutBlock(n *dom.Node, rec *record) bool {
	if !rec.floatFree {
		return false
	}
	old := n.Box()
	cv := e.styles.Style(n, rec.cb)
	v := style.Of(cv)
	if v.Display() != style.DisplayBlock || v.Float() != style.FloatNone || v.OutOfFlow() {
		return false
	}

	b := e.resolveWidth(n, rec.cb, fillWidth)
	fc := newFlowContext()
	e.setState(n, box.Positioned)
	e.layoutContents(n, &b, fc)
	if !fc.floats.Empty() || !sameGeometry(old, b) {
		return false
	}

	b.Offset = rec.flowOffset.Add(relativeShift(v))
	n.SetBox(b)
	rec.computed = cv
	e.finish(n)
	e.layoutEscapingOutOfFlow(n)
	settle(n)
	e.logger.Debug("Scoped relayout.", zap.String("element", n.Path()))
	return true
}

func sameGeometry(a, b box.Box) bool {
	return a.Content == b.Content && a.Padding == b.Padding && a.Border == b.Border && a.Margin == b.Margin
}

// setState advances n through the layout state machine. Measuring starts a
// new pass from any state; every other transition must move forward.
func (e *Engine) setState(n *dom.Node, s box.State) {
	if s != box.Measuring && s < n.State() {
		e.logger.Debug("Layout state moved backwards.",
			zap.String("element", n.Path()),
			zap.Stringer("from", n.State()),
			zap.Stringer("to", s))
	}
	n.SetState(s)
}

// finish marks n complete and places the out-of-flow descendants it is the
// containing block for.
func (e *Engine) finish(n *dom.Node) {
	if n.State() < box.Positioned {
		e.setState(n, box.Positioned)
	}
	e.setState(n, box.Done)
	if n.IsElement() && (n.Parent() == nil || style.Of(n.Computed()).Position() != style.PositionStatic) {
		e.layoutOutOfFlow(n)
	}
	n.ClearLayoutDirty()
}

// hide gives n and its subtree empty boxes. Computed values are still
// resolved so every element has a complete snapshot.
func (e *Engine) hide(n *dom.Node, cb box.ContainingBlock) {
	e.styles.StyleSubtree(n, cb)
	n.Walk(func(d *dom.Node) bool {
		d.SetBox(box.Box{})
		d.SetFragments(nil)
		recordOf(d).kind = placedHidden
		d.SetState(box.Done)
		d.ClearLayoutDirty()
		return true
	})
}

// settle clears descendant flags left behind by scoped relayouts.
func settle(n *dom.Node) {
	if !n.DescendantDirty() {
		return
	}
	for _, c := range n.Children() {
		settle(c)
	}
	if !n.LayoutDirty() {
		n.ClearLayoutDirty()
	}
}
