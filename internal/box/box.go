// Package box holds the geometry produced by layout: the nested
// margin/border/padding/content decomposition of an element.
package box

import "fmt"

// Edges holds per-side thicknesses.
type Edges struct {
	Top, Right, Bottom, Left float64
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// Add sums two edge sets side by side.
func (e Edges) Add(o Edges) Edges {
	return Edges{Top: e.Top + o.Top, Right: e.Right + o.Right, Bottom: e.Bottom + o.Bottom, Left: e.Left + o.Left}
}

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// ExpandedBy returns a new rectangle expanded by the edge sizes.
func (r Rect) ExpandedBy(e Edges) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// Translate moves the rectangle.
func (r Rect) Translate(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size    { return Size{Width: r.Width, Height: r.Height} }

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Area selects one of the four nested rectangles of a Box.
type Area uint8

const (
	MarginArea Area = iota
	BorderArea
	PaddingArea
	ContentArea
)

func (a Area) String() string {
	switch a {
	case MarginArea:
		return "margin"
	case BorderArea:
		return "border"
	case PaddingArea:
		return "padding"
	case ContentArea:
		return "content"
	}
	return "unknown"
}

// Box is the layout result for one element. Offset is the position of the
// border-box origin relative to the parent's border-box origin.
type Box struct {
	Offset  Point
	Content Size
	Padding Edges
	Border  Edges
	Margin  Edges
}

// Rect returns the rectangle of the given area relative to this box's own border-box origin.
func (b Box) Rect(area Area) Rect {
	content := Rect{
		X:      b.Border.Left + b.Padding.Left,
		Y:      b.Border.Top + b.Padding.Top,
		Width:  b.Content.Width,
		Height: b.Content.Height,
	}
	switch area {
	case ContentArea:
		return content
	case PaddingArea:
		return content.ExpandedBy(b.Padding)
	case BorderArea:
		return content.ExpandedBy(b.Padding).ExpandedBy(b.Border)
	default:
		return content.ExpandedBy(b.Padding).ExpandedBy(b.Border).ExpandedBy(b.Margin)
	}
}

// Size returns the dimensions of the given area.
func (b Box) Size(area Area) Size { return b.Rect(area).Size() }

// Outer returns the thickness between the given area's edge and the content edge.
func (b Box) Outer(area Area) Edges {
	switch area {
	case ContentArea:
		return Edges{}
	case PaddingArea:
		return b.Padding
	case BorderArea:
		return b.Padding.Add(b.Border)
	default:
		return b.Padding.Add(b.Border).Add(b.Margin)
	}
}

// State tracks an element's progress through a layout pass.
type State uint8

const (
	Unmeasured State = iota
	Measuring
	Positioned
	Done
)

func (s State) String() string {
	switch s {
	case Unmeasured:
		return "unmeasured"
	case Measuring:
		return "measuring"
	case Positioned:
		return "positioned"
	case Done:
		return "done"
	}
	return "unknown"
}

// ContainingBlock is the reference rectangle for percentage and auto resolution.
// Width is always definite; Height may be auto until the container's height is known.
type ContainingBlock struct {
	Width      float64
	Height     float64
	HeightAuto bool
}

// Fragment is a run of text placed on a line, positioned relative to the
// border-box origin of the element that owns the text.
type Fragment struct {
	Text     string
	Offset   Point
	Width    float64
	Height   float64
	Baseline float64
}
