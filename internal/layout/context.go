package layout

import (
	"math"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/style"
)

// LayoutContext tracks the vertical cursor of a block flow and the adjoining
// margins that have not been committed yet.
type LayoutContext struct {
	CurrentY          float64
	MaxNegativeMargin float64
	MaxPositiveMargin float64
	IsEmpty           bool
}

func NewLayoutContext(startY float64) *LayoutContext {
	return &LayoutContext{
		CurrentY: startY,
		IsEmpty:  true,
	}
}

func (lc *LayoutContext) AddToMarginTotals(margin float64) {
	if margin > 0 {
		lc.MaxPositiveMargin = math.Max(lc.MaxPositiveMargin, margin)
	} else if margin < lc.MaxNegativeMargin {
		lc.MaxNegativeMargin = margin
	}
}

// CalculateCollapsedMargin is the largest positive margin plus the most
// negative one.
func (lc *LayoutContext) CalculateCollapsedMargin() float64 {
	return lc.MaxPositiveMargin + lc.MaxNegativeMargin
}

func (lc *LayoutContext) ResetMargins() {
	lc.MaxNegativeMargin = 0
	lc.MaxPositiveMargin = 0
}

// CommitMargins moves the cursor past the pending margins.
func (lc *LayoutContext) CommitMargins() {
	lc.CurrentY += lc.CalculateCollapsedMargin()
	lc.ResetMargins()
}

// floatBox is a placed float's margin box in the coordinates of the block
// formatting context root's content box.
type floatBox struct {
	rect box.Rect
	side style.FloatType
}

// FloatList holds the floats of one block formatting context.
type FloatList struct {
	Floats []floatBox
}

func NewFloatList() *FloatList {
	return &FloatList{}
}

func (fl *FloatList) Empty() bool { return fl == nil || len(fl.Floats) == 0 }

// CalculateClearance returns how far currentY must move down to clear the
// floats named by clearType.
func (fl *FloatList) CalculateClearance(currentY float64, clearType style.ClearType) float64 {
	if fl == nil {
		return 0
	}
	maxY := 0.0
	hasClear := false

	for _, f := range fl.Floats {
		applies := (clearType == style.ClearLeft && f.side == style.FloatLeft) ||
			(clearType == style.ClearRight && f.side == style.FloatRight) ||
			(clearType == style.ClearBoth)

		if applies {
			bottomEdge := f.rect.Y + f.rect.Height
			if bottomEdge > maxY {
				maxY = bottomEdge
				hasClear = true
			}
		}
	}

	if hasClear && maxY > currentY {
		return maxY - currentY
	}
	return 0
}

// GetIndentationAtY returns how much of the band [y, y+height) is taken by
// floats on each side of the container.
func (fl *FloatList) GetIndentationAtY(y, height, containerX, containerWidth float64) (leftIndent, rightIndent float64) {
	if fl == nil {
		return 0, 0
	}
	leftEdge := containerX
	rightEdge := containerX + containerWidth
	if height <= 0 {
		height = 1e-6
	}

	for _, f := range fl.Floats {
		mb := f.rect
		if y+height > mb.Y && y < mb.Y+mb.Height {
			if f.side == style.FloatLeft {
				if mb.X+mb.Width > leftEdge {
					leftEdge = mb.X + mb.Width
				}
			} else if mb.X < rightEdge {
				rightEdge = mb.X
			}
		}
	}
	return math.Max(0, leftEdge-containerX), math.Max(0, (containerX+containerWidth)-rightEdge)
}

// NextEdgeBelow returns the nearest float bottom edge strictly below y, or
// false when no float ends below y.
func (fl *FloatList) NextEdgeBelow(y float64) (float64, bool) {
	if fl == nil {
		return 0, false
	}
	best, found := math.Inf(1), false
	for _, f := range fl.Floats {
		if bottom := f.rect.Y + f.rect.Height; bottom > y && bottom < best {
			best, found = bottom, true
		}
	}
	return best, found
}

func (fl *FloatList) GetMaxExtentY() float64 {
	if fl == nil {
		return 0
	}
	maxY := 0.0
	for _, f := range fl.Floats {
		if extentY := f.rect.Y + f.rect.Height; extentY > maxY {
			maxY = extentY
		}
	}
	return maxY
}

// flowContext locates a container inside its block formatting context.
type flowContext struct {
	floats *FloatList
	// origin is the container's content origin in the coordinates of the
	// formatting context root's content box.
	origin box.Point
}

func newFlowContext() *flowContext {
	return &flowContext{floats: NewFloatList()}
}

// child returns the context for a container whose content origin sits at
// offset within this one.
func (fc *flowContext) child(offset box.Point) *flowContext {
	return &flowContext{floats: fc.floats, origin: fc.origin.Add(offset)}
}

// band returns the horizontal span free of floats at local y, in local
// coordinates.
func (fc *flowContext) band(y, height, width float64) (x, avail float64) {
	left, right := fc.floats.GetIndentationAtY(fc.origin.Y+y, height, fc.origin.X, width)
	return left, math.Max(0, width-left-right)
}
