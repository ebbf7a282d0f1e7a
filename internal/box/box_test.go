package box

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBoxAreas(t *testing.T) {
	b := Box{
		Offset:  Point{X: 5, Y: 7},
		Content: Size{Width: 100, Height: 50},
		Padding: Edges{Top: 1, Right: 2, Bottom: 3, Left: 4},
		Border:  Edges{Top: 1, Right: 1, Bottom: 1, Left: 1},
		Margin:  Edges{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}

	tests := []struct {
		area Area
		want Rect
	}{
		{ContentArea, Rect{X: 5, Y: 2, Width: 100, Height: 50}},
		{PaddingArea, Rect{X: 1, Y: 1, Width: 106, Height: 54}},
		{BorderArea, Rect{X: 0, Y: 0, Width: 108, Height: 56}},
		{MarginArea, Rect{X: -10, Y: -10, Width: 128, Height: 76}},
	}
	for _, tt := range tests {
		t.Run(tt.area.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, b.Rect(tt.area)); diff != "" {
				t.Errorf("Rect(%s) mismatch (-want +got):\n%s", tt.area, diff)
			}
		})
	}

	t.Run("Nested sizes never shrink outward", func(t *testing.T) {
		areas := []Area{ContentArea, PaddingArea, BorderArea, MarginArea}
		for i := 1; i < len(areas); i++ {
			inner, outer := b.Size(areas[i-1]), b.Size(areas[i])
			assert.GreaterOrEqual(t, outer.Width, inner.Width)
			assert.GreaterOrEqual(t, outer.Height, inner.Height)
		}
	})

	t.Run("Outer edges accumulate", func(t *testing.T) {
		assert.Equal(t, Edges{Top: 12, Right: 13, Bottom: 14, Left: 15}, b.Outer(MarginArea))
		assert.Equal(t, 8.0, b.Outer(BorderArea).Horizontal())
		assert.Equal(t, Edges{}, b.Outer(ContentArea))
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unmeasured", Unmeasured.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "unknown", State(42).String())
}
