package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainClamp(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
		in     float64
		want   float64
	}{
		{"Non-negative keeps positive", NonNegative, 4, 4},
		{"Non-negative clamps negative", NonNegative, -4, 0},
		{"Unit interval clamps above", UnitInterval, 1.5, 1},
		{"Unit interval clamps below", UnitInterval, -0.5, 0},
		{"Unbounded passes through", Domain{}, -12, -12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.domain.Clamp(tt.in))
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"1px", "rgb(1, 2, 3)"}, Fields("  1px   rgb(1, 2, 3) "))
	assert.Equal(t, []string{`"a b"`, "c"}, Fields(`"a b" c`))
	assert.Empty(t, Fields("   "))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "12.5px", Px(12.5).String())
	assert.Equal(t, "50%", Percent(50).String())
	assert.Equal(t, "auto", Keyword("auto").String())
	assert.Equal(t, "#ff0000", ColorValue(Color{255, 0, 0, 255}).String())
	assert.Equal(t, "#00000000", ColorValue(Transparent).String())
	assert.Equal(t, `"Open Sans", serif`, List(String("Open Sans"), String("serif")).String())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#abc", Color{0xaa, 0xbb, 0xcc, 255}, true},
		{"#AABBCC", Color{0xaa, 0xbb, 0xcc, 255}, true},
		{"#11223344", Color{0x11, 0x22, 0x33, 0x44}, true},
		{"#12", Color{}, false},
		{"#ggg", Color{}, false},
		{"rgb(100%, 0%, 0%)", Color{255, 0, 0, 255}, true},
		{"rgb(1, 2)", Color{}, false},
		{"rgb(a, b, c)", Color{}, false},
		{"rgba(0 0 0 / 0)", Color{0, 0, 0, 0}, true},
		{"Transparent", Transparent, true},
		{"notacolor", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
