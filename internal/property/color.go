package property

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

// String renders the color as #rrggbbaa, or #rrggbb when fully opaque.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

var namedColors = map[string]Color{
	"black":       Black,
	"white":       White,
	"transparent": Transparent,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"navy":        {0, 0, 128, 255},
	"yellow":      {255, 255, 0, 255},
	"aqua":        {0, 255, 255, 255},
	"cyan":        {0, 255, 255, 255},
	"fuchsia":     {255, 0, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"maroon":      {128, 0, 0, 255},
	"olive":       {128, 128, 0, 255},
	"purple":      {128, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
}

// ParseColor accepts named colors, #rgb, #rgba, #rrggbb, #rrggbbaa, rgb() and rgba().
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(strings.ToLower(value))

	if color, ok := namedColors[value]; ok {
		return color, true
	}
	if strings.HasPrefix(value, "#") {
		return parseHexColor(value[1:])
	}
	if strings.HasPrefix(value, "rgb(") || strings.HasPrefix(value, "rgba(") {
		return parseRGBColor(value)
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexDigit(hex[i]); !ok {
			return Color{}, false
		}
	}
	d := func(i int) uint8 {
		v, _ := hexDigit(hex[i])
		return v
	}

	c := Color{A: 255}
	switch len(hex) {
	case 3, 4:
		c.R, c.G, c.B = d(0)*17, d(1)*17, d(2)*17
		if len(hex) == 4 {
			c.A = d(3) * 17
		}
	case 6, 8:
		c.R, c.G, c.B = d(0)<<4|d(1), d(2)<<4|d(3), d(4)<<4|d(5)
		if len(hex) == 8 {
			c.A = d(6)<<4 | d(7)
		}
	default:
		return Color{}, false
	}
	return c, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func parseRGBColor(value string) (Color, bool) {
	open := strings.IndexByte(value, '(')
	if open < 0 || !strings.HasSuffix(value, ")") {
		return Color{}, false
	}
	parts := strings.FieldsFunc(value[open+1:len(value)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) < 3 || len(parts) > 4 {
		return Color{}, false
	}

	var c Color
	var ok bool
	if c.R, ok = parseColorComponent(parts[0], false); !ok {
		return Color{}, false
	}
	if c.G, ok = parseColorComponent(parts[1], false); !ok {
		return Color{}, false
	}
	if c.B, ok = parseColorComponent(parts[2], false); !ok {
		return Color{}, false
	}
	c.A = 255
	if len(parts) == 4 {
		if c.A, ok = parseColorComponent(parts[3], true); !ok {
			return Color{}, false
		}
	}
	return c, true
}

func parseColorComponent(value string, isAlpha bool) (uint8, bool) {
	if strings.HasSuffix(value, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0, false
		}
		return uint8(clamp(percent/100.0*255.0+0.5, 0, 255)), true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if isAlpha {
		f *= 255.0
	}
	return uint8(clamp(f+0.5, 0, 255)), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
