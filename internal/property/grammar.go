package property

import (
	"fmt"
	"math"
	"strings"
)

// Variant is a bit set of the value shapes a grammar accepts.
type Variant uint16

const (
	AcceptKeyword Variant = 1 << iota
	AcceptLength
	AcceptPercent
	AcceptNumber
	AcceptColor
	AcceptString
	AcceptList
)

// Domain bounds the numeric values a property can hold once computed.
// Values outside the domain are clamped, never rejected.
type Domain struct {
	Min, Max       float64
	HasMin, HasMax bool
}

// NonNegative is the domain of padding, border widths and font sizes.
var NonNegative = Domain{Min: 0, HasMin: true}

// UnitInterval is the domain of opacity.
var UnitInterval = Domain{Min: 0, Max: 1, HasMin: true, HasMax: true}

// Clamp forces n into the domain.
func (d Domain) Clamp(n float64) float64 {
	if d.HasMin && n < d.Min {
		n = d.Min
	}
	if d.HasMax && n > d.Max {
		n = d.Max
	}
	return n
}

// Grammar is a tagged parser description resolved once at registration.
type Grammar struct {
	Accept   Variant
	Keywords []string
	// Aliases maps keywords onto concrete values at parse time (e.g. "thin" -> 1px).
	Aliases map[string]Value
	Domain  Domain
}

// Keywords builds a grammar that only accepts the given keywords.
func Keywords(kw ...string) Grammar {
	return Grammar{Accept: AcceptKeyword, Keywords: kw}
}

func (g Grammar) accepts(v Variant) bool { return g.Accept&v != 0 }

func (g Grammar) hasKeyword(k string) bool {
	for _, kw := range g.Keywords {
		if kw == k {
			return true
		}
	}
	return false
}

// Parse converts raw declaration text into a Value, rejecting anything outside the grammar.
func (g Grammar) Parse(raw string) (Value, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Value{}, fmt.Errorf("empty value")
	}
	if g.accepts(AcceptList) {
		return g.parseList(text)
	}
	return g.parseSingle(text)
}

func (g Grammar) parseSingle(text string) (Value, error) {
	lower := strings.ToLower(text)

	if g.accepts(AcceptKeyword) && g.hasKeyword(lower) {
		return Keyword(lower), nil
	}
	if v, ok := g.Aliases[lower]; ok {
		return v, nil
	}
	if g.accepts(AcceptColor) {
		if c, ok := ParseColor(lower); ok {
			return ColorValue(c), nil
		}
	}
	if g.accepts(AcceptLength | AcceptPercent | AcceptNumber) {
		if n, unit, ok := splitNumber(lower); ok {
			return g.numeric(n, unit)
		}
	}
	if g.accepts(AcceptString) {
		return String(unquote(text)), nil
	}
	return Value{}, fmt.Errorf("%q does not match %s", text, g.describe())
}

func (g Grammar) numeric(n float64, unit Unit) (Value, error) {
	switch {
	case unit == UnitPercent:
		if g.accepts(AcceptPercent) {
			return Percent(n), nil
		}
		return Value{}, fmt.Errorf("percentages are not allowed")
	case unit == UnitNone:
		if g.accepts(AcceptNumber) {
			return Number(n), nil
		}
		// Unitless lengths are read as pixels.
		if g.accepts(AcceptLength) {
			return Px(n), nil
		}
		return Value{}, fmt.Errorf("a unit is required")
	default:
		if g.accepts(AcceptLength) {
			return Length(n, unit), nil
		}
		return Value{}, fmt.Errorf("lengths are not allowed")
	}
}

func (g Grammar) parseList(text string) (Value, error) {
	items := splitOutside(text, ',')
	single := g
	single.Accept &^= AcceptList
	out := make([]Value, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return Value{}, fmt.Errorf("empty list item")
		}
		v, err := single.parseSingle(item)
		if err != nil {
			return Value{}, err
		}
		out = append(out, v)
	}
	return List(out...), nil
}

func (g Grammar) describe() string {
	var parts []string
	if g.accepts(AcceptKeyword) {
		parts = append(parts, "keyword("+strings.Join(g.Keywords, "|")+")")
	}
	if g.accepts(AcceptLength) {
		parts = append(parts, "length")
	}
	if g.accepts(AcceptPercent) {
		parts = append(parts, "percentage")
	}
	if g.accepts(AcceptNumber) {
		parts = append(parts, "number")
	}
	if g.accepts(AcceptColor) {
		parts = append(parts, "color")
	}
	if g.accepts(AcceptString) {
		parts = append(parts, "string")
	}
	return strings.Join(parts, " or ")
}

// ClampValue applies the domain to a numeric value and passes everything else through.
func (g Grammar) ClampValue(v Value) Value {
	if v.Kind != KindLength && v.Kind != KindNumber {
		return v
	}
	n := g.Domain.Clamp(v.Num)
	if math.IsNaN(n) {
		n = 0
	}
	v.Num = n
	return v
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// splitOutside splits s on sep, ignoring separators inside parentheses or quotes.
func splitOutside(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// Fields splits a value into whitespace-separated tokens, keeping function
// arguments and quoted strings intact.
func Fields(s string) []string {
	var out []string
	depth := 0
	var quote byte
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		space := c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case space && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
