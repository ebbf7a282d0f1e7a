package property

import (
	"math"
	"strconv"
	"strings"
)

// Unit identifies the dimension attached to a numeric value.
type Unit uint8

const (
	UnitNone Unit = iota // unitless number
	UnitPx
	UnitDp
	UnitPt
	UnitPc
	UnitIn
	UnitCm
	UnitMm
	UnitEm
	UnitRem
	UnitPercent
	UnitVw
	UnitVh
	UnitVmin
	UnitVmax
)

// unitSuffixes is ordered so that longer suffixes are tried first ("rem" before "em").
var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"vmin", UnitVmin},
	{"vmax", UnitVmax},
	{"rem", UnitRem},
	{"px", UnitPx},
	{"dp", UnitDp},
	{"pt", UnitPt},
	{"pc", UnitPc},
	{"in", UnitIn},
	{"cm", UnitCm},
	{"mm", UnitMm},
	{"em", UnitEm},
	{"vw", UnitVw},
	{"vh", UnitVh},
	{"%", UnitPercent},
}

func (u Unit) String() string {
	if u == UnitNone {
		return ""
	}
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.suffix
		}
	}
	return "?"
}

// Absolute reports whether the unit converts to pixels without any context.
func (u Unit) Absolute() bool {
	switch u {
	case UnitPx, UnitPt, UnitPc, UnitIn, UnitCm, UnitMm:
		return true
	}
	return false
}

// PixelsPer returns the pixel size of one absolute unit at 96 pixels per inch.
func (u Unit) PixelsPer() float64 {
	switch u {
	case UnitPx:
		return 1
	case UnitPt:
		return 96.0 / 72.0
	case UnitPc:
		return 16
	case UnitIn:
		return 96
	case UnitCm:
		return 96.0 / 2.54
	case UnitMm:
		return 96.0 / 25.4
	}
	return 0
}

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindLength
	KindNumber
	KindColor
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindLength:
		return "length"
	case KindNumber:
		return "number"
	case KindColor:
		return "color"
	case KindString:
		return "string"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Common keywords with special meaning to the cascade and layout.
const (
	KeywordAuto         = "auto"
	KeywordNone         = "none"
	KeywordNormal       = "normal"
	KeywordInherit      = "inherit"
	KeywordInitial      = "initial"
	KeywordCurrentColor = "currentcolor"
)

// Value is an immutable property value. Only the fields relevant to Kind are set.
type Value struct {
	Kind    Kind
	Keyword string
	Num     float64
	Unit    Unit
	Color   Color
	Str     string
	List    []Value
}

func Keyword(k string) Value           { return Value{Kind: KindKeyword, Keyword: k} }
func Px(n float64) Value               { return Value{Kind: KindLength, Num: n, Unit: UnitPx} }
func Length(n float64, u Unit) Value   { return Value{Kind: KindLength, Num: n, Unit: u} }
func Percent(n float64) Value          { return Value{Kind: KindLength, Num: n, Unit: UnitPercent} }
func Number(n float64) Value           { return Value{Kind: KindNumber, Num: n} }
func ColorValue(c Color) Value         { return Value{Kind: KindColor, Color: c} }
func String(s string) Value            { return Value{Kind: KindString, Str: s} }
func List(items ...Value) Value        { return Value{Kind: KindList, List: items} }
func (v Value) Is(keyword string) bool { return v.Kind == KindKeyword && v.Keyword == keyword }
func (v Value) IsAuto() bool           { return v.Is(KeywordAuto) }
func (v Value) IsNone() bool           { return v.Is(KeywordNone) }

// IsPercent reports whether v is a length expressed in percent.
func (v Value) IsPercent() bool { return v.Kind == KindLength && v.Unit == UnitPercent }

// IsPx reports whether v is a concrete pixel length.
func (v Value) IsPx() bool { return v.Kind == KindLength && v.Unit == UnitPx }

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindKeyword:
		return v.Keyword == o.Keyword
	case KindLength:
		return v.Unit == o.Unit && floatEqual(v.Num, o.Num)
	case KindNumber:
		return floatEqual(v.Num, o.Num)
	case KindColor:
		return v.Color == o.Color
	case KindString:
		return v.Str == o.Str
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func floatEqual(a, b float64) bool {
	return a == b || math.Abs(a-b) < 1e-9
}

// String renders the value back into style sheet syntax.
func (v Value) String() string {
	switch v.Kind {
	case KindKeyword:
		return v.Keyword
	case KindLength:
		return formatNumber(v.Num) + v.Unit.String()
	case KindNumber:
		return formatNumber(v.Num)
	case KindColor:
		return v.Color.String()
	case KindString:
		if strings.ContainsAny(v.Str, " ,") {
			return strconv.Quote(v.Str)
		}
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// splitNumber separates a numeric token from its unit suffix.
func splitNumber(s string) (float64, Unit, bool) {
	unit := UnitNone
	num := s
	for _, us := range unitSuffixes {
		if strings.HasSuffix(s, us.suffix) {
			unit = us.unit
			num = strings.TrimSuffix(s, us.suffix)
			break
		}
	}
	if num == "" || num == "+" || num == "-" {
		return 0, UnitNone, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, UnitNone, false
	}
	return f, unit, true
}
