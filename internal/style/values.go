package style

import (
	"math"
	"strings"
	"unicode"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
)

// Values wraps a computed snapshot with typed accessors for the properties
// layout and rendering branch on.
type Values struct {
	*property.ComputedValues
}

// Of wraps cv. A nil cv is valid and reports initial-like defaults.
func Of(cv *property.ComputedValues) Values { return Values{cv} }

func (v Values) keyword(name, fallback string) string {
	if v.ComputedValues == nil {
		return fallback
	}
	if k := v.Keyword(name); k != "" {
		return k
	}
	return fallback
}

type DisplayType int

const (
	DisplayInline DisplayType = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayNone
)

func (v Values) Display() DisplayType {
	switch v.keyword(property.Display, "inline") {
	case "block":
		return DisplayBlock
	case "inline-block":
		return DisplayInlineBlock
	case "none":
		return DisplayNone
	default:
		return DisplayInline
	}
}

type PositionType int

const (
	PositionStatic PositionType = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

func (v Values) Position() PositionType {
	switch v.keyword(property.Position, "static") {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	default:
		return PositionStatic
	}
}

// OutOfFlow reports whether the box is removed from normal flow by positioning.
func (v Values) OutOfFlow() bool {
	p := v.Position()
	return p == PositionAbsolute || p == PositionFixed
}

type FloatType int

const (
	FloatNone FloatType = iota
	FloatLeft
	FloatRight
)

func (v Values) Float() FloatType {
	switch v.keyword(property.Float, "none") {
	case "left":
		return FloatLeft
	case "right":
		return FloatRight
	default:
		return FloatNone
	}
}

type ClearType int

const (
	ClearNone ClearType = iota
	ClearLeft
	ClearRight
	ClearBoth
)

func (v Values) Clear() ClearType {
	switch v.keyword(property.Clear, "none") {
	case "left":
		return ClearLeft
	case "right":
		return ClearRight
	case "both":
		return ClearBoth
	default:
		return ClearNone
	}
}

type BoxSizingType int

const (
	ContentBox BoxSizingType = iota
	BorderBox
)

func (v Values) BoxSizing() BoxSizingType {
	if v.keyword(property.BoxSizing, "content-box") == "border-box" {
		return BorderBox
	}
	return ContentBox
}

type TextAlignType int

const (
	TextAlignLeft TextAlignType = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

func (v Values) TextAlign() TextAlignType {
	switch v.keyword(property.TextAlign, "left") {
	case "right":
		return TextAlignRight
	case "center":
		return TextAlignCenter
	case "justify":
		return TextAlignJustify
	default:
		return TextAlignLeft
	}
}

type WhiteSpaceType int

const (
	WhiteSpaceNormal WhiteSpaceType = iota
	WhiteSpacePre
	WhiteSpaceNoWrap
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

func (v Values) WhiteSpace() WhiteSpaceType {
	switch v.keyword(property.WhiteSpace, "normal") {
	case "pre":
		return WhiteSpacePre
	case "nowrap":
		return WhiteSpaceNoWrap
	case "pre-wrap":
		return WhiteSpacePreWrap
	case "pre-line":
		return WhiteSpacePreLine
	default:
		return WhiteSpaceNormal
	}
}

// CollapsesSpaces reports whether runs of spaces and tabs collapse to one.
func (w WhiteSpaceType) CollapsesSpaces() bool {
	return w == WhiteSpaceNormal || w == WhiteSpaceNoWrap || w == WhiteSpacePreLine
}

// KeepsNewlines reports whether newlines in the source force line breaks.
func (w WhiteSpaceType) KeepsNewlines() bool {
	return w == WhiteSpacePre || w == WhiteSpacePreWrap || w == WhiteSpacePreLine
}

// Wraps reports whether lines may break at soft wrap opportunities.
func (w WhiteSpaceType) Wraps() bool {
	return w != WhiteSpacePre && w != WhiteSpaceNoWrap
}

// Length returns a pixel length and whether the value was a length at all.
// auto, none and other keywords report false.
func (v Values) Length(name string) (float64, bool) {
	if v.ComputedValues == nil {
		return 0, false
	}
	val := v.Value(name)
	if val.Kind == property.KindLength && val.Unit == property.UnitPx {
		return val.Num, true
	}
	return 0, false
}

// Edges reads four edge-ordered lengths. Non-length values read as zero.
func (v Values) Edges(names [4]string) box.Edges {
	top, _ := v.Length(names[0])
	right, _ := v.Length(names[1])
	bottom, _ := v.Length(names[2])
	left, _ := v.Length(names[3])
	return box.Edges{Top: top, Right: right, Bottom: bottom, Left: left}
}

func (v Values) Padding() box.Edges { return v.Edges(property.PaddingEdges) }
func (v Values) Border() box.Edges  { return v.Edges(property.BorderWidthEdges) }
func (v Values) Margin() box.Edges  { return v.Edges(property.MarginEdges) }

// FontSize returns the computed font size in pixels.
func (v Values) FontSize() float64 {
	if fs, ok := v.Length(property.FontSize); ok {
		return fs
	}
	return BaseFontSize
}

// Face describes the font this element's text is set in.
func (v Values) Face() fonts.Face {
	if v.ComputedValues == nil {
		return fonts.Face{Size: BaseFontSize}
	}
	return faceOf(v.Value, v.FontSize())
}

// LineHeight returns the used line height in pixels. normal defers to the
// font's own metrics.
func (v Values) LineHeight(fp fonts.Provider) float64 {
	size := v.FontSize()
	if v.ComputedValues != nil {
		lh := v.Value(property.LineHeight)
		switch {
		case lh.Kind == property.KindNumber:
			return lh.Num * size
		case lh.IsPx():
			return lh.Num
		}
	}
	return fp.Metrics(v.Face()).LineHeight
}

// ZIndex returns the stacking order and whether it was set explicitly.
func (v Values) ZIndex() (int, bool) {
	if v.ComputedValues == nil {
		return 0, false
	}
	z := v.Value(property.ZIndex)
	if z.Kind != property.KindNumber {
		return 0, false
	}
	return int(math.Round(z.Num)), true
}

// Visible reports whether the element paints.
func (v Values) Visible() bool {
	return v.keyword(property.Visibility, "visible") != "hidden"
}

// TransformText applies text-transform to s.
func (v Values) TransformText(s string) string {
	switch v.keyword(property.TextTransform, "none") {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	case "capitalize":
		out := []rune(s)
		start := true
		for i, r := range out {
			if r == ' ' || r == '\t' || r == '\n' {
				start = true
				continue
			}
			if start {
				out[i] = unicode.ToUpper(r)
				start = false
			}
		}
		return string(out)
	}
	return s
}

func faceOf(get func(string) property.Value, size float64) fonts.Face {
	face := fonts.Face{Size: size}
	fam := get(property.FontFamily)
	switch fam.Kind {
	case property.KindString:
		face.Family = fam.Str
	case property.KindList:
		names := make([]string, 0, len(fam.List))
		for _, item := range fam.List {
			if item.Kind == property.KindString {
				names = append(names, item.Str)
			} else if item.Kind == property.KindKeyword {
				names = append(names, item.Keyword)
			}
		}
		face.Family = strings.Join(names, ", ")
	case property.KindKeyword:
		face.Family = fam.Keyword
	}
	weight := get(property.FontWeight)
	face.Bold = weight.Is("bold") || (weight.Kind == property.KindNumber && weight.Num >= 600)
	face.Italic = get(property.FontStyle).Is("italic")
	return face
}
