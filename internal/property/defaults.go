package property

import "fmt"

// Names of the properties registered by RegisterDefaults.
const (
	Display   = "display"
	Position  = "position"
	Float     = "float"
	Clear     = "clear"
	BoxSizing = "box-sizing"

	Width     = "width"
	Height    = "height"
	MinWidth  = "min-width"
	MinHeight = "min-height"
	MaxWidth  = "max-width"
	MaxHeight = "max-height"

	MarginTop    = "margin-top"
	MarginRight  = "margin-right"
	MarginBottom = "margin-bottom"
	MarginLeft   = "margin-left"

	PaddingTop    = "padding-top"
	PaddingRight  = "padding-right"
	PaddingBottom = "padding-bottom"
	PaddingLeft   = "padding-left"

	BorderTopWidth    = "border-top-width"
	BorderRightWidth  = "border-right-width"
	BorderBottomWidth = "border-bottom-width"
	BorderLeftWidth   = "border-left-width"

	BorderTopColor    = "border-top-color"
	BorderRightColor  = "border-right-color"
	BorderBottomColor = "border-bottom-color"
	BorderLeftColor   = "border-left-color"

	Top    = "top"
	Right  = "right"
	Bottom = "bottom"
	Left   = "left"

	FontFamily    = "font-family"
	FontSize      = "font-size"
	FontWeight    = "font-weight"
	FontStyle     = "font-style"
	LineHeight    = "line-height"
	TextAlign     = "text-align"
	WhiteSpace    = "white-space"
	VerticalAlign = "vertical-align"
	OverflowX     = "overflow-x"
	OverflowY     = "overflow-y"

	TextColor       = "color"
	BackgroundColor = "background-color"
	Opacity         = "opacity"
	ZIndex          = "z-index"
	Visibility      = "visibility"
	Cursor          = "cursor"
	TextDecoration  = "text-decoration"
	TextTransform   = "text-transform"
)

// Edge-ordered property groups (top, right, bottom, left).
var (
	MarginEdges      = [4]string{MarginTop, MarginRight, MarginBottom, MarginLeft}
	PaddingEdges     = [4]string{PaddingTop, PaddingRight, PaddingBottom, PaddingLeft}
	BorderWidthEdges = [4]string{BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth}
	BorderColorEdges = [4]string{BorderTopColor, BorderRightColor, BorderBottomColor, BorderLeftColor}
)

var (
	autoLengthPercent = Grammar{Accept: AcceptKeyword | AcceptLength | AcceptPercent, Keywords: []string{KeywordAuto}}
	nonNegLength      = Grammar{Accept: AcceptLength | AcceptPercent, Domain: NonNegative}
	autoSize          = Grammar{Accept: AcceptKeyword | AcceptLength | AcceptPercent, Keywords: []string{KeywordAuto}, Domain: NonNegative}
	maxSize           = Grammar{Accept: AcceptKeyword | AcceptLength | AcceptPercent, Keywords: []string{KeywordNone}, Domain: NonNegative}
	colorGrammar      = Grammar{Accept: AcceptKeyword | AcceptColor, Keywords: []string{KeywordCurrentColor}}
	borderWidth       = Grammar{
		Accept: AcceptLength,
		Aliases: map[string]Value{
			"thin":   Px(1),
			"medium": Px(3),
			"thick":  Px(5),
		},
		Domain: NonNegative,
	}
	fontSize = Grammar{
		Accept: AcceptLength | AcceptPercent,
		Aliases: map[string]Value{
			"xx-small": Px(9),
			"x-small":  Px(10),
			"small":    Px(13),
			"medium":   Px(16),
			"large":    Px(18),
			"x-large":  Px(24),
			"xx-large": Px(32),
		},
		Domain: NonNegative,
	}
	overflow = Keywords("visible", "hidden", "auto", "scroll")
)

type definitionSpec struct {
	name          string
	grammar       Grammar
	initial       string
	inherited     bool
	affectsLayout bool
}

func defaultDefinitions() []definitionSpec {
	specs := []definitionSpec{
		{Display, Keywords("inline", "block", "inline-block", "none"), "inline", false, true},
		{Position, Keywords("static", "relative", "absolute", "fixed"), "static", false, true},
		{Float, Keywords("none", "left", "right"), "none", false, true},
		{Clear, Keywords("none", "left", "right", "both"), "none", false, true},
		{BoxSizing, Keywords("content-box", "border-box"), "content-box", false, true},

		{Width, autoSize, "auto", false, true},
		{Height, autoSize, "auto", false, true},
		{MinWidth, nonNegLength, "0px", false, true},
		{MinHeight, nonNegLength, "0px", false, true},
		{MaxWidth, maxSize, "none", false, true},
		{MaxHeight, maxSize, "none", false, true},

		{Top, autoLengthPercent, "auto", false, true},
		{Right, autoLengthPercent, "auto", false, true},
		{Bottom, autoLengthPercent, "auto", false, true},
		{Left, autoLengthPercent, "auto", false, true},

		{FontFamily, Grammar{Accept: AcceptList | AcceptString}, "sans-serif", true, true},
		{FontSize, fontSize, "medium", true, true},
		{FontWeight, Grammar{Accept: AcceptKeyword | AcceptNumber, Keywords: []string{"normal", "bold"}, Domain: Domain{Min: 1, Max: 1000, HasMin: true, HasMax: true}}, "normal", true, true},
		{FontStyle, Keywords("normal", "italic"), "normal", true, true},
		{LineHeight, Grammar{Accept: AcceptKeyword | AcceptNumber | AcceptLength | AcceptPercent, Keywords: []string{KeywordNormal}, Domain: NonNegative}, "normal", true, true},
		{TextAlign, Keywords("left", "right", "center", "justify"), "left", true, true},
		{WhiteSpace, Keywords("normal", "pre", "nowrap", "pre-wrap", "pre-line"), "normal", true, true},
		{VerticalAlign, Grammar{Accept: AcceptKeyword | AcceptLength | AcceptPercent, Keywords: []string{"baseline", "top", "middle", "bottom", "text-top", "text-bottom", "sub", "super"}}, "baseline", false, true},
		{OverflowX, overflow, "visible", false, true},
		{OverflowY, overflow, "visible", false, true},
		{TextTransform, Keywords("none", "capitalize", "uppercase", "lowercase"), "none", true, true},

		{TextColor, Grammar{Accept: AcceptColor}, "black", true, false},
		{BackgroundColor, Grammar{Accept: AcceptColor}, "transparent", false, false},
		{Opacity, Grammar{Accept: AcceptNumber, Domain: UnitInterval}, "1", false, false},
		{ZIndex, Grammar{Accept: AcceptKeyword | AcceptNumber, Keywords: []string{KeywordAuto}}, "auto", false, false},
		{Visibility, Keywords("visible", "hidden"), "visible", true, false},
		{Cursor, Grammar{Accept: AcceptKeyword | AcceptString, Keywords: []string{KeywordAuto}}, "auto", true, false},
		{TextDecoration, Keywords("none", "underline", "overline", "line-through"), "none", false, false},
	}
	// Margins have no domain: negative values are legal.
	for _, n := range MarginEdges {
		specs = append(specs, definitionSpec{n, autoLengthPercent, "0px", false, true})
	}
	for _, n := range PaddingEdges {
		specs = append(specs, definitionSpec{n, nonNegLength, "0px", false, true})
	}
	for _, n := range BorderWidthEdges {
		specs = append(specs, definitionSpec{n, borderWidth, "0px", false, true})
	}
	for _, n := range BorderColorEdges {
		specs = append(specs, definitionSpec{n, colorGrammar, KeywordCurrentColor, false, false})
	}
	return specs
}

// RegisterDefaults registers the standard property set and its shorthands.
func RegisterDefaults(r *Registry) error {
	for _, s := range defaultDefinitions() {
		if _, err := r.Register(s.name, s.grammar, s.initial, s.inherited, s.affectsLayout); err != nil {
			return err
		}
	}

	shorthands := []struct {
		name      string
		kind      ShorthandKind
		longhands []string
	}{
		{"margin", ShorthandBox, MarginEdges[:]},
		{"padding", ShorthandBox, PaddingEdges[:]},
		{"border-width", ShorthandBox, BorderWidthEdges[:]},
		{"border-color", ShorthandBox, BorderColorEdges[:]},
		{"border-top", ShorthandFallThrough, []string{BorderTopWidth, BorderTopColor}},
		{"border-right", ShorthandFallThrough, []string{BorderRightWidth, BorderRightColor}},
		{"border-bottom", ShorthandFallThrough, []string{BorderBottomWidth, BorderBottomColor}},
		{"border-left", ShorthandFallThrough, []string{BorderLeftWidth, BorderLeftColor}},
		{"border", ShorthandReplicate, []string{"border-top", "border-right", "border-bottom", "border-left"}},
		{"overflow", ShorthandBox, []string{OverflowX, OverflowY}},
	}
	for _, sh := range shorthands {
		if err := r.RegisterShorthand(sh.name, sh.kind, sh.longhands...); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry returns a sealed registry holding the standard property set.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		panic(fmt.Sprintf("default property table is invalid: %v", err))
	}
	r.Seal()
	return r
}
