package style

import (
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/property"
)

// percentBasis says what a percentage of a given property refers to.
type percentBasis uint8

const (
	basisNone percentBasis = iota
	basisWidth
	basisHeight
	basisFontSize
	basisLineHeight
)

var percentBases = map[string]percentBasis{
	property.Width:         basisWidth,
	property.MinWidth:      basisWidth,
	property.MaxWidth:      basisWidth,
	property.Left:          basisWidth,
	property.Right:         basisWidth,
	property.MarginTop:     basisWidth,
	property.MarginRight:   basisWidth,
	property.MarginBottom:  basisWidth,
	property.MarginLeft:    basisWidth,
	property.PaddingTop:    basisWidth,
	property.PaddingRight:  basisWidth,
	property.PaddingBottom: basisWidth,
	property.PaddingLeft:   basisWidth,
	property.Height:        basisHeight,
	property.MinHeight:     basisHeight,
	property.MaxHeight:     basisHeight,
	property.Top:           basisHeight,
	property.Bottom:        basisHeight,
	property.LineHeight:    basisFontSize,
	property.VerticalAlign: basisLineHeight,
}

// heightFallbacks replace a height percentage whose containing block height
// is not yet known.
var heightFallbacks = map[string]property.Value{
	property.Height:    property.Keyword(property.KeywordAuto),
	property.MinHeight: property.Px(0),
	property.MaxHeight: property.Keyword(property.KeywordNone),
	property.Top:       property.Keyword(property.KeywordAuto),
	property.Bottom:    property.Keyword(property.KeywordAuto),
}

// resolver holds the context one element's values are computed in.
type resolver struct {
	e          *Engine
	n          *dom.Node
	cb         box.ContainingBlock
	fontSize   float64
	rootFont   float64
	lineHeight float64
}

// ComputeValues converts a cascaded dictionary into concrete values. Lengths
// become pixels, percentages are resolved against cb or the font, keywords
// are kept, numeric values are clamped to their property's domain, and
// currentcolor takes the element's text color. Floated and absolutely
// positioned boxes are blockified.
func (e *Engine) ComputeValues(n *dom.Node, dict property.Dictionary, parent *property.ComputedValues, cb box.ContainingBlock) *property.ComputedValues {
	cv := property.NewComputedValues(e.registry)

	parentFont := BaseFontSize
	if parent != nil {
		parentFont = parent.Px(property.FontSize)
	}
	r := &resolver{e: e, n: n, cb: cb, rootFont: e.rootFontSize(n)}
	r.fontSize = r.fontLength(dict[property.FontSize], parentFont)
	if def, err := e.registry.Lookup(property.FontSize); err == nil {
		// em lengths below must see the same size the snapshot stores.
		r.fontSize = def.Grammar.Domain.Clamp(r.fontSize)
	}
	r.lineHeight = r.usedLineHeight(dict)

	for _, def := range e.registry.Definitions() {
		v, ok := dict[def.Name]
		if !ok {
			continue
		}
		if def.Name == property.FontSize {
			v = property.Px(r.fontSize)
		} else {
			v = r.compute(def.Name, v)
		}
		cv.Set(def.Index, def.Grammar.ClampValue(v))
	}

	if text, ok := cv.Get(property.TextColor); ok {
		for _, name := range property.BorderColorEdges {
			if def, err := e.registry.Lookup(name); err == nil && cv.At(def.Index).Is(property.KeywordCurrentColor) {
				cv.Set(def.Index, text)
			}
		}
	}

	blockify(e.registry, cv, n)
	return cv
}

func (r *resolver) compute(name string, v property.Value) property.Value {
	if v.Kind != property.KindLength {
		return v
	}
	if !v.IsPercent() {
		return property.Px(r.length(v))
	}

	frac := v.Num / 100
	switch percentBases[name] {
	case basisWidth:
		return property.Px(r.cb.Width * frac)
	case basisHeight:
		if r.cb.HeightAuto {
			fallback := heightFallbacks[name]
			r.e.logger.Debug("Percentage against indefinite height.",
				zap.String("element", r.n.Path()),
				zap.String("property", name),
				zap.Stringer("fallback", fallback))
			return fallback
		}
		return property.Px(r.cb.Height * frac)
	case basisFontSize:
		return property.Px(r.fontSize * frac)
	case basisLineHeight:
		return property.Px(r.lineHeight * frac)
	}
	return v
}

// length converts a non-percentage length to pixels.
func (r *resolver) length(v property.Value) float64 {
	vp := r.e.viewport
	switch v.Unit {
	case property.UnitNone:
		return v.Num
	case property.UnitDp:
		return v.Num * r.e.density
	case property.UnitEm:
		return v.Num * r.fontSize
	case property.UnitRem:
		return v.Num * r.rootFont
	case property.UnitVw:
		return v.Num * vp.Width / 100
	case property.UnitVh:
		return v.Num * vp.Height / 100
	case property.UnitVmin:
		return v.Num * math.Min(vp.Width, vp.Height) / 100
	case property.UnitVmax:
		return v.Num * math.Max(vp.Width, vp.Height) / 100
	}
	if v.Unit.Absolute() {
		return v.Num * v.Unit.PixelsPer()
	}
	return v.Num
}

// fontLength resolves font-size. Relative units refer to the parent's size.
func (r *resolver) fontLength(v property.Value, parentFont float64) float64 {
	if v.Kind != property.KindLength {
		return parentFont
	}
	switch v.Unit {
	case property.UnitPercent:
		return parentFont * v.Num / 100
	case property.UnitEm:
		return parentFont * v.Num
	}
	saved := r.fontSize
	r.fontSize = parentFont
	px := r.length(v)
	r.fontSize = saved
	return px
}

// usedLineHeight is the pixel line height vertical-align percentages refer to.
func (r *resolver) usedLineHeight(dict property.Dictionary) float64 {
	v := dict[property.LineHeight]
	switch {
	case v.Kind == property.KindNumber:
		return v.Num * r.fontSize
	case v.IsPercent():
		return v.Num * r.fontSize / 100
	case v.Kind == property.KindLength:
		return r.length(v)
	}
	face := faceOf(func(name string) property.Value { return dict[name] }, r.fontSize)
	return r.e.fonts.Metrics(face).LineHeight
}

func blockify(reg *property.Registry, cv *property.ComputedValues, n *dom.Node) {
	display := cv.Keyword(property.Display)
	if display != "inline" && display != "inline-block" {
		return
	}
	pos := cv.Keyword(property.Position)
	if n.Parent() != nil && cv.Keyword(property.Float) == "none" && pos != "absolute" && pos != "fixed" {
		return
	}
	if def, err := reg.Lookup(property.Display); err == nil {
		cv.Set(def.Index, property.Keyword("block"))
	}
}
