// Package style resolves the cascade for each element and converts the result
// into concrete computed values.
package style

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

// BaseFontSize is the font size rem units resolve against when no root value exists.
const BaseFontSize = 16.0

// Engine owns the style sheet set for one document context. It is not safe
// for concurrent use; independent documents use independent engines.
type Engine struct {
	registry *property.Registry
	sheet    *stylesheet.StyleSheet
	fonts    fonts.Provider
	logger   *zap.Logger

	viewport   box.Size
	density    float64
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithViewport sets the size vw and vh units resolve against.
func WithViewport(width, height float64) Option {
	return func(e *Engine) { e.viewport = box.Size{Width: width, Height: height} }
}

// WithDensityRatio sets the pixels per dp unit.
func WithDensityRatio(ratio float64) Option {
	return func(e *Engine) { e.density = ratio }
}

// NewEngine creates an engine. A nil sheet behaves like an empty sheet; a nil
// font provider falls back to the estimator.
func NewEngine(reg *property.Registry, sheet *stylesheet.StyleSheet, fp fonts.Provider, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheet == nil {
		sheet = stylesheet.Merge()
	}
	if fp == nil {
		fp = fonts.NewEstimator()
	}
	e := &Engine{
		registry: reg,
		sheet:    sheet,
		fonts:    fp,
		logger:   logger.Named("style"),
		density:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *property.Registry       { return e.registry }
func (e *Engine) Fonts() fonts.Provider              { return e.fonts }
func (e *Engine) StyleSheet() *stylesheet.StyleSheet { return e.sheet }
func (e *Engine) Viewport() box.Size                 { return e.viewport }

// SetStyleSheet replaces the sheet set. Every cached match becomes stale.
func (e *Engine) SetStyleSheet(sheet *stylesheet.StyleSheet) {
	if sheet == nil {
		sheet = stylesheet.Merge()
	}
	e.sheet = sheet
	e.generation++
}

// SetViewport changes the viewport. Viewport-relative values become stale.
func (e *Engine) SetViewport(width, height float64) {
	e.viewport = box.Size{Width: width, Height: height}
	e.generation++
}

// cache is the per-element state kept in dom.Node.StyleCache.
type cache struct {
	generation  uint64
	matches     []stylesheet.Match
	inlineSrc   string
	inline      property.Dictionary
	parent      *property.ComputedValues
	rootFont    float64
	cb          box.ContainingBlock
	matchedOnce bool
}

func cacheOf(n *dom.Node) *cache {
	if c, ok := n.StyleCache.(*cache); ok {
		return c
	}
	c := &cache{}
	n.StyleCache = c
	return c
}

// Match returns the rules applying to n in ascending cascade order. Matching is
// only re-run when n's matchable state changed or the sheet set was replaced.
func (e *Engine) Match(n *dom.Node) []stylesheet.Match {
	c := cacheOf(n)
	if c.matchedOnce && !n.StyleDirty() && c.generation == e.generation {
		return c.matches
	}
	c.matches = e.sheet.Match(n)
	c.matchedOnce = true
	return c.matches
}

func (e *Engine) inlineDeclarations(n *dom.Node) property.Dictionary {
	c := cacheOf(n)
	src := n.InlineStyle()
	if c.inline != nil && c.inlineSrc == src {
		return c.inline
	}
	dict, errs := stylesheet.ParseInline(src, e.registry)
	for _, err := range errs {
		e.logger.Warn("Invalid inline declaration dropped.", zap.String("element", n.Path()), zap.Error(err))
	}
	c.inline, c.inlineSrc = dict, src
	return dict
}

// Style returns n's computed values for the given containing block, resolving
// the cascade if anything it depends on changed: n's own matchable state, the
// parent's computed values, the containing block, or the sheet set. The parent
// must already be styled. The result is stored on n.
func (e *Engine) Style(n *dom.Node, cb box.ContainingBlock) *property.ComputedValues {
	var parent *property.ComputedValues
	if p := n.Parent(); p != nil {
		parent = p.Computed()
	}

	if n.IsText() {
		// Text has no declarations of its own.
		if parent == nil {
			parent = property.NewComputedValues(e.registry)
		}
		n.SetComputed(parent)
		n.ClearStyleDirty()
		return parent
	}

	c := cacheOf(n)
	rootFont := e.rootFontSize(n)
	if n.Computed() != nil && !n.StyleDirty() && c.generation == e.generation &&
		c.parent == parent && c.cb == cb && c.rootFont == rootFont {
		return n.Computed()
	}

	dict := e.Resolve(n, parent)
	cv := e.ComputeValues(n, dict, parent, cb)

	if old := n.Computed(); old != nil && old.Diff(cv) == 0 {
		// Keep the pointer stable so children see an unchanged parent.
		cv = old
	}
	n.SetComputed(cv)
	c.generation = e.generation
	c.parent = parent
	c.cb = cb
	c.rootFont = rootFont
	n.ClearStyleDirty()
	return cv
}

// StyleSubtree styles n and its descendants without layout, using cb for n
// and a zero containing block below it. It is used for subtrees that are not
// displayed but still need complete computed values.
func (e *Engine) StyleSubtree(n *dom.Node, cb box.ContainingBlock) {
	e.Style(n, cb)
	for _, c := range n.Children() {
		e.StyleSubtree(c, box.ContainingBlock{HeightAuto: true})
	}
}

func (e *Engine) rootFontSize(n *dom.Node) float64 {
	root := n.Root()
	if root == n || root.Computed() == nil {
		return BaseFontSize
	}
	if fs := root.Computed().Px(property.FontSize); fs > 0 {
		return fs
	}
	return BaseFontSize
}
