// Package engine ties the passes together. A Context owns one document with
// its style sheets and viewport; a Batch runs many independent contexts
// concurrently.
package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/layout"
	"github.com/xkilldash9x/stylebox/internal/observability"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/render"
	"github.com/xkilldash9x/stylebox/internal/style"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

const (
	DefaultViewportWidth  = 1024.0
	DefaultViewportHeight = 768.0
)

// ErrRegistryNotSealed is returned when a context is created over a registry
// that can still change.
var ErrRegistryNotSealed = errors.New("property registry is not sealed")

// Context is one document being styled and laid out. A context is not safe
// for concurrent use, but separate contexts share nothing mutable and may run
// in parallel over the same sealed registry.
type Context struct {
	id       string
	registry *property.Registry
	fonts    fonts.Provider
	logger   *zap.Logger

	width, height float64
	density       float64
	userAgent     bool

	uaSheet     *stylesheet.StyleSheet
	sheets      []*stylesheet.StyleSheet
	docSheets   []*stylesheet.StyleSheet
	doc         *dom.Document
	styles      *style.Engine
	layout      *layout.Engine
	diagnostics []stylesheet.Diagnostic
}

// Option configures a Context.
type Option func(*Context)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

func WithViewport(width, height float64) Option {
	return func(c *Context) { c.width, c.height = width, height }
}

func WithDensityRatio(ratio float64) Option {
	return func(c *Context) { c.density = ratio }
}

// WithUserAgentSheet prepends UserAgentCSS to the context's sheets.
func WithUserAgentSheet(on bool) Option {
	return func(c *Context) { c.userAgent = on }
}

// NewContext creates an empty context. An empty name gets a random id.
func NewContext(name string, reg *property.Registry, fp fonts.Provider, opts ...Option) (*Context, error) {
	if reg == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if !reg.Sealed() {
		return nil, ErrRegistryNotSealed
	}
	if fp == nil {
		fp = fonts.NewEstimator()
	}

	c := &Context{
		id:       name,
		registry: reg,
		fonts:    fp,
		width:    DefaultViewportWidth,
		height:   DefaultViewportHeight,
		density:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, fmt.Errorf("invalid viewport %vx%v", c.width, c.height)
	}
	if c.density <= 0 {
		return nil, fmt.Errorf("invalid density ratio %v", c.density)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = observability.GetLogger()
	}
	c.logger = c.logger.With(zap.String("context", c.id))

	if c.userAgent {
		c.uaSheet = stylesheet.Parse("user-agent", UserAgentCSS, reg, c.logger)
	}
	c.styles = style.NewEngine(reg, c.merged(), fp, c.logger,
		style.WithViewport(c.width, c.height),
		style.WithDensityRatio(c.density))
	c.layout = layout.NewEngine(c.styles, c.logger)
	return c, nil
}

func (c *Context) ID() string                   { return c.id }
func (c *Context) Document() *dom.Document      { return c.doc }
func (c *Context) Styles() *style.Engine        { return c.styles }
func (c *Context) Registry() *property.Registry { return c.registry }

// Dimensions returns the viewport size.
func (c *Context) Dimensions() box.Size { return box.Size{Width: c.width, Height: c.height} }

// Diagnostics returns everything dropped while loading the context's sheets.
func (c *Context) Diagnostics() []stylesheet.Diagnostic {
	out := make([]stylesheet.Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// merged concatenates the user agent sheet, the context's sheets and the
// document's embedded sheets, in that precedence order.
func (c *Context) merged() *stylesheet.StyleSheet {
	all := make([]*stylesheet.StyleSheet, 0, len(c.sheets)+len(c.docSheets)+1)
	if c.uaSheet != nil {
		all = append(all, c.uaSheet)
	}
	all = append(all, c.sheets...)
	all = append(all, c.docSheets...)
	return stylesheet.Merge(all...)
}

func (c *Context) sheetsChanged() {
	c.styles.SetStyleSheet(c.merged())
	if c.doc != nil {
		c.doc.Root().MarkSubtreeStyleDirty()
	}
}

// LoadStyleSheet parses a sheet from r and adds it after the existing ones.
// Only a read failure is an error; invalid rules are dropped and recorded.
func (c *Context) LoadStyleSheet(name string, r io.Reader) (*stylesheet.StyleSheet, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read style sheet %s: %w", name, err)
	}
	sheet := stylesheet.Parse(name, string(src), c.registry, c.logger)
	c.AddStyleSheet(sheet)
	return sheet, nil
}

// AddStyleSheet appends already parsed sheets. Later sheets win ties.
func (c *Context) AddStyleSheet(sheets ...*stylesheet.StyleSheet) {
	for _, s := range sheets {
		if s == nil {
			continue
		}
		c.sheets = append(c.sheets, s)
		c.diagnostics = append(c.diagnostics, s.Diagnostics...)
	}
	c.sheetsChanged()
}

// SetDocument replaces the context's document. Style blocks embedded in the
// document apply after the context's own sheets.
func (c *Context) SetDocument(doc *dom.Document) {
	c.doc = doc
	c.docSheets = nil
	if doc != nil {
		for i, src := range doc.Styles {
			sheet := stylesheet.Parse("embedded#"+strconv.Itoa(i), src, c.registry, c.logger)
			c.docSheets = append(c.docSheets, sheet)
			c.diagnostics = append(c.diagnostics, sheet.Diagnostics...)
		}
		for _, href := range doc.StyleLinks {
			c.logger.Debug("Linked style sheet not loaded.", zap.String("href", href))
		}
	}
	c.sheetsChanged()
}

// SetDimensions resizes the viewport. Everything sized against it is laid
// out again on the next Update.
func (c *Context) SetDimensions(width, height float64) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.styles.SetViewport(width, height)
	if c.doc != nil {
		c.doc.Root().MarkLayoutDirty()
	}
}

// Update brings styles and boxes up to date. Only dirty subtrees are
// revisited.
func (c *Context) Update() {
	if c.doc == nil {
		return
	}
	c.layout.Update(c.doc.Root())
}

// Render updates the context and publishes every visible node to bridge.
func (c *Context) Render(bridge render.Bridge) int {
	c.Update()
	if c.doc == nil {
		return 0
	}
	return render.Walk(c.doc.Root(), bridge)
}
