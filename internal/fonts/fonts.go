// Package fonts answers the metric questions layout and unit resolution ask:
// how tall a line is and how wide a run of text is for a given face.
package fonts

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face identifies a font: family, pixel size and style.
type Face struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Metrics are vertical measurements in pixels for a face.
type Metrics struct {
	Size       float64
	Ascent     float64
	Descent    float64
	LineHeight float64 // the "normal" line height
	XHeight    float64
}

// Provider is a pure lookup of font metrics. Implementations must be safe for
// concurrent use.
type Provider interface {
	Metrics(f Face) Metrics
	Measure(f Face, text string) float64
}

// Estimator approximates metrics from ratios of the font size. It needs no font
// data and gives deterministic results.
type Estimator struct {
	AdvanceRatio    float64
	AscentRatio     float64
	LineHeightRatio float64
}

// NewEstimator returns an estimator with the usual ratios: 0.6em advance,
// 0.8em ascent and a 1.2em normal line height.
func NewEstimator() *Estimator {
	return &Estimator{AdvanceRatio: 0.6, AscentRatio: 0.8, LineHeightRatio: 1.2}
}

func (e *Estimator) Metrics(f Face) Metrics {
	return Metrics{
		Size:       f.Size,
		Ascent:     f.Size * e.AscentRatio,
		Descent:    f.Size * (1 - e.AscentRatio),
		LineHeight: f.Size * e.LineHeightRatio,
		XHeight:    f.Size * 0.5,
	}
}

func (e *Estimator) Measure(f Face, text string) float64 {
	w := float64(utf8.RuneCountInString(text)) * f.Size * e.AdvanceRatio
	if f.Bold {
		w *= 1.1
	}
	return w
}

// FaceProvider scales bitmap or vector font.Face metrics to the requested size.
// Families without a registered face use the fallback.
type FaceProvider struct {
	mu       sync.Mutex
	faces    map[string]font.Face
	fallback font.Face
	lineGap  float64
}

// NewFaceProvider returns a provider backed by basicfont's 7x13 face.
func NewFaceProvider() *FaceProvider {
	return &FaceProvider{
		faces:    make(map[string]font.Face),
		fallback: basicfont.Face7x13,
		lineGap:  0.2,
	}
}

// Register binds a family name to a face.
func (p *FaceProvider) Register(family string, face font.Face) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faces[strings.ToLower(family)] = face
}

func (p *FaceProvider) face(family string) font.Face {
	for _, name := range strings.Split(family, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if f, ok := p.faces[name]; ok {
			return f
		}
	}
	return p.fallback
}

// scale converts the face's native pixel metrics to the requested size.
func scale(m font.Metrics, size float64) float64 {
	native := toFloat(m.Ascent + m.Descent)
	if native <= 0 {
		return 1
	}
	return size / native
}

func (p *FaceProvider) Metrics(f Face) Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.face(f.Family).Metrics()
	s := scale(m, f.Size)
	ascent, descent := toFloat(m.Ascent)*s, toFloat(m.Descent)*s
	xh := toFloat(m.XHeight) * s
	if xh <= 0 {
		xh = f.Size * 0.5
	}
	return Metrics{
		Size:       f.Size,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: math.Max(toFloat(m.Height)*s, f.Size*(1+p.lineGap)),
		XHeight:    xh,
	}
}

func (p *FaceProvider) Measure(f Face, text string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	face := p.face(f.Family)
	w := toFloat(font.MeasureString(face, text)) * scale(face.Metrics(), f.Size)
	if f.Bold {
		// Synthetic emboldening widens each glyph by one scaled pixel.
		w += float64(utf8.RuneCountInString(text)) * f.Size / 13
	}
	return w
}

func toFloat(x fixed.Int26_6) float64 { return float64(x) / 64 }
