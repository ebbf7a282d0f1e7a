// Package schemas defines the JSON documents the command line tools write.
// Field names are part of the output contract.
package schemas

import "time"

// ReportVersion is bumped whenever a field changes meaning.
const ReportVersion = 1

// BoxReport is the result of one layout pass over one document.
type BoxReport struct {
	Version   int             `json:"version"`
	ContextID string          `json:"context_id"`
	Document  string          `json:"document,omitempty"`
	Viewport  Size            `json:"viewport"`
	CreatedAt time.Time       `json:"created_at"`
	Elements  []ElementReport `json:"elements"`
}

// ElementReport is one published element or text node, in paint order.
type ElementReport struct {
	Path      string     `json:"path"`
	Tag       string     `json:"tag,omitempty"`
	ID        string     `json:"id,omitempty"`
	Text      bool       `json:"text,omitempty"`
	Depth     int        `json:"depth"`
	Rect      Rect       `json:"rect"`
	Content   Size       `json:"content"`
	Margin    Edges      `json:"margin"`
	Border    Edges      `json:"border"`
	Padding   Edges      `json:"padding"`
	Draw      Draw       `json:"draw"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an absolute border-box rectangle in viewport pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Draw holds the computed values a renderer needs. Colors are CSS strings.
type Draw struct {
	Color          string    `json:"color"`
	Background     string    `json:"background"`
	BorderColors   [4]string `json:"border_colors"`
	FontFamily     string    `json:"font_family"`
	FontSize       float64   `json:"font_size"`
	Bold           bool      `json:"bold,omitempty"`
	Italic         bool      `json:"italic,omitempty"`
	Opacity        float64   `json:"opacity"`
	Visible        bool      `json:"visible"`
	ZIndex         *int      `json:"z_index,omitempty"`
	TextDecoration string    `json:"text_decoration,omitempty"`
	Cursor         string    `json:"cursor,omitempty"`
}

// Fragment is a run of text positioned relative to its node's rect.
type Fragment struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Baseline float64 `json:"baseline"`
}

// LintReport lists the diagnostics found in a set of style sheets.
type LintReport struct {
	Sheets []SheetDiagnostics `json:"sheets"`
	Total  int                `json:"total"`
}

type SheetDiagnostics struct {
	Name        string       `json:"name"`
	Rules       int          `json:"rules"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type Diagnostic struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
