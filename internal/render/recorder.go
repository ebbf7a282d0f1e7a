package render

import (
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/box"
)

// Recorder is a Bridge that keeps every item it receives. It is safe for
// concurrent use so one recorder can collect from several contexts.
type Recorder struct {
	mu    sync.Mutex
	items []Item
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(it Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, it)
}

// Items returns a copy of the recorded items.
func (r *Recorder) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Report converts the recorded items into the JSON report schema.
func (r *Recorder) Report(contextID, document string, viewport box.Size) schemas.BoxReport {
	items := r.Items()
	rep := schemas.BoxReport{
		Version:   schemas.ReportVersion,
		ContextID: contextID,
		Document:  document,
		Viewport:  schemas.Size{Width: viewport.Width, Height: viewport.Height},
		CreatedAt: time.Now().UTC(),
		Elements:  make([]schemas.ElementReport, 0, len(items)),
	}
	for _, it := range items {
		rep.Elements = append(rep.Elements, elementReport(it))
	}
	return rep
}

func elementReport(it Item) schemas.ElementReport {
	n := it.Node
	er := schemas.ElementReport{
		Path:    n.Path(),
		Tag:     n.Tag(),
		ID:      n.ID(),
		Text:    n.IsText(),
		Depth:   it.Depth,
		Rect:    schemas.Rect{X: it.Rect.X, Y: it.Rect.Y, Width: it.Rect.Width, Height: it.Rect.Height},
		Content: schemas.Size{Width: it.Box.Content.Width, Height: it.Box.Content.Height},
		Margin:  edges(it.Box.Margin),
		Border:  edges(it.Box.Border),
		Padding: edges(it.Box.Padding),
	}
	d := it.Draw
	er.Draw = schemas.Draw{
		Color:          d.Color.String(),
		Background:     d.Background.String(),
		FontFamily:     d.Font.Family,
		FontSize:       d.Font.Size,
		Bold:           d.Font.Bold,
		Italic:         d.Font.Italic,
		Opacity:        d.Opacity,
		Visible:        d.Visible,
		TextDecoration: d.TextDecoration,
		Cursor:         d.Cursor,
	}
	for i, c := range d.BorderColors {
		er.Draw.BorderColors[i] = c.String()
	}
	if d.ZIndexSet {
		z := d.ZIndex
		er.Draw.ZIndex = &z
	}
	for _, f := range it.Fragments {
		er.Fragments = append(er.Fragments, schemas.Fragment{
			Text: f.Text, X: f.Offset.X, Y: f.Offset.Y,
			Width: f.Width, Height: f.Height, Baseline: f.Baseline,
		})
	}
	return er
}

func edges(e box.Edges) schemas.Edges {
	return schemas.Edges{Top: e.Top, Right: e.Right, Bottom: e.Bottom, Left: e.Left}
}

// WriteJSON encodes v to w, indented when pretty is set.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
