package layout

import (
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/style"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

var fuzzDeclarations = []string{
	"display: block", "display: inline-block", "display: none",
	"float: left", "float: right", "clear: both",
	"position: relative; left: 3px", "position: absolute; right: 5%", "position: fixed; bottom: 0",
	"width: 40px", "width: 150%", "height: 10px", "min-width: 20px", "max-width: 5px",
	"margin: -4px 2px", "margin-left: auto", "padding: 3px", "border-width: 2px",
	"box-sizing: border-box", "white-space: pre", "white-space: nowrap",
	"text-align: center", "vertical-align: middle", "vertical-align: 4px",
	"font-size: 2em", "line-height: 0", "overflow-x: hidden",
}

// FuzzLayout builds random trees and checks that every node finishes with a
// well-formed box.
func FuzzLayout(f *testing.F) {
	f.Add([]byte("seed"))
	f.Add([]byte{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9})

	sheet := stylesheet.Parse("fuzz.css", "body, div { display: block; }", registry, zap.NewNop())

	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		count, err := c.GetInt()
		if err != nil {
			return
		}

		root := dom.NewElement("body")
		elements := []*dom.Node{root}
		for i := 0; i < count%24; i++ {
			pick, err := c.GetInt()
			if err != nil {
				break
			}
			parent := elements[pick%len(elements)]

			isText, err := c.GetBool()
			if err != nil {
				break
			}
			if isText {
				text, err := c.GetString()
				if err != nil {
					break
				}
				parent.AppendChild(dom.NewText(text))
				continue
			}

			el := dom.NewElement("div")
			var decls []string
			for j := 0; j < 3; j++ {
				k, err := c.GetInt()
				if err != nil {
					break
				}
				decls = append(decls, fuzzDeclarations[k%len(fuzzDeclarations)])
			}
			el.SetInlineStyle(strings.Join(decls, "; "))
			parent.AppendChild(el)
			elements = append(elements, el)
		}

		styles := style.NewEngine(registry, sheet, fonts.NewEstimator(), zap.NewNop(), style.WithViewport(320, 240))
		engine := NewEngine(styles, zap.NewNop())
		engine.Layout(root)

		root.Walk(func(n *dom.Node) bool {
			if n.State() != box.Done {
				t.Fatalf("%s finished in state %s", n.Path(), n.State())
			}
			checkBox(t, n)
			return true
		})

		// A second pass over a clean tree must not change anything.
		before := root.Box()
		engine.Update(root)
		if root.Box() != before {
			t.Fatalf("clean update moved the root: %v -> %v", before, root.Box())
		}
	})
}
