package parser

import "testing"

func FuzzParse(f *testing.F) {
	seeds := []string{
		"a { color: red }",
		"div > p.x:nth-child(2n+1) { margin: 1px 2px; }",
		"@media x { a {} } b { }",
		"[a='b' { }",
		"/* open",
		"p { width: calc(1px + (2px); }",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		sheet, errs := NewParser(input).Parse()
		for _, r := range sheet.Rules {
			if len(r.Selectors) == 0 {
				t.Fatalf("rule without selectors from %q", input)
			}
			for _, d := range r.Declarations {
				if d.Property == "" || d.Value == "" {
					t.Fatalf("empty declaration from %q", input)
				}
			}
		}
		for _, e := range errs {
			if e.Line < 1 || e.Column < 1 {
				t.Fatalf("bad position %+v from %q", e, input)
			}
		}
	})
}
