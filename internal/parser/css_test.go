package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper functions to build expected structures concisely
func s(tag, id string, classes []string, attrs []AttributeSelector) SimpleSelector {
	return SimpleSelector{TagName: tag, ID: id, Classes: classes, Attributes: attrs}
}

func cs(selectors ...SimpleSelectorWithCombinator) ComplexSelector {
	return ComplexSelector{Selectors: selectors}
}

func sc(c Combinator, sel SimpleSelector) SimpleSelectorWithCombinator {
	return SimpleSelectorWithCombinator{Combinator: c, SimpleSelector: sel}
}

func TestParseSimpleSelectorsAndAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SimpleSelector
	}{
		{"Tag", "div", s("div", "", nil, nil)},
		{"Tag is lowercased", "DIV", s("div", "", nil, nil)},
		{"ID", "#main", s("", "main", nil, nil)},
		{"Class", ".button", s("", "", []string{"button"}, nil)},
		{"Multiple Classes", ".btn.primary", s("", "", []string{"btn", "primary"}, nil)},
		{"Combined", "input#username.required", s("input", "username", []string{"required"}, nil)},
		{"Universal", "*", s("*", "", nil, nil)},
		{"Attr Presence", "[disabled]", s("", "", nil, []AttributeSelector{{Name: "disabled"}})},
		{"Attr Exact", `[type="text"]`, s("", "", nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "text"}})},
		{"Attr Contains Word (~=)", `[class~="alert"]`, s("", "", nil, []AttributeSelector{{Name: "class", Operator: "~=", Value: "alert"}})},
		{"Attr Prefix Hyphen (|=)", `[lang|="en"]`, s("", "", nil, []AttributeSelector{{Name: "lang", Operator: "|=", Value: "en"}})},
		{"Attr Starts With (^=)", `[href^='https']`, s("", "", nil, []AttributeSelector{{Name: "href", Operator: "^=", Value: "https"}})},
		{"Attr Ends With ($=)", `[src$=".png"]`, s("", "", nil, []AttributeSelector{{Name: "src", Operator: "$=", Value: ".png"}})},
		{"Attr Contains Substring (*=)", `[title*=ex]`, s("", "", nil, []AttributeSelector{{Name: "title", Operator: "*=", Value: "ex"}})},
		{"Mixed", `a.external[target="_blank"]`, s("a", "", []string{"external"}, []AttributeSelector{{Name: "target", Operator: "=", Value: "_blank"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := ParseSelector(tt.input)
			require.NoError(t, err)
			require.Len(t, group, 1)
			require.Len(t, group[0].Selectors, 1)
			assert.Equal(t, tt.expected, group[0].Selectors[0].SimpleSelector)
		})
	}
}

func TestParsePseudoClasses(t *testing.T) {
	group, err := ParseSelector("li:first-child:hover, li:nth-child(2n+1)")
	require.NoError(t, err)
	require.Len(t, group, 2)

	first := group[0].Selectors[0].SimpleSelector
	assert.Equal(t, []PseudoClass{{Name: "first-child"}, {Name: "hover"}}, first.PseudoClasses)
	assert.Equal(t, Specificity{0, 2, 1}, group[0].Specificity())

	second := group[1].Selectors[0].SimpleSelector
	require.Len(t, second.PseudoClasses, 1)
	assert.Equal(t, Nth{A: 2, B: 1}, second.PseudoClasses[0].Nth)

	for _, bad := range []string{"a:visited-ish", "p::before", "li:nth-child(x)", "li:nth-child(2"} {
		_, err := ParseSelector(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCombinators(t *testing.T) {
	input := `
		div p,
		article > section,
		h1 + h2,
		h2 ~ p,
		.container .item>span
	`
	group, err := ParseSelector(input)
	require.NoError(t, err)
	require.Len(t, group, 5)

	expected := []ComplexSelector{
		cs(sc(CombinatorNone, s("div", "", nil, nil)), sc(CombinatorDescendant, s("p", "", nil, nil))),
		cs(sc(CombinatorNone, s("article", "", nil, nil)), sc(CombinatorChild, s("section", "", nil, nil))),
		cs(sc(CombinatorNone, s("h1", "", nil, nil)), sc(CombinatorAdjacentSibling, s("h2", "", nil, nil))),
		cs(sc(CombinatorNone, s("h2", "", nil, nil)), sc(CombinatorGeneralSibling, s("p", "", nil, nil))),
		cs(
			sc(CombinatorNone, s("", "", []string{"container"}, nil)),
			sc(CombinatorDescendant, s("", "", []string{"item"}, nil)),
			sc(CombinatorChild, s("span", "", nil, nil)),
		),
	}
	assert.Equal(t, expected, []ComplexSelector(group))
	assert.Equal(t, ".container .item > span", group[4].String())
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		selector string
		want     Specificity
	}{
		{"*", Specificity{0, 0, 0}},
		{"li", Specificity{0, 0, 1}},
		{"ul li", Specificity{0, 0, 2}},
		{"ul ol+li", Specificity{0, 0, 3}},
		{"h1 + *[rel=up]", Specificity{0, 1, 1}},
		{"ul ol li.red", Specificity{0, 1, 3}},
		{"li.red.level", Specificity{0, 2, 1}},
		{"#x34y", Specificity{1, 0, 0}},
		{"#s12:hover", Specificity{1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			group, err := ParseSelector(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, group[0].Specificity())
		})
	}

	t.Run("Tiers compare lexicographically", func(t *testing.T) {
		// Eleven classes never beat one id.
		assert.Equal(t, -1, Specificity{0, 11, 0}.Compare(Specificity{1, 0, 0}))
		assert.Equal(t, 1, Specificity{0, 1, 0}.Compare(Specificity{0, 0, 9}))
		assert.Equal(t, 0, Specificity{1, 2, 3}.Compare(Specificity{1, 2, 3}))
	})
}

func TestParseDeclarations(t *testing.T) {
	css := `
		p {
			color: red;
			margin : 1px  2px;
			font-family: "Open Sans", serif; /* trailing comment */
			width: 10px !important;
			background-color: rgb(1, 2, 3)
		}
	`
	sheet, errs := NewParser(css).Parse()
	assert.Empty(t, errs)
	require.Len(t, sheet.Rules, 1)
	rule := sheet.Rules[0]
	assert.Equal(t, 2, rule.Line)

	want := []Declaration{
		{Property: "color", Value: "red", Line: 3},
		{Property: "margin", Value: "1px  2px", Line: 4},
		{Property: "font-family", Value: `"Open Sans", serif`, Line: 5},
		{Property: "width", Value: "10px", Important: true, Line: 6},
		{Property: "background-color", Value: "rgb(1, 2, 3)", Line: 7},
	}
	assert.Equal(t, want, rule.Declarations)
}

func TestParseRecovery(t *testing.T) {
	css := strings.Join([]string{
		"a { color: blue; }",
		"p > { color: red; }",
		"div { width 10px; height: 5px; : x; }",
		"@media screen { a { color: green; } }",
		"span:unknown { color: red; }",
		"em { color: ; }",
		"b { color: black }",
	}, "\n")

	sheet, errs := NewParser(css).Parse()

	var selectors []string
	for _, r := range sheet.Rules {
		selectors = append(selectors, r.Selectors[0].String())
	}
	assert.Equal(t, []string{"a", "div", "em", "b"}, selectors)

	div := sheet.Rules[1]
	require.Len(t, div.Declarations, 1)
	assert.Equal(t, "height", div.Declarations[0].Property)
	assert.Empty(t, sheet.Rules[2].Declarations)

	var lines []int
	for _, e := range errs {
		lines = append(lines, e.Line)
	}
	assert.Equal(t, []int{2, 3, 3, 4, 5, 6}, lines)
}

func TestParseInlineDeclarations(t *testing.T) {
	decls, errs := ParseDeclarations("color: blue; width:50%;; bogus")
	require.Len(t, decls, 2)
	assert.Equal(t, "blue", decls[0].Value)
	assert.Equal(t, "50%", decls[1].Value)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "expected ':'")
}

func TestNth(t *testing.T) {
	tests := []struct {
		in      string
		want    Nth
		matches []int
		misses  []int
	}{
		{"odd", Nth{2, 1}, []int{1, 3, 5}, []int{2, 4}},
		{"even", Nth{2, 0}, []int{2, 4}, []int{1, 3}},
		{"3", Nth{0, 3}, []int{3}, []int{1, 6}},
		{"n", Nth{1, 0}, []int{1, 2, 9}, nil},
		{"-n+3", Nth{-1, 3}, []int{1, 2, 3}, []int{4, 5}},
		{"3n - 2", Nth{3, -2}, []int{1, 4, 7}, []int{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNth(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, i := range tt.matches {
				assert.True(t, got.Matches(i), "%s should match %d", tt.in, i)
			}
			for _, i := range tt.misses {
				assert.False(t, got.Matches(i), "%s should not match %d", tt.in, i)
			}
		})
	}

	for _, bad := range []string{"", "2n+", "abc", "n3"} {
		_, err := ParseNth(bad)
		assert.Error(t, err, bad)
	}
}
