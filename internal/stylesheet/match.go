package stylesheet

import (
	"sort"
	"strings"

	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/parser"
)

// Match is a rule that applies to an element.
type Match struct {
	Rule        *Rule
	Specificity parser.Specificity
}

// ruleIndex buckets rules by the most selective key of their rightmost compound
// so an element only tests plausible candidates.
type ruleIndex struct {
	byID      map[string][]*Rule
	byClass   map[string][]*Rule
	byTag     map[string][]*Rule
	universal []*Rule
}

func buildIndex(rules []*Rule) *ruleIndex {
	idx := &ruleIndex{
		byID:    make(map[string][]*Rule),
		byClass: make(map[string][]*Rule),
		byTag:   make(map[string][]*Rule),
	}
	for _, r := range rules {
		key := r.Selector.Selectors[len(r.Selector.Selectors)-1].SimpleSelector
		switch {
		case key.ID != "":
			idx.byID[key.ID] = append(idx.byID[key.ID], r)
		case len(key.Classes) > 0:
			idx.byClass[key.Classes[0]] = append(idx.byClass[key.Classes[0]], r)
		case key.TagName != "" && key.TagName != "*":
			idx.byTag[key.TagName] = append(idx.byTag[key.TagName], r)
		default:
			idx.universal = append(idx.universal, r)
		}
	}
	return idx
}

func (idx *ruleIndex) candidates(n *dom.Node) []*Rule {
	out := append([]*Rule(nil), idx.universal...)
	out = append(out, idx.byTag[n.Tag()]...)
	if id := n.ID(); id != "" {
		out = append(out, idx.byID[id]...)
	}
	seen := make(map[string]bool, len(n.Classes()))
	for _, c := range n.Classes() {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, idx.byClass[c]...)
	}
	return out
}

// Match returns the rules applying to n, in ascending cascade order: lower
// specificity first, then earlier source. When several selectors of one rule
// set match, the rule set applies once with its highest specificity.
func (s *StyleSheet) Match(n *dom.Node) []Match {
	if n == nil || !n.IsElement() || s.index == nil {
		return nil
	}

	best := make(map[Source]int)
	var matches []Match
	for _, r := range s.index.candidates(n) {
		if !MatchesSelector(n, r.Selector) {
			continue
		}
		if i, ok := best[r.Source]; ok {
			if r.Specificity.Compare(matches[i].Specificity) > 0 {
				matches[i] = Match{Rule: r, Specificity: r.Specificity}
			}
			continue
		}
		best[r.Source] = len(matches)
		matches = append(matches, Match{Rule: r, Specificity: r.Specificity})
	}

	sort.Slice(matches, func(i, j int) bool {
		if c := matches[i].Specificity.Compare(matches[j].Specificity); c != 0 {
			return c < 0
		}
		return matches[i].Rule.Source.Less(matches[j].Rule.Source)
	})
	return matches
}

// MatchesSelector reports whether the complex selector matches n.
func MatchesSelector(n *dom.Node, cs parser.ComplexSelector) bool {
	if len(cs.Selectors) == 0 {
		return false
	}
	return recursiveMatch(n, cs, len(cs.Selectors)-1)
}

func recursiveMatch(n *dom.Node, cs parser.ComplexSelector, index int) bool {
	if n == nil || index < 0 || !n.IsElement() {
		return false
	}
	current := cs.Selectors[index]
	if !matchesSimple(n, current.SimpleSelector) {
		return false
	}
	if index == 0 {
		return true
	}
	next := index - 1
	switch current.Combinator {
	case parser.CombinatorDescendant:
		for p := n.Parent(); p != nil; p = p.Parent() {
			if recursiveMatch(p, cs, next) {
				return true
			}
		}
		return false
	case parser.CombinatorChild:
		return recursiveMatch(n.Parent(), cs, next)
	case parser.CombinatorAdjacentSibling:
		return recursiveMatch(n.PreviousElementSibling(), cs, next)
	case parser.CombinatorGeneralSibling:
		for sib := n.PreviousElementSibling(); sib != nil; sib = sib.PreviousElementSibling() {
			if recursiveMatch(sib, cs, next) {
				return true
			}
		}
		return false
	}
	return false
}

func matchesSimple(n *dom.Node, sel parser.SimpleSelector) bool {
	if sel.TagName != "" && sel.TagName != "*" && n.Tag() != sel.TagName {
		return false
	}
	if sel.ID != "" && n.ID() != sel.ID {
		return false
	}
	for _, c := range sel.Classes {
		if !n.HasClass(c) {
			return false
		}
	}
	for _, a := range sel.Attributes {
		if !matchesAttribute(n, a) {
			return false
		}
	}
	for _, pc := range sel.PseudoClasses {
		if !matchesPseudoClass(n, pc) {
			return false
		}
	}
	return true
}

func matchesAttribute(n *dom.Node, sel parser.AttributeSelector) bool {
	actual, found := n.Attr(sel.Name)
	if !found {
		return false
	}
	switch sel.Operator {
	case "":
		return true
	case "=":
		return actual == sel.Value
	case "~=":
		for _, word := range strings.Fields(actual) {
			if word == sel.Value {
				return true
			}
		}
		return false
	case "|=":
		return actual == sel.Value || strings.HasPrefix(actual, sel.Value+"-")
	case "^=":
		return sel.Value != "" && strings.HasPrefix(actual, sel.Value)
	case "$=":
		return sel.Value != "" && strings.HasSuffix(actual, sel.Value)
	case "*=":
		return sel.Value != "" && strings.Contains(actual, sel.Value)
	}
	return false
}

func matchesPseudoClass(n *dom.Node, pc parser.PseudoClass) bool {
	switch pc.Name {
	case "first-child":
		idx, _ := n.ElementIndex()
		return idx == 1
	case "last-child":
		idx, count := n.ElementIndex()
		return idx == count
	case "only-child":
		_, count := n.ElementIndex()
		return count == 1
	case "nth-child":
		idx, _ := n.ElementIndex()
		return pc.Nth.Matches(idx)
	case "empty":
		return n.IsEmpty()
	case "root":
		return n.Parent() == nil
	case "disabled", "checked":
		if _, ok := n.Attr(pc.Name); ok {
			return true
		}
		return n.PseudoClass(pc.Name)
	default:
		return n.PseudoClass(pc.Name)
	}
}
