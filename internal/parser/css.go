// Package parser reads style sheet source: selector groups and raw property
// declarations. Values are left as text for the property registry to interpret.
package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Declaration is a raw property: value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
	Line      int
}

// RuleSet is a selector group and the declarations it applies.
type RuleSet struct {
	Selectors    SelectorGroup
	Declarations []Declaration
	Line         int
}

// StyleSheet is the parsed form of one source text.
type StyleSheet struct {
	Rules []RuleSet
}

// SelectorGroup is a comma-separated list of selectors (e.g., "h1, h2 .title").
type SelectorGroup []ComplexSelector

// ComplexSelector is a sequence of simple selectors joined by combinators (e.g., "div > p").
type ComplexSelector struct {
	Selectors []SimpleSelectorWithCombinator
}

// SimpleSelectorWithCombinator pairs a simple selector with the combinator that
// relates it to the selector before it.
type SimpleSelectorWithCombinator struct {
	Combinator     Combinator
	SimpleSelector SimpleSelector
}

// SimpleSelector is a compound of type, id, class, attribute and pseudo-class tests.
type SimpleSelector struct {
	TagName       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoClass
}

// AttributeSelector represents `[href]` or `[target="_blank"]`.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// PseudoClass is a single-colon pseudo-class. Nth is only set for nth-child.
type PseudoClass struct {
	Name string
	Nth  Nth
}

// Combinator defines the relationship between simple selectors.
type Combinator int

const (
	CombinatorNone            Combinator = iota // first selector
	CombinatorDescendant                        // whitespace
	CombinatorChild                             // >
	CombinatorAdjacentSibling                   // +
	CombinatorGeneralSibling                    // ~
)

func (c Combinator) String() string {
	switch c {
	case CombinatorDescendant:
		return " "
	case CombinatorChild:
		return " > "
	case CombinatorAdjacentSibling:
		return " + "
	case CombinatorGeneralSibling:
		return " ~ "
	}
	return ""
}

// Pseudo-classes understood by the matcher.
var knownPseudoClasses = map[string]bool{
	"hover":       true,
	"active":      true,
	"focus":       true,
	"checked":     true,
	"disabled":    true,
	"first-child": true,
	"last-child":  true,
	"only-child":  true,
	"empty":       true,
	"root":        true,
	"nth-child":   true,
}

// Specificity is the (ids, classes+attributes+pseudo-classes, types) tuple.
// Tiers are compared lexicographically and never summed.
type Specificity struct {
	A, B, C int
}

// Compare returns -1, 0 or 1.
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.A != o.A:
		return cmpInt(s.A, o.A)
	case s.B != o.B:
		return cmpInt(s.B, o.B)
	default:
		return cmpInt(s.C, o.C)
	}
}

func (s Specificity) String() string { return fmt.Sprintf("(%d,%d,%d)", s.A, s.B, s.C) }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Specificity sums the tiers of every compound in the selector.
func (cs ComplexSelector) Specificity() Specificity {
	var total Specificity
	for _, s := range cs.Selectors {
		sp := s.SimpleSelector.Specificity()
		total.A += sp.A
		total.B += sp.B
		total.C += sp.C
	}
	return total
}

// Specificity of a single compound selector.
func (s SimpleSelector) Specificity() Specificity {
	var sp Specificity
	if s.ID != "" {
		sp.A = 1
	}
	sp.B = len(s.Classes) + len(s.Attributes) + len(s.PseudoClasses)
	if s.TagName != "" && s.TagName != "*" {
		sp.C = 1
	}
	return sp
}

// IsValid checks if the selector has at least one component.
func (s SimpleSelector) IsValid() bool {
	return s.TagName != "" || s.ID != "" || len(s.Classes) > 0 || len(s.Attributes) > 0 || len(s.PseudoClasses) > 0
}

func (s SimpleSelector) String() string {
	var b strings.Builder
	b.WriteString(s.TagName)
	if s.ID != "" {
		b.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	for _, a := range s.Attributes {
		if a.Operator == "" {
			fmt.Fprintf(&b, "[%s]", a.Name)
		} else {
			fmt.Fprintf(&b, "[%s%s%q]", a.Name, a.Operator, a.Value)
		}
	}
	for _, pc := range s.PseudoClasses {
		if pc.Name == "nth-child" {
			fmt.Fprintf(&b, ":nth-child(%s)", pc.Nth)
		} else {
			b.WriteString(":" + pc.Name)
		}
	}
	return b.String()
}

func (cs ComplexSelector) String() string {
	var b strings.Builder
	for _, s := range cs.Selectors {
		b.WriteString(s.Combinator.String())
		b.WriteString(s.SimpleSelector.String())
	}
	return b.String()
}

// SyntaxError reports a dropped rule or declaration.
type SyntaxError struct {
	Line   int
	Column int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Reason)
}

// Parser holds the state of the style sheet parser.
type Parser struct {
	input      string
	pos        int
	lineStarts []int
	errs       []*SyntaxError
}

func NewParser(input string) *Parser {
	starts := []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Parser{input: input, lineStarts: starts}
}

// Parse reads every rule set. Malformed rules and declarations are dropped and
// reported; parsing always continues to the end of the input.
func (p *Parser) Parse() (StyleSheet, []*SyntaxError) {
	var rules []RuleSet
	for {
		p.skipSpaceAndComments()
		if p.eof() {
			break
		}

		if p.currentChar() == '@' {
			start := p.pos
			p.skipAtRule()
			p.errorAt(start, "unsupported at-rule %q", strings.TrimSpace(firstLine(p.input[start:p.pos])))
			continue
		}
		if p.currentChar() == '}' {
			p.errorAt(p.pos, "unexpected '}'")
			p.pos++
			continue
		}

		start := p.pos
		group, err := p.parseSelectorGroup()
		if err != nil {
			p.errs = append(p.errs, err)
			p.skipTo('{')
			if !p.eof() {
				p.consumeChar()
				p.skipBlock('{', '}')
			}
			continue
		}
		if p.eof() {
			p.errorAt(start, "unexpected end of input after selector")
			break
		}

		p.consumeChar() // '{'
		decls := p.parseDeclarationList(true)
		rules = append(rules, RuleSet{Selectors: group, Declarations: decls, Line: p.lineOf(start)})
	}
	return StyleSheet{Rules: rules}, p.errs
}

// ParseDeclarations reads a bare declaration list such as an inline style attribute.
func ParseDeclarations(input string) ([]Declaration, []*SyntaxError) {
	p := NewParser(input)
	decls := p.parseDeclarationList(false)
	return decls, p.errs
}

// ParseSelector parses a selector group on its own.
func ParseSelector(input string) (SelectorGroup, error) {
	p := NewParser(input + "{")
	group, err := p.parseSelectorGroup()
	if err != nil {
		return nil, err
	}
	return group, nil
}

// parseSelectorGroup parses a comma-separated list of complex selectors ending at '{'.
// Any invalid member invalidates the whole group.
func (p *Parser) parseSelectorGroup() (SelectorGroup, *SyntaxError) {
	var group SelectorGroup
	for {
		p.skipSpaceAndComments()
		complex, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		group = append(group, complex)

		p.skipSpaceAndComments()
		if p.eof() || p.currentChar() == '{' {
			return group, nil
		}
		if p.currentChar() != ',' {
			return nil, p.newError(p.pos, "unexpected %q in selector", p.currentChar())
		}
		p.consumeChar()
	}
}

// parseComplexSelector parses a sequence of simple selectors and combinators.
func (p *Parser) parseComplexSelector() (ComplexSelector, *SyntaxError) {
	var complexSelector ComplexSelector
	combinator := CombinatorNone

	for {
		p.skipSpaceAndComments()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			return complexSelector, p.newError(p.pos, "empty selector")
		}

		simple, err := p.parseSimpleSelector()
		if err != nil {
			return complexSelector, err
		}
		complexSelector.Selectors = append(complexSelector.Selectors, SimpleSelectorWithCombinator{
			Combinator:     combinator,
			SimpleSelector: simple,
		})

		sawSpace := p.skipSpaceAndComments()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			return complexSelector, nil
		}

		switch p.currentChar() {
		case '>':
			combinator = CombinatorChild
			p.consumeChar()
		case '+':
			combinator = CombinatorAdjacentSibling
			p.consumeChar()
		case '~':
			combinator = CombinatorGeneralSibling
			p.consumeChar()
		default:
			if !sawSpace {
				return complexSelector, p.newError(p.pos, "unexpected %q in selector", p.currentChar())
			}
			combinator = CombinatorDescendant
		}
		if combinator != CombinatorDescendant {
			p.skipSpaceAndComments()
			if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
				return complexSelector, p.newError(p.pos, "dangling combinator")
			}
		}
	}
}

// parseSimpleSelector parses a single compound selector (e.g., div#id.class:hover).
func (p *Parser) parseSimpleSelector() (SimpleSelector, *SyntaxError) {
	selector := SimpleSelector{}
	start := p.pos

	if ch := p.currentChar(); ch == '*' {
		p.consumeChar()
		selector.TagName = "*"
	} else if isValidIdentifierStart(ch) {
		selector.TagName = strings.ToLower(p.parseIdentifier())
	}

	for !p.eof() {
		switch p.currentChar() {
		case '#':
			p.consumeChar()
			id := p.parseIdentifier()
			if id == "" {
				return selector, p.newError(p.pos, "expected identifier after '#'")
			}
			selector.ID = id
		case '.':
			p.consumeChar()
			class := p.parseIdentifier()
			if class == "" {
				return selector, p.newError(p.pos, "expected identifier after '.'")
			}
			selector.Classes = append(selector.Classes, class)
		case '[':
			p.consumeChar()
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return selector, err
			}
			selector.Attributes = append(selector.Attributes, attr)
		case ':':
			pc, err := p.parsePseudoClass()
			if err != nil {
				return selector, err
			}
			selector.PseudoClasses = append(selector.PseudoClasses, pc)
		default:
			goto done
		}
	}

done:
	if !selector.IsValid() {
		return selector, p.newError(start, "expected selector, found %q", p.currentChar())
	}
	return selector, nil
}

// parseAttributeSelector parses the contents of `[...]`; the opening bracket is already consumed.
func (p *Parser) parseAttributeSelector() (AttributeSelector, *SyntaxError) {
	p.consumeWhitespace()
	name := strings.ToLower(p.parseIdentifier())
	if name == "" {
		return AttributeSelector{}, p.newError(p.pos, "expected attribute name")
	}
	p.consumeWhitespace()

	if p.eof() {
		return AttributeSelector{}, p.newError(p.pos, "unexpected end of input in attribute selector")
	}
	if p.currentChar() == ']' {
		p.consumeChar()
		return AttributeSelector{Name: name}, nil
	}

	var operator string
	switch {
	case p.currentChar() == '=':
		operator = "="
		p.consumeChar()
	case strings.ContainsRune("~|^$*", rune(p.currentChar())) && p.peek(1) == '=':
		operator = p.input[p.pos : p.pos+2]
		p.pos += 2
	default:
		return AttributeSelector{}, p.newError(p.pos, "invalid attribute operator %q", p.currentChar())
	}
	p.consumeWhitespace()

	var value string
	if ch := p.currentChar(); ch == '"' || ch == '\'' {
		p.consumeChar()
		start := p.pos
		for !p.eof() && p.currentChar() != ch {
			p.pos++
		}
		if p.eof() {
			return AttributeSelector{}, p.newError(start, "unterminated string in attribute selector")
		}
		value = p.input[start:p.pos]
		p.consumeChar()
	} else {
		value = p.parseIdentifier()
	}
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ']' {
		return AttributeSelector{}, p.newError(p.pos, "expected ']' to close attribute selector")
	}
	p.consumeChar()
	return AttributeSelector{Name: name, Operator: operator, Value: value}, nil
}

func (p *Parser) parsePseudoClass() (PseudoClass, *SyntaxError) {
	start := p.pos
	p.consumeChar() // ':'
	if p.currentChar() == ':' {
		return PseudoClass{}, p.newError(start, "pseudo-elements are not supported")
	}
	name := strings.ToLower(p.parseIdentifier())
	if !knownPseudoClasses[name] {
		return PseudoClass{}, p.newError(start, "unknown pseudo-class %q", ":"+name)
	}
	pc := PseudoClass{Name: name}
	if name != "nth-child" {
		return pc, nil
	}

	if p.currentChar() != '(' {
		return PseudoClass{}, p.newError(p.pos, "expected '(' after :nth-child")
	}
	p.consumeChar()
	argStart := p.pos
	p.skipTo(')', '{')
	if p.currentChar() != ')' {
		return PseudoClass{}, p.newError(argStart, "unterminated :nth-child argument")
	}
	nth, err := ParseNth(p.input[argStart:p.pos])
	if err != nil {
		return PseudoClass{}, p.newError(argStart, "%v", err)
	}
	p.consumeChar()
	pc.Nth = nth
	return pc, nil
}

// parseDeclarationList parses declarations up to '}' (braced) or end of input.
func (p *Parser) parseDeclarationList(braced bool) []Declaration {
	var declarations []Declaration
	for {
		p.skipSpaceAndComments()
		if p.eof() {
			if braced {
				p.errorAt(p.pos, "unexpected end of input in declaration block")
			}
			return declarations
		}
		switch p.currentChar() {
		case '}':
			if braced {
				p.consumeChar()
				return declarations
			}
			p.errorAt(p.pos, "unexpected '}'")
			p.consumeChar()
			continue
		case ';':
			p.consumeChar()
			continue
		}

		if decl, ok := p.parseDeclaration(); ok {
			declarations = append(declarations, decl)
		}
	}
}

// parseDeclaration parses a single 'property: value;' pair. Malformed input is
// reported and skipped up to the next ';' or '}'.
func (p *Parser) parseDeclaration() (Declaration, bool) {
	start := p.pos
	fail := func(format string, args ...any) (Declaration, bool) {
		p.errorAt(start, format, args...)
		p.skipValue()
		if !p.eof() && p.currentChar() == ';' {
			p.consumeChar()
		}
		return Declaration{}, false
	}

	if !isValidIdentifierStart(p.currentChar()) {
		return fail("expected property name, found %q", p.currentChar())
	}
	prop := strings.ToLower(p.parseIdentifier())
	p.skipSpaceAndComments()

	if p.eof() || p.currentChar() != ':' {
		return fail("expected ':' after property %q", prop)
	}
	p.consumeChar()
	p.consumeWhitespace()

	val := p.parseValue()
	important := false
	if lower := strings.ToLower(val); strings.HasSuffix(lower, "important") {
		if bang := strings.LastIndexByte(val, '!'); bang >= 0 && strings.TrimSpace(lower[bang+1:]) == "important" {
			important = true
			val = strings.TrimSpace(val[:bang])
		}
	}
	if val == "" {
		return fail("empty value for property %q", prop)
	}

	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	return Declaration{Property: prop, Value: val, Important: important, Line: p.lineOf(start)}, true
}

// parseValue reads a value until a delimiter, stripping comments.
func (p *Parser) parseValue() string {
	var b strings.Builder
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if p.startsWith("/*") {
			b.WriteString(p.input[start:p.pos])
			b.WriteByte(' ')
			p.skipComment()
			start = p.pos
			continue
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	b.WriteString(p.input[start:p.pos])
	return strings.TrimSpace(b.String())
}

// skipValue advances to the next ';' or '}' outside strings and parentheses.
func (p *Parser) skipValue() { _ = p.parseValue() }

// -- Lexer-like Helpers --

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peek(n int) byte {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *Parser) consumeWhitespace() bool {
	start := p.pos
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
	return p.pos > start
}

// skipSpaceAndComments reports whether anything was skipped.
func (p *Parser) skipSpaceAndComments() bool {
	skipped := false
	for {
		if p.consumeWhitespace() {
			skipped = true
		}
		if !p.startsWith("/*") {
			return skipped
		}
		p.skipComment()
		skipped = true
	}
}

func (p *Parser) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) skipComment() {
	p.pos += 2
	endIndex := strings.Index(p.input[p.pos:], "*/")
	if endIndex == -1 {
		p.errorAt(p.pos-2, "unterminated comment")
		p.pos = len(p.input)
	} else {
		p.pos += endIndex + 2
	}
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

// skipBlock consumes up to and including the close that balances an already consumed open.
func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		c := p.currentChar()
		if c == '"' || c == '\'' {
			p.skipQuotedString(c)
			continue
		}
		p.pos++
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar() // opening quote
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *Parser) skipAtRule() {
	p.consumeChar() // '@'
	_ = p.parseIdentifier()
	for !p.eof() {
		ch := p.currentChar()
		if ch == '{' {
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		}
		if ch == ';' {
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isValidIdentifierChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *Parser) lineOf(pos int) int {
	return sort.Search(len(p.lineStarts), func(i int) bool { return p.lineStarts[i] > pos })
}

func (p *Parser) newError(pos int, format string, args ...any) *SyntaxError {
	line := p.lineOf(pos)
	return &SyntaxError{
		Line:   line,
		Column: pos - p.lineStarts[line-1] + 1,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (p *Parser) errorAt(pos int, format string, args ...any) {
	p.errs = append(p.errs, p.newError(pos, format, args...))
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "{\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isValidIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-' || ch >= 0x80
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || (ch >= '0' && ch <= '9')
}
