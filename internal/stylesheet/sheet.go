// Package stylesheet compiles parsed style sheet source into rules carrying
// typed declarations, specificity and source position, and matches them
// against elements.
package stylesheet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/parser"
	"github.com/xkilldash9x/stylebox/internal/property"
)

// Source is a rule's position: the sheet it came from and its index in that sheet.
type Source struct {
	Sheet int
	Index int
}

// Less orders sources; later sheets and later rules come after.
func (s Source) Less(o Source) bool {
	if s.Sheet != o.Sheet {
		return s.Sheet < o.Sheet
	}
	return s.Index < o.Index
}

// Rule is one complex selector and the declarations it applies. A rule set with
// a selector list yields one Rule per selector, all sharing a Source.
type Rule struct {
	Selector     parser.ComplexSelector
	Specificity  parser.Specificity
	Declarations property.Dictionary
	Source       Source
	Line         int
}

// Diagnostic records a dropped rule or declaration.
type Diagnostic struct {
	Sheet string
	Line  int
	Err   error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d: %v", d.Sheet, d.Line, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// StyleSheet is an ordered rule set. It is immutable once built and can be
// shared between contexts.
type StyleSheet struct {
	Name        string
	Rules       []*Rule
	Diagnostics []Diagnostic

	sheets int
	index  *ruleIndex
}

// Len returns the number of rules.
func (s *StyleSheet) Len() int { return len(s.Rules) }

// Sheets returns how many source sheets were concatenated into s.
func (s *StyleSheet) Sheets() int { return s.sheets }

// Parse compiles style sheet source. Invalid rules, invalid declarations and
// unknown properties are dropped, recorded as diagnostics and logged; the rest
// of the sheet still loads.
func Parse(name, src string, reg *property.Registry, logger *zap.Logger) *StyleSheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("sheet", name))

	parsed, syntaxErrs := parser.NewParser(src).Parse()
	sheet := &StyleSheet{Name: name, sheets: 1}
	for _, e := range syntaxErrs {
		sheet.drop(logger, e.Line, e)
	}

	for i, rs := range parsed.Rules {
		decls := compileDeclarations(rs.Declarations, reg, func(line int, err error) {
			sheet.drop(logger, line, err)
		}, logger)
		if len(decls) == 0 {
			continue
		}
		for _, sel := range rs.Selectors {
			sheet.Rules = append(sheet.Rules, &Rule{
				Selector:     sel,
				Specificity:  sel.Specificity(),
				Declarations: decls,
				Source:       Source{Sheet: 0, Index: i},
				Line:         rs.Line,
			})
		}
	}
	sheet.index = buildIndex(sheet.Rules)
	logger.Debug("Style sheet compiled.",
		zap.Int("rules", len(sheet.Rules)),
		zap.Int("diagnostics", len(sheet.Diagnostics)))
	return sheet
}

func (s *StyleSheet) drop(logger *zap.Logger, line int, err error) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{Sheet: s.Name, Line: line, Err: err})
	if property.IsUnknown(err) {
		logger.Warn("Unknown property dropped.", zap.Int("line", line), zap.Error(err))
		return
	}
	logger.Warn("Invalid style dropped.", zap.Int("line", line), zap.Error(err))
}

func compileDeclarations(raw []parser.Declaration, reg *property.Registry, drop func(int, error), logger *zap.Logger) property.Dictionary {
	dict := make(property.Dictionary, len(raw))
	for _, d := range raw {
		if d.Important {
			// Precedence stays inline > specificity > source order.
			logger.Debug("!important is ignored.", zap.String("property", d.Property), zap.Int("line", d.Line))
		}
		if err := reg.ParseInto(dict, d.Property, d.Value); err != nil {
			drop(d.Line, err)
		}
	}
	return dict
}

// ParseInline compiles the declarations of a style attribute. Errors are
// returned alongside whatever parsed successfully.
func ParseInline(src string, reg *property.Registry) (property.Dictionary, []error) {
	raw, syntaxErrs := parser.ParseDeclarations(src)
	var errs []error
	for _, e := range syntaxErrs {
		errs = append(errs, e)
	}
	dict := compileDeclarations(raw, reg, func(_ int, err error) { errs = append(errs, err) }, zap.NewNop())
	return dict, errs
}

// Merge concatenates sheets in order. Later sheets win source-order ties. Rules
// are not deduplicated.
func Merge(sheets ...*StyleSheet) *StyleSheet {
	out := &StyleSheet{Name: "merged"}
	for _, s := range sheets {
		if s == nil {
			continue
		}
		for _, r := range s.Rules {
			cp := *r
			cp.Source.Sheet += out.sheets
			out.Rules = append(out.Rules, &cp)
		}
		out.Diagnostics = append(out.Diagnostics, s.Diagnostics...)
		out.sheets += s.sheets
	}
	out.index = buildIndex(out.Rules)
	return out
}
