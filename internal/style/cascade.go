package style

import (
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/property"
)

// Resolve runs the cascade for n and returns a dictionary holding a specified
// value for every registered property. Values come from, in increasing
// precedence: the property's initial value, the parent's computed value for
// inherited properties, matched rules in ascending (specificity, source)
// order, and n's inline declarations. The CSS-wide keywords are replaced by
// the value they stand for, so the result holds neither "inherit" nor
// "initial".
func (e *Engine) Resolve(n *dom.Node, parent *property.ComputedValues) property.Dictionary {
	defs := e.registry.Definitions()
	dict := make(property.Dictionary, len(defs))
	for _, def := range defs {
		if def.Inherited && parent != nil {
			dict[def.Name] = parent.At(def.Index)
		} else {
			dict[def.Name] = def.Initial
		}
	}

	for _, m := range e.Match(n) {
		dict.Overlay(m.Rule.Declarations)
	}
	dict.Overlay(e.inlineDeclarations(n))

	for _, def := range defs {
		v := dict[def.Name]
		switch {
		case v.Is(property.KeywordInherit):
			if parent != nil {
				dict[def.Name] = parent.At(def.Index)
			} else {
				dict[def.Name] = def.Initial
			}
		case v.Is(property.KeywordInitial):
			dict[def.Name] = def.Initial
		}
	}
	return dict
}
