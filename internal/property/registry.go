package property

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Definition describes one registered property. Definitions never change once registered.
type Definition struct {
	Name          string
	Index         int
	Grammar       Grammar
	Initial       Value
	Inherited     bool
	AffectsLayout bool
}

// Registry owns every recognised property and shorthand. It is populated once at
// startup and must be sealed before it is shared; a sealed registry is safe for
// concurrent reads.
type Registry struct {
	defs       []*Definition
	byName     map[string]*Definition
	shorthands map[string]*Shorthand
	sealed     bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]*Definition),
		shorthands: make(map[string]*Shorthand),
	}
}

// Register declares a property. The initial value is parsed with the property's own grammar.
func (r *Registry) Register(name string, grammar Grammar, initial string, inherited, affectsLayout bool) (*Definition, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if r.sealed {
		return nil, fmt.Errorf("register %q: %w", name, ErrRegistrySealed)
	}
	if name == "" {
		return nil, fmt.Errorf("register: empty property name")
	}
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("register %q: %w", name, ErrDuplicateProperty)
	}
	if _, ok := r.shorthands[name]; ok {
		return nil, fmt.Errorf("register %q: %w", name, ErrDuplicateProperty)
	}
	v, err := grammar.Parse(initial)
	if err != nil {
		return nil, fmt.Errorf("register %q: initial value: %w", name,
			&ParseError{Property: name, Value: initial, Reason: err.Error()})
	}

	def := &Definition{
		Name:          name,
		Index:         len(r.defs),
		Grammar:       grammar,
		Initial:       v,
		Inherited:     inherited,
		AffectsLayout: affectsLayout,
	}
	r.defs = append(r.defs, def)
	r.byName[name] = def
	return def, nil
}

// MustRegister is Register for static setup tables; it panics on error.
func (r *Registry) MustRegister(name string, grammar Grammar, initial string, inherited, affectsLayout bool) *Definition {
	def, err := r.Register(name, grammar, initial, inherited, affectsLayout)
	if err != nil {
		panic(err)
	}
	return def
}

// Seal freezes the registry.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// Len returns the number of registered longhand properties.
func (r *Registry) Len() int { return len(r.defs) }

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, error) {
	if def, ok := r.byName[strings.ToLower(name)]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownProperty)
}

// At returns the definition with the given index.
func (r *Registry) At(index int) *Definition { return r.defs[index] }

// Definitions returns every definition in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Names returns the sorted names of all longhands and shorthands.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs)+len(r.shorthands))
	for _, d := range r.defs {
		names = append(names, d.Name)
	}
	for n := range r.shorthands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsShorthand reports whether name is a registered shorthand.
func (r *Registry) IsShorthand(name string) bool {
	_, ok := r.shorthands[strings.ToLower(name)]
	return ok
}

// Parse parses raw text for a single longhand property. The CSS-wide keywords
// "inherit" and "initial" are accepted for every property.
func (r *Registry) Parse(name, raw string) (Value, error) {
	def, err := r.Lookup(name)
	if err != nil {
		return Value{}, err
	}
	return r.parseDef(def, raw)
}

func (r *Registry) parseDef(def *Definition, raw string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case KeywordInherit:
		return Keyword(KeywordInherit), nil
	case KeywordInitial:
		return Keyword(KeywordInitial), nil
	}
	v, err := def.Grammar.Parse(raw)
	if err != nil {
		return Value{}, &ParseError{Property: def.Name, Value: strings.TrimSpace(raw), Reason: err.Error()}
	}
	return v, nil
}

// ParseInto parses a declaration, expanding shorthands, and stores the resulting
// longhand values in dict. Nothing is stored when any part fails to parse.
func (r *Registry) ParseInto(dict Dictionary, name, raw string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	staged := make(Dictionary)
	if sh, ok := r.shorthands[name]; ok {
		if err := r.expand(sh, raw, staged); err != nil {
			return err
		}
	} else {
		def, err := r.Lookup(name)
		if err != nil {
			return err
		}
		v, err := r.parseDef(def, raw)
		if err != nil {
			return err
		}
		staged[def.Name] = v
	}
	for k, v := range staged {
		dict[k] = v
	}
	return nil
}

// IsUnknown reports whether err came from a declaration naming an unregistered property.
func IsUnknown(err error) bool { return errors.Is(err, ErrUnknownProperty) }
