package property

import (
	"fmt"
	"strings"
)

// ShorthandKind selects how a shorthand's value is distributed over its longhands.
type ShorthandKind uint8

const (
	// ShorthandBox maps 1-4 values onto top/right/bottom/left, or 1-2 values onto a pair.
	ShorthandBox ShorthandKind = iota
	// ShorthandReplicate hands the full value to every longhand.
	ShorthandReplicate
	// ShorthandFallThrough gives each token to the first unassigned longhand that accepts it.
	ShorthandFallThrough
)

// Shorthand names a group of properties set by a single declaration. Longhands may
// themselves be shorthands.
type Shorthand struct {
	Name      string
	Kind      ShorthandKind
	Longhands []string
}

// RegisterShorthand declares a shorthand over already registered properties or shorthands.
func (r *Registry) RegisterShorthand(name string, kind ShorthandKind, longhands ...string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if r.sealed {
		return fmt.Errorf("register shorthand %q: %w", name, ErrRegistrySealed)
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("register shorthand %q: %w", name, ErrDuplicateProperty)
	}
	if _, ok := r.shorthands[name]; ok {
		return fmt.Errorf("register shorthand %q: %w", name, ErrDuplicateProperty)
	}
	if len(longhands) == 0 {
		return fmt.Errorf("register shorthand %q: no longhands", name)
	}
	if kind == ShorthandBox && len(longhands) != 2 && len(longhands) != 4 {
		return fmt.Errorf("register shorthand %q: box shorthands need 2 or 4 longhands", name)
	}
	for _, lh := range longhands {
		_, isDef := r.byName[lh]
		_, isShort := r.shorthands[lh]
		if !isDef && !isShort {
			return fmt.Errorf("register shorthand %q: longhand %q: %w", name, lh, ErrUnknownProperty)
		}
	}
	r.shorthands[name] = &Shorthand{Name: name, Kind: kind, Longhands: append([]string(nil), longhands...)}
	return nil
}

// expand resolves a shorthand value into staged longhand values.
func (r *Registry) expand(sh *Shorthand, raw string, out Dictionary) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return &ParseError{Property: sh.Name, Value: text, Reason: "empty value"}
	}
	switch strings.ToLower(text) {
	case KeywordInherit, KeywordInitial:
		return r.assignAll(sh, strings.ToLower(text), out)
	}

	switch sh.Kind {
	case ShorthandReplicate:
		for _, lh := range sh.Longhands {
			if err := r.assign(lh, text, out); err != nil {
				return err
			}
		}
		return nil

	case ShorthandBox:
		tokens := Fields(text)
		values, ok := boxValues(tokens, len(sh.Longhands))
		if !ok {
			return &ParseError{Property: sh.Name, Value: text, Reason: fmt.Sprintf("expected 1 to %d values", len(sh.Longhands))}
		}
		for i, lh := range sh.Longhands {
			if err := r.assign(lh, values[i], out); err != nil {
				return err
			}
		}
		return nil

	case ShorthandFallThrough:
		used := make([]bool, len(sh.Longhands))
		for _, tok := range Fields(text) {
			placed := false
			for i, lh := range sh.Longhands {
				if used[i] {
					continue
				}
				trial := make(Dictionary)
				if err := r.assign(lh, tok, trial); err != nil {
					continue
				}
				out.Overlay(trial)
				used[i] = true
				placed = true
				break
			}
			if !placed {
				return &ParseError{Property: sh.Name, Value: text, Reason: fmt.Sprintf("unexpected token %q", tok)}
			}
		}
		return nil
	}
	return fmt.Errorf("shorthand %q: unsupported kind %d", sh.Name, sh.Kind)
}

func (r *Registry) assign(name, raw string, out Dictionary) error {
	if sh, ok := r.shorthands[name]; ok {
		return r.expand(sh, raw, out)
	}
	def, err := r.Lookup(name)
	if err != nil {
		return err
	}
	v, err := r.parseDef(def, raw)
	if err != nil {
		return err
	}
	out[def.Name] = v
	return nil
}

func (r *Registry) assignAll(sh *Shorthand, keyword string, out Dictionary) error {
	for _, lh := range sh.Longhands {
		if inner, ok := r.shorthands[lh]; ok {
			if err := r.assignAll(inner, keyword, out); err != nil {
				return err
			}
			continue
		}
		out[lh] = Keyword(keyword)
	}
	return nil
}

// boxValues distributes tokens in CSS edge order.
func boxValues(tokens []string, n int) ([]string, bool) {
	if len(tokens) == 0 || len(tokens) > n {
		return nil, false
	}
	if n == 2 {
		if len(tokens) == 1 {
			return []string{tokens[0], tokens[0]}, true
		}
		return tokens, true
	}
	switch len(tokens) {
	case 1:
		return []string{tokens[0], tokens[0], tokens[0], tokens[0]}, true
	case 2:
		return []string{tokens[0], tokens[1], tokens[0], tokens[1]}, true
	case 3:
		return []string{tokens[0], tokens[1], tokens[2], tokens[1]}, true
	}
	return tokens, true
}
