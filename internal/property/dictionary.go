package property

import "sort"

// Dictionary maps property names to values. Keys are unique; precedence is
// decided before a value is stored.
type Dictionary map[string]Value

// Set stores v under name, replacing any previous value.
func (d Dictionary) Set(name string, v Value) { d[name] = v }

// Get returns the value stored under name.
func (d Dictionary) Get(name string) (Value, bool) {
	v, ok := d[name]
	return v, ok
}

// Overlay copies every entry of src into d, src winning on conflicts.
func (d Dictionary) Overlay(src Dictionary) {
	for k, v := range src {
		d[k] = v
	}
}

// Clone returns an independent copy.
func (d Dictionary) Clone() Dictionary {
	out := make(Dictionary, len(d))
	out.Overlay(d)
	return out
}

// Names returns the keys in sorted order.
func (d Dictionary) Names() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
