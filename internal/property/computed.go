package property

// Change is a bit set describing how two snapshots differ.
type Change uint8

const (
	ChangedValue Change = 1 << iota
	ChangedLayout
	ChangedInherited
)

// ComputedValues is one element's complete snapshot of every registered property.
// It is indexed by definition index, so a value can never be missing.
type ComputedValues struct {
	registry *Registry
	values   []Value
}

// NewComputedValues returns a snapshot holding every property's initial value.
func NewComputedValues(r *Registry) *ComputedValues {
	cv := &ComputedValues{registry: r, values: make([]Value, len(r.defs))}
	for i, def := range r.defs {
		cv.values[i] = def.Initial
	}
	return cv
}

func (c *ComputedValues) Registry() *Registry { return c.registry }
func (c *ComputedValues) Len() int            { return len(c.values) }
func (c *ComputedValues) At(index int) Value  { return c.values[index] }

// Set replaces the value at a definition index.
func (c *ComputedValues) Set(index int, v Value) { c.values[index] = v }

// Get returns the value of the named property. Unknown names yield false.
func (c *ComputedValues) Get(name string) (Value, bool) {
	def, ok := c.registry.byName[name]
	if !ok {
		return Value{}, false
	}
	return c.values[def.Index], true
}

// Value returns the named property or the zero Value for unknown names.
func (c *ComputedValues) Value(name string) Value {
	v, _ := c.Get(name)
	return v
}

// Px returns a pixel length, or 0 when the value is not a pixel length.
func (c *ComputedValues) Px(name string) float64 {
	v := c.Value(name)
	if v.IsPx() {
		return v.Num
	}
	return 0
}

// Number returns a numeric value, accepting plain numbers and pixel lengths.
func (c *ComputedValues) Number(name string) float64 {
	v := c.Value(name)
	if v.Kind == KindNumber || v.IsPx() {
		return v.Num
	}
	return 0
}

// Keyword returns the keyword, or "" when the value is not a keyword.
func (c *ComputedValues) Keyword(name string) string {
	v := c.Value(name)
	if v.Kind == KindKeyword {
		return v.Keyword
	}
	return ""
}

// Color returns a color value, or transparent when the value is not a color.
func (c *ComputedValues) Color(name string) Color {
	v := c.Value(name)
	if v.Kind == KindColor {
		return v.Color
	}
	return Transparent
}

// Clone returns an independent copy.
func (c *ComputedValues) Clone() *ComputedValues {
	out := &ComputedValues{registry: c.registry, values: make([]Value, len(c.values))}
	copy(out.values, c.values)
	return out
}

// Diff reports how o differs from c. A nil o differs in every way.
func (c *ComputedValues) Diff(o *ComputedValues) Change {
	if o == nil || len(o.values) != len(c.values) {
		return ChangedValue | ChangedLayout | ChangedInherited
	}
	var ch Change
	for i, v := range c.values {
		if v.Equal(o.values[i]) {
			continue
		}
		ch |= ChangedValue
		def := c.registry.defs[i]
		if def.AffectsLayout {
			ch |= ChangedLayout
		}
		if def.Inherited {
			ch |= ChangedInherited
		}
	}
	return ch
}

// Dictionary exports the snapshot keyed by property name.
func (c *ComputedValues) Dictionary() Dictionary {
	d := make(Dictionary, len(c.values))
	for i, v := range c.values {
		d[c.registry.defs[i].Name] = v
	}
	return d
}
