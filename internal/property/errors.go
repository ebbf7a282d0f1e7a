package property

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateProperty = errors.New("property already registered")
	ErrUnknownProperty   = errors.New("unknown property")
	ErrRegistrySealed    = errors.New("property registry is sealed")
	ErrInvalidValue      = errors.New("invalid property value")
)

// ParseError describes a declaration value rejected by its property's grammar.
type ParseError struct {
	Property string
	Value    string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for property %q: %s", e.Value, e.Property, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalidValue }
