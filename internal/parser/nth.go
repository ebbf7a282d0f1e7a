package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Nth is an An+B expression as used by :nth-child.
type Nth struct {
	A, B int
}

// Matches reports whether the 1-based index satisfies An+B for some n >= 0.
func (n Nth) Matches(index int) bool {
	if n.A == 0 {
		return index == n.B
	}
	diff := index - n.B
	if diff%n.A != 0 {
		return false
	}
	return diff/n.A >= 0
}

func (n Nth) String() string {
	switch {
	case n.A == 0:
		return strconv.Itoa(n.B)
	case n.B == 0:
		return fmt.Sprintf("%dn", n.A)
	case n.B < 0:
		return fmt.Sprintf("%dn%d", n.A, n.B)
	}
	return fmt.Sprintf("%dn+%d", n.A, n.B)
}

// ParseNth parses "odd", "even", "5", "2n+1", "-n+3" and similar forms.
func ParseNth(raw string) (Nth, error) {
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	switch s {
	case "":
		return Nth{}, fmt.Errorf("empty :nth-child argument")
	case "odd":
		return Nth{A: 2, B: 1}, nil
	case "even":
		return Nth{A: 2, B: 0}, nil
	}

	idx := strings.IndexByte(s, 'n')
	if idx < 0 {
		b, err := strconv.Atoi(s)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid :nth-child argument %q", raw)
		}
		return Nth{B: b}, nil
	}

	var nth Nth
	switch coef := s[:idx]; coef {
	case "", "+":
		nth.A = 1
	case "-":
		nth.A = -1
	default:
		a, err := strconv.Atoi(coef)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid :nth-child argument %q", raw)
		}
		nth.A = a
	}

	if rest := s[idx+1:]; rest != "" {
		if rest[0] != '+' && rest[0] != '-' {
			return Nth{}, fmt.Errorf("invalid :nth-child argument %q", raw)
		}
		b, err := strconv.Atoi(rest)
		if err != nil {
			return Nth{}, fmt.Errorf("invalid :nth-child argument %q", raw)
		}
		nth.B = b
	}
	return nth, nil
}
