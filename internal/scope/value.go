package scope

import (
	"strconv"
	"strings"
)

// Kind tags the inferred type of a Value
type Kind int

const (
	Text Kind = iota
	Integer
	Boolean
)

// String makes Kind satisfy the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	default:
		return "text"
	}
}

var (
	trueLiterals  = map[string]bool{"true": true, "yes": true, "1": true, "on": true, "enabled": true}
	falseLiterals = map[string]bool{"false": true, "no": true, "0": true, "off": true, "disabled": true}
)

// Value is a scope binding or parameter value. The raw text is always preserved;
// Kind records how it coerces.
type Value struct {
	raw  string
	kind Kind
	n    int
	b    bool
}

// ParseValue infers the kind of s. Integers win over boolean literals, so "1" is an
// Integer that still coerces to true through Bool.
func ParseValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return Value{raw: s, kind: Integer, n: n, b: n != 0}
	}
	if b, ok := ParseBool(trimmed); ok {
		return Value{raw: s, kind: Boolean, b: b}
	}
	return Value{raw: s, kind: Text}
}

// IntValue builds an Integer value
func IntValue(n int) Value {
	return Value{raw: strconv.Itoa(n), kind: Integer, n: n, b: n != 0}
}

// Kind returns the inferred kind
func (v Value) Kind() Kind { return v.kind }

// String returns the raw text
func (v Value) String() string { return v.raw }

// Int returns the integer value. ok is false for non-Integer values.
func (v Value) Int() (int, bool) {
	if v.kind != Integer {
		return 0, false
	}
	return v.n, true
}

// IntOr returns the integer value or def
func (v Value) IntOr(def int) int {
	if n, ok := v.Int(); ok {
		return n
	}
	return def
}

// Bool coerces Boolean and Integer values. ok is false for Text.
func (v Value) Bool() (bool, bool) {
	if v.kind == Text {
		return false, false
	}
	return v.b, true
}

// ParseBool maps the boolean literal vocabulary, case-insensitively:
// true/yes/1/on/enabled and false/no/0/off/disabled.
func ParseBool(s string) (value bool, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case trueLiterals[lower]:
		return true, true
	case falseLiterals[lower]:
		return false, true
	}
	return false, false
}
