package tabular

// value.go defines the scalar carried by every decoded cell.
//
// Coercion is positional: each cell is classified on its own, so one column
// may hold numbers in some rows and strings in others.

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the scalar held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// numericRegex matches integers, decimals, and scientific notation.
// Hex, underscores, NaN and Inf are deliberately excluded.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Value is a typed cell: null, boolean, number or string.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

func Null() Value              { return Value{} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Number(n float64) Value   { return Value{kind: KindNumber, n: n} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsString() bool { return v.kind == KindString }

// Text returns s as a string Value, or null when s is empty.
func Text(s string) Value {
	if s == "" {
		return Null()
	}
	return String(s)
}

// AsBool returns the boolean and whether the Value holds one.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the number and whether the Value holds one.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the string and whether the Value holds one.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// String renders the Value as plain text: null is empty, booleans are
// TRUE/FALSE, numbers use the shortest exact decimal form.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Present reports whether the Value carries data. Null and the empty string
// count as absent.
func (v Value) Present() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// Coerce classifies a raw cell. The caller trims whitespace first.
//
//	""            -> null
//	TRUE / FALSE  -> boolean (case-insensitive)
//	"12", "-3.5"  -> number
//	anything else -> string
func Coerce(raw string) Value {
	if raw == "" {
		return Null()
	}

	switch strings.ToUpper(raw) {
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}

	if numericRegex.MatchString(raw) {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(n)
		}
	}

	return String(raw)
}

// FormatNumber renders n without exponent or trailing zeros for the usual
// range of CRM values (150000, 60, 0.25).
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
