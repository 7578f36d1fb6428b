package core

// convert.go turns coerced cell values into typed entity fields.
//
// Cells arrive already classified by the codec (null, boolean, number or
// string). These helpers cover the cases the codec leaves as strings:
//   - Currency symbols and thousand separators in numbers ("$150,000")
//   - Accounting negatives ("(500)")
//   - Boolean words (yes/no, y/n, t/f)
//
// Dates are strict: only YYYY-MM-DD is accepted, matching the validator.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateRegex is the shape every date cell must have.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseNumber parses a numeric cell, tolerating currency symbols, thousands
// separators and the accounting format for negatives.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u20ac", "") // Euro
	s = strings.ReplaceAll(s, "\u00a3", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0, case-insensitive.
func ParseBool(s string) (value bool, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, bool) {
	if !dateRegex.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// numericValue returns the number held by v, parsing strings leniently.
func numericValue(v tabular.Value) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	if s, ok := v.AsString(); ok {
		return ParseNumber(s)
	}
	return 0, false
}

// validDate reports whether an absent value or a present YYYY-MM-DD string.
func validDate(v tabular.Value) bool {
	if !v.Present() {
		return true
	}
	s, ok := v.AsString()
	if !ok {
		return false
	}
	_, ok = ParseDate(s)
	return ok
}

func textField(row tabular.Row, field string) string {
	return row.Get(field).String()
}

func numberField(row tabular.Row, field string) (*float64, error) {
	v := row.Get(field)
	if !v.Present() {
		return nil, nil
	}
	n, ok := numericValue(v)
	if !ok {
		return nil, errors.Newf("invalid number for %s: %q", tabular.Label(field), v.String())
	}
	return &n, nil
}

func boolField(row tabular.Row, field string) (bool, error) {
	v := row.Get(field)
	if !v.Present() {
		return false, nil
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	if b, ok := ParseBool(v.String()); ok {
		return b, nil
	}
	return false, errors.Newf("invalid boolean for %s: %q", tabular.Label(field), v.String())
}

func dateField(row tabular.Row, field string) (*time.Time, error) {
	v := row.Get(field)
	if !v.Present() {
		return nil, nil
	}
	t, ok := ParseDate(v.String())
	if !ok || !v.IsString() {
		return nil, errors.Newf("invalid date for %s: %q", tabular.Label(field), v.String())
	}
	return &t, nil
}
