package core

import (
	"testing"

	"github.com/JonMunkholm/crmport/internal/tabular"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   float64
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantOK: true, want: 123},
		{name: "zero", input: "0", wantOK: true, want: 0},
		{name: "negative integer", input: "-456", wantOK: true, want: -456},
		{name: "decimal number", input: "123.45", wantOK: true, want: 123.45},
		{name: "leading decimal point", input: ".99", wantOK: true, want: 0.99},
		{name: "trailing decimal point", input: "99.", wantOK: true, want: 99},
		{name: "scientific notation", input: "1.5e3", wantOK: true, want: 1500},

		// Valid: Currency and separators
		{name: "dollar sign", input: "$1,000", wantOK: true, want: 1000},
		{name: "euro sign", input: "€250.50", wantOK: true, want: 250.5},
		{name: "pound sign", input: "£99", wantOK: true, want: 99},
		{name: "accounting negative", input: "(1,234.56)", wantOK: true, want: -1234.56},
		{name: "surrounding whitespace", input: "  42  ", wantOK: true, want: 42},

		// Invalid
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace only", input: "   ", wantOK: false},
		{name: "letters", input: "abc", wantOK: false},
		{name: "mixed", input: "12abc", wantOK: false},
		{name: "two points", input: "1.2.3", wantOK: false},
		{name: "bare sign", input: "-", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseBool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input  string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"Yes", true, true},
		{"y", true, true},
		{"1", true, true},
		{"t", true, true},
		{"false", false, true},
		{"No", false, true},
		{"0", false, true},
		{"F", false, true},
		{" yes ", true, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseBool(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseBool(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"iso date", "2024-01-15", true},
		{"leap day", "2024-02-29", true},
		{"non-leap feb 29", "2023-02-29", false},
		{"month 13", "2024-13-01", false},
		{"day 32", "2024-01-32", false},
		{"slashes", "2024/01/15", false},
		{"us format", "01/15/2024", false},
		{"single digit month", "2024-1-15", false},
		{"two digit year", "24-01-15", false},
		{"with time", "2024-01-15 10:00:00", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.Format("2006-01-02") != tt.input {
				t.Errorf("ParseDate(%q) = %v", tt.input, got)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Field builder Tests
// ----------------------------------------------------------------------------

func TestNumberField(t *testing.T) {
	row := tabular.Row{
		"value":       tabular.Number(1500),
		"probability": tabular.String("$2,000"),
		"bad":         tabular.String("lots"),
		"empty":       tabular.String(""),
	}

	if got, err := numberField(row, "value"); err != nil || got == nil || *got != 1500 {
		t.Errorf("numberField(value) = %v, %v", got, err)
	}
	if got, err := numberField(row, "probability"); err != nil || got == nil || *got != 2000 {
		t.Errorf("numberField(probability) = %v, %v", got, err)
	}
	if got, err := numberField(row, "empty"); err != nil || got != nil {
		t.Errorf("numberField(empty) = %v, %v, want nil, nil", got, err)
	}
	if got, err := numberField(row, "missing"); err != nil || got != nil {
		t.Errorf("numberField(missing) = %v, %v, want nil, nil", got, err)
	}
	if _, err := numberField(row, "bad"); err == nil {
		t.Error("numberField(bad) expected error")
	}
}

func TestBoolField(t *testing.T) {
	row := tabular.Row{
		"primary_contact":   tabular.Bool(true),
		"decision_maker":    tabular.String("yes"),
		"followup_required": tabular.Number(0),
		"notes":             tabular.String("perhaps"),
	}

	tests := []struct {
		field   string
		want    bool
		wantErr bool
	}{
		{"primary_contact", true, false},
		{"decision_maker", true, false},
		{"followup_required", false, false},
		{"missing", false, false},
		{"notes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := boolField(row, tt.field)
			if (err != nil) != tt.wantErr {
				t.Fatalf("boolField(%s) error = %v, wantErr %v", tt.field, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("boolField(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestDateField(t *testing.T) {
	row := tabular.Row{
		"comm_date":     tabular.String("2024-03-01"),
		"followup_date": tabular.Number(20240301),
		"last_contact":  tabular.String("March 1"),
	}

	got, err := dateField(row, "comm_date")
	if err != nil || got == nil || got.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("dateField(comm_date) = %v, %v", got, err)
	}
	if _, err := dateField(row, "followup_date"); err == nil {
		t.Error("dateField on a number should fail")
	}
	if _, err := dateField(row, "last_contact"); err == nil {
		t.Error("dateField on free text should fail")
	}
	if got, err := dateField(row, "next_followup"); err != nil || got != nil {
		t.Errorf("dateField(missing) = %v, %v, want nil, nil", got, err)
	}
}
