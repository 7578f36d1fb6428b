package core

// validation.go applies per-entity business rules to a decoded member.
//
// Validation is all-or-nothing per member: if any row fails, no row of that
// member is written. Every failing rule of every row is reported so the user
// can fix a file in one pass. Row numbers count the header, so the first data
// row is row 2.

import (
	"fmt"
	"regexp"

	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

// ValidationError is a single failed rule on one row.
type ValidationError struct {
	Row     int    // 1-based row number including the header
	Field   string // Field name
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateFields are checked on every entity type.
var dateFields = []string{"comm_date", "expected_close", "last_contact", "next_followup", "followup_date"}

// rowChecker accumulates errors for one row.
type rowChecker struct {
	row  tabular.Row
	line int
	errs []ValidationError
}

func (c *rowChecker) fail(field, msg string) {
	c.errs = append(c.errs, ValidationError{Row: c.line, Field: field, Message: msg})
}

func (c *rowChecker) required(field string) {
	if !c.row.Get(field).Present() {
		c.fail(field, tabular.Label(field)+" is required")
	}
}

func (c *rowChecker) nonNegative(field string) {
	if n, ok := numericValue(c.row.Get(field)); ok && n < 0 {
		c.fail(field, tabular.Label(field)+" cannot be negative")
	}
}

func (c *rowChecker) email() {
	v := c.row.Get("email")
	if v.Present() && !emailRegex.MatchString(v.String()) {
		c.fail("email", "Invalid email format")
	}
}

func (c *rowChecker) dates() {
	for _, f := range dateFields {
		if !validDate(c.row.Get(f)) {
			c.fail(f, "Invalid date format for "+tabular.Label(f))
		}
	}
}

func validateAccount(row tabular.Row, line int) []ValidationError {
	c := &rowChecker{row: row, line: line}
	c.required("company_name")
	c.nonNegative("revenue_potential")
	c.email()
	c.dates()
	return c.errs
}

func validateContact(row tabular.Row, line int) []ValidationError {
	c := &rowChecker{row: row, line: line}
	c.required("company_name")
	c.required("first_name")
	c.required("last_name")
	c.email()
	c.dates()
	return c.errs
}

func validateCommunication(row tabular.Row, line int) []ValidationError {
	c := &rowChecker{row: row, line: line}
	c.required("company_name")
	c.required("comm_date")
	c.required("comm_type")
	c.required("direction")
	c.required("subject")

	if d := row.Get("direction"); d.Present() {
		s, _ := d.AsString()
		if s != model.DirectionInbound && s != model.DirectionOutbound {
			c.fail("direction", "Direction must be 'Inbound' or 'Outbound'")
		}
	}

	c.dates()
	return c.errs
}

func validateOpportunity(row tabular.Row, line int) []ValidationError {
	c := &rowChecker{row: row, line: line}
	c.required("company_name")
	c.required("opp_name")
	c.required("stage")

	if p, ok := numericValue(row.Get("probability")); ok && (p < 0 || p > 100) {
		c.fail("probability", "Probability must be between 0 and 100")
	}
	c.nonNegative("value")

	c.dates()
	return c.errs
}

// ValidateTable applies the entity's rules to every row of t.
func ValidateTable(def EntityDefinition, t *tabular.Table) []ValidationError {
	var errs []ValidationError
	for i, row := range t.Rows {
		errs = append(errs, def.Validate(row, i+2)...)
	}
	return errs
}
