package tabular

import (
	"regexp"
	"strings"
)

// fieldLabels is the display label <-> field name table shared by the
// importer and exporter. It is a compatibility surface: exported archives
// must decode back to the same field names.
var fieldLabels = []struct {
	Label string
	Field string
}{
	// Accounts
	{"Company Name", "company_name"},
	{"Industry", "industry"},
	{"Company Size", "company_size"},
	{"Location", "location"},
	{"Website", "website"},
	{"Account Status", "account_status"},
	{"Source", "source"},
	{"Revenue Potential", "revenue_potential"},
	{"Decision Timeline", "decision_timeline"},
	{"Technical Requirements", "technical_requirements"},
	{"Current Supplier", "current_supplier"},
	{"Account Owner", "account_owner"},
	{"Last Contact", "last_contact"},
	{"Next Followup", "next_followup"},
	{"Created At", "created_at"},
	{"Updated At", "updated_at"},

	// Contacts
	{"First Name", "first_name"},
	{"Last Name", "last_name"},
	{"Title", "title"},
	{"Email", "email"},
	{"Phone", "phone"},
	{"Primary Contact", "primary_contact"},
	{"Decision Maker", "decision_maker"},
	{"Notes", "notes"},

	// Communications
	{"Contact First Name", "contact_first_name"},
	{"Contact Last Name", "contact_last_name"},
	{"Communication Date", "comm_date"},
	{"Communication Type", "comm_type"},
	{"Direction", "direction"},
	{"Subject", "subject"},
	{"Summary", "summary"},
	{"Next Steps", "next_steps"},
	{"Followup Required", "followup_required"},
	{"Followup Date", "followup_date"},

	// Opportunities
	{"Opportunity Name", "opp_name"},
	{"Stage", "stage"},
	{"Value", "value"},
	{"Probability", "probability"},
	{"Expected Close", "expected_close"},
	{"Requirements", "requirements"},
	{"Competition", "competition"},
}

var (
	labelToField = make(map[string]string, len(fieldLabels))
	fieldToLabel = make(map[string]string, len(fieldLabels))
)

var whitespaceRun = regexp.MustCompile(`\s+`)

func init() {
	for _, fl := range fieldLabels {
		labelToField[fl.Label] = fl.Field
		fieldToLabel[fl.Field] = fl.Label
	}
}

// FieldName maps a header label to its field name. Labels outside the table
// fall back to lower case with whitespace runs replaced by underscores, so
// "Account ID" becomes "account_id" and "company_name" maps to itself.
func FieldName(label string) string {
	if f, ok := labelToField[label]; ok {
		return f
	}
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}

// Label returns the display label for a field name, or the field name itself
// when the table has no entry.
func Label(field string) string {
	if l, ok := fieldToLabel[field]; ok {
		return l
	}
	return field
}
