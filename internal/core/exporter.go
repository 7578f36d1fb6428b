package core

// exporter.go renders persisted entities back into the natural-key tabular
// form accepted by the importer. Children reference their account (and
// communications their contact) by name, never by surrogate id.

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

// UnknownCompany is rendered for a child whose account no longer exists.
const UnknownCompany = "Unknown Company"

// ExportAll renders all four entity sets as a ZIP of CSV members in the fixed
// order accounts, contacts, communications, opportunities.
func ExportAll(accounts []model.Account, contacts []model.Contact, comms []model.Communication, opps []model.Opportunity) ([]byte, error) {
	members, err := exportMembers(accounts, contacts, comms, opps)
	if err != nil {
		return nil, err
	}
	return tabular.WriteArchive(members)
}

func exportMembers(accounts []model.Account, contacts []model.Contact, comms []model.Communication, opps []model.Opportunity) ([]tabular.Member, error) {
	companies := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		if _, ok := companies[a.ID]; !ok {
			companies[a.ID] = a.CompanyName
		}
	}
	people := make(map[uuid.UUID]model.Contact, len(contacts))
	for _, c := range contacts {
		if _, ok := people[c.ID]; !ok {
			people[c.ID] = c
		}
	}

	companyOf := func(id uuid.UUID) string {
		if name, ok := companies[id]; ok {
			return name
		}
		return UnknownCompany
	}

	rows := map[EntityType][]tabular.Row{}
	for _, a := range accounts {
		rows[EntityAccounts] = append(rows[EntityAccounts], accountRow(a))
	}
	for _, c := range contacts {
		rows[EntityContacts] = append(rows[EntityContacts], contactRow(c, companyOf(c.AccountID)))
	}
	for _, c := range comms {
		var person *model.Contact
		if c.ContactID != nil {
			if p, ok := people[*c.ContactID]; ok {
				person = &p
			}
		}
		rows[EntityCommunications] = append(rows[EntityCommunications], communicationRow(c, companyOf(c.AccountID), person))
	}
	for _, o := range opps {
		rows[EntityOpportunities] = append(rows[EntityOpportunities], opportunityRow(o, companyOf(o.AccountID)))
	}

	defs := All()
	if len(defs) != len(entityOrder) {
		return nil, errors.Newf("expected %d entity definitions, found %d", len(entityOrder), len(defs))
	}

	members := make([]tabular.Member, 0, len(defs))
	for _, def := range defs {
		members = append(members, tabular.Member{
			Name:    def.FileName,
			Content: tabular.Encode(def.Headers, rows[def.Type]),
		})
	}
	return members, nil
}

func numberValue(n *float64) tabular.Value {
	if n == nil {
		return tabular.Null()
	}
	return tabular.Number(*n)
}

func dateValue(t *time.Time) tabular.Value {
	if t == nil {
		return tabular.Null()
	}
	return tabular.String(t.Format(model.DateLayout))
}

func timestampValue(t time.Time) tabular.Value {
	if t.IsZero() {
		return tabular.Null()
	}
	return tabular.String(t.UTC().Format(model.TimestampLayout))
}

func accountRow(a model.Account) tabular.Row {
	return tabular.Row{
		"company_name":           tabular.Text(a.CompanyName),
		"industry":               tabular.Text(a.Industry),
		"company_size":           tabular.Text(a.CompanySize),
		"location":               tabular.Text(a.Location),
		"website":                tabular.Text(a.Website),
		"account_status":         tabular.Text(a.AccountStatus),
		"source":                 tabular.Text(a.Source),
		"revenue_potential":      numberValue(a.RevenuePotential),
		"decision_timeline":      tabular.Text(a.DecisionTimeline),
		"technical_requirements": tabular.Text(a.TechnicalRequirements),
		"current_supplier":       tabular.Text(a.CurrentSupplier),
		"account_owner":          tabular.Text(a.AccountOwner),
		"last_contact":           dateValue(a.LastContact),
		"next_followup":          dateValue(a.NextFollowup),
		"created_at":             timestampValue(a.CreatedAt),
		"updated_at":             timestampValue(a.UpdatedAt),
	}
}

func contactRow(c model.Contact, company string) tabular.Row {
	return tabular.Row{
		"company_name":    tabular.Text(company),
		"first_name":      tabular.Text(c.FirstName),
		"last_name":       tabular.Text(c.LastName),
		"title":           tabular.Text(c.Title),
		"email":           tabular.Text(c.Email),
		"phone":           tabular.Text(c.Phone),
		"primary_contact": tabular.Bool(c.PrimaryContact),
		"decision_maker":  tabular.Bool(c.DecisionMaker),
		"notes":           tabular.Text(c.Notes),
		"created_at":      timestampValue(c.CreatedAt),
	}
}

func communicationRow(c model.Communication, company string, person *model.Contact) tabular.Row {
	row := tabular.Row{
		"company_name":      tabular.Text(company),
		"comm_date":         dateValue(c.CommDate),
		"comm_type":         tabular.Text(c.CommType),
		"direction":         tabular.Text(c.Direction),
		"subject":           tabular.Text(c.Subject),
		"summary":           tabular.Text(c.Summary),
		"next_steps":        tabular.Text(c.NextSteps),
		"followup_required": tabular.Bool(c.FollowupRequired),
		"followup_date":     dateValue(c.FollowupDate),
		"created_at":        timestampValue(c.CreatedAt),
	}
	if person != nil {
		row["contact_first_name"] = tabular.Text(person.FirstName)
		row["contact_last_name"] = tabular.Text(person.LastName)
	}
	return row
}

func opportunityRow(o model.Opportunity, company string) tabular.Row {
	return tabular.Row{
		"company_name":   tabular.Text(company),
		"opp_name":       tabular.Text(o.OppName),
		"stage":          tabular.Text(o.Stage),
		"value":          numberValue(o.Value),
		"probability":    numberValue(o.Probability),
		"expected_close": dateValue(o.ExpectedClose),
		"requirements":   tabular.Text(o.Requirements),
		"competition":    tabular.Text(o.Competition),
		"created_at":     timestampValue(o.CreatedAt),
	}
}
