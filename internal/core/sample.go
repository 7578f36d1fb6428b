package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

// ReadmeName is the usage guide bundled with the sample template.
const ReadmeName = "README.txt"

const sampleReadme = `CRM Data Import Template
========================

This archive contains one sample row per entity type in the format accepted
by the importer. Records reference each other by name; ids are never
supplied and are always generated on import.

Files
-----
  accounts.csv        Accounts (no dependencies)
  contacts.csv        Contacts, linked to an account by Company Name
  communications.csv  Communications, linked by Company Name and optionally
                      Contact First Name + Contact Last Name
  opportunities.csv   Opportunities, linked by Company Name

How to import
-------------
  1. Replace the sample rows with your data. Keep the header row intact.
  2. Upload a single CSV file or a ZIP containing several.
  3. Files are processed in this order: accounts, contacts, then
     communications and opportunities. A file's type is taken from its
     name first ("account", "contact", "communication", "opportunit"),
     then from its headers.

Required fields
---------------
  Accounts:        Company Name
  Contacts:        Company Name, First Name, Last Name
  Communications:  Company Name, Communication Date, Communication Type,
                   Direction, Subject
  Opportunities:   Company Name, Opportunity Name, Stage

Name matching
-------------
  - Company names are matched case-insensitively against existing accounts
    and accounts created earlier in the same import. Spelling and spacing
    must otherwise be identical.
  - A company name that matches no account creates a new account with
    status "Prospect" and source "Import".
  - Contacts in communications are matched by company, first and last name,
    case-insensitively. An unmatched contact is left blank; it is never
    created.

Formats
-------
  - Dates: YYYY-MM-DD
  - Booleans: TRUE / FALSE
  - Direction: Inbound or Outbound
  - Probability: 0 to 100; Value and Revenue Potential must not be negative
  - Created At / Updated At are informational and ignored on import.
  - A value containing a comma or a double quote must be quoted, with inner
    quotes doubled. Values cannot span several lines.

Validation
----------
  If any row of a file fails validation, no row of that file is imported.
  Other files in the same upload are still processed.
`

func ptr[T any](v T) *T { return &v }

func sampleDate(s string) *time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return &t
}

func sampleTimestamp(s string) time.Time {
	t, _ := time.Parse(model.TimestampLayout, s)
	return t
}

// ExportSample renders the import template: one illustrative row per entity
// type plus README.txt.
func ExportSample() ([]byte, error) {
	accountID := uuid.New()
	contactID := uuid.New()

	accounts := []model.Account{{
		ID:                    accountID,
		CompanyName:           "Acme Electronics Inc",
		Industry:              "Electronics",
		CompanySize:           "Medium (51-200)",
		Location:              "San Francisco, CA",
		Website:               "https://acme-electronics.com",
		AccountStatus:         "Customer",
		Source:                "Cold Call",
		RevenuePotential:      ptr(150000.0),
		DecisionTimeline:      "Short-term (1-3 months)",
		TechnicalRequirements: "High-frequency PCB boards for telecommunications equipment",
		CurrentSupplier:       "TechPCB Corp",
		AccountOwner:          "John Smith",
		LastContact:           sampleDate("2025-01-15"),
		NextFollowup:          sampleDate("2025-02-01"),
		CreatedAt:             sampleTimestamp("2025-01-01 10:30:00"),
		UpdatedAt:             sampleTimestamp("2025-01-15 14:22:00"),
	}}

	contacts := []model.Contact{{
		ID:             contactID,
		AccountID:      accountID,
		FirstName:      "Jane",
		LastName:       "Doe",
		Title:          "Engineering Manager",
		Email:          "jane.doe@acme-electronics.com",
		Phone:          "+1-555-123-4567",
		PrimaryContact: true,
		DecisionMaker:  false,
		Notes:          "Prefers technical documentation and detailed specifications",
		CreatedAt:      sampleTimestamp("2025-01-01 10:30:00"),
	}}

	comms := []model.Communication{{
		ID:               uuid.New(),
		AccountID:        accountID,
		ContactID:        &contactID,
		CommDate:         sampleDate("2025-01-15"),
		CommType:         "Email",
		Direction:        model.DirectionOutbound,
		Subject:          "PCB Specification Inquiry",
		Summary:          "Discussed technical requirements for upcoming project. Customer needs high-frequency boards.",
		NextSteps:        "Send detailed specification document and pricing proposal",
		FollowupRequired: true,
		FollowupDate:     sampleDate("2025-01-22"),
		CreatedAt:        sampleTimestamp("2025-01-15 14:30:00"),
	}}

	opps := []model.Opportunity{{
		ID:            uuid.New(),
		AccountID:     accountID,
		OppName:       "Q1 PCB Manufacturing Contract",
		Stage:         "Proposal",
		Value:         ptr(75000.0),
		Probability:   ptr(60.0),
		ExpectedClose: sampleDate("2025-03-31"),
		Requirements:  "500 units of high-frequency PCB boards with specialized coating",
		Competition:   "CompetitorPCB Inc, FastBoards LLC",
		CreatedAt:     sampleTimestamp("2025-01-10 09:15:00"),
	}}

	members, err := exportMembers(accounts, contacts, comms, opps)
	if err != nil {
		return nil, err
	}
	members = append(members, tabular.Member{Name: ReadmeName, Content: []byte(sampleReadme)})
	return tabular.WriteArchive(members)
}
