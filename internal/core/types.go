package core

import (
	"context"

	"github.com/JonMunkholm/crmport/internal/model"
)

// EntityType identifies one of the four importable entity kinds.
type EntityType string

const (
	EntityAccounts       EntityType = "accounts"
	EntityContacts       EntityType = "contacts"
	EntityCommunications EntityType = "communications"
	EntityOpportunities  EntityType = "opportunities"
)

// DataTypeUnknown and DataTypeError are reported by the validation-only
// entry point for members that could not be classified or decoded.
const (
	DataTypeUnknown = "unknown"
	DataTypeError   = "error"
)

// Store is the persistence interface consumed by the importer and exporter.
// Create assigns the surrogate id and timestamps; List returns records in
// creation order.
type Store interface {
	CreateAccount(ctx context.Context, a model.Account) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	CreateContact(ctx context.Context, c model.Contact) (model.Contact, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	CreateCommunication(ctx context.Context, c model.Communication) (model.Communication, error)
	ListCommunications(ctx context.Context) ([]model.Communication, error)
	CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error)
	ListOpportunities(ctx context.Context) ([]model.Opportunity, error)
}

// Report is the outcome of one import run. Data problems never surface as a
// Go error; they are accumulated here.
type Report struct {
	Success  bool               `json:"success"`
	Errors   []string           `json:"errors"`
	Warnings []string           `json:"warnings"`
	Imported map[EntityType]int `json:"imported"`
}

func newReport() *Report {
	imported := make(map[EntityType]int, len(entityOrder))
	for _, et := range entityOrder {
		imported[et] = 0
	}
	return &Report{
		Errors:   []string{},
		Warnings: []string{},
		Imported: imported,
	}
}

// TotalImported sums the per-type counts.
func (r *Report) TotalImported() int {
	total := 0
	for _, n := range r.Imported {
		total += n
	}
	return total
}

func (r *Report) addError(msg string)   { r.Errors = append(r.Errors, msg) }
func (r *Report) addWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// MemberValidation is the dry-run result for one member.
type MemberValidation struct {
	Filename    string   `json:"filename"`
	DataType    string   `json:"dataType"`
	RecordCount int      `json:"recordCount"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
}

// Record is a validated row converted into its entity shape. Exactly one of
// the four record types below implements it.
type Record interface {
	Entity() EntityType
}

type AccountRecord struct {
	Account model.Account
}

// ContactRecord carries the owning company by name; the account id is
// resolved at write time.
type ContactRecord struct {
	CompanyName string
	Contact     model.Contact
}

// CommunicationRecord references its account and optional contact by
// natural key.
type CommunicationRecord struct {
	CompanyName      string
	ContactFirstName string
	ContactLastName  string
	Communication    model.Communication
}

type OpportunityRecord struct {
	CompanyName string
	Opportunity model.Opportunity
}

func (AccountRecord) Entity() EntityType       { return EntityAccounts }
func (ContactRecord) Entity() EntityType       { return EntityContacts }
func (CommunicationRecord) Entity() EntityType { return EntityCommunications }
func (OpportunityRecord) Entity() EntityType   { return EntityOpportunities }
