// Package model defines the persisted CRM entities exchanged with the store.
//
// Surrogate identifiers are uuids assigned by the store at creation time;
// they never come from imported data. Optional text attributes use the empty
// string for "not set", optional numbers and dates use pointers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for date-only attributes.
const DateLayout = "2006-01-02"

// TimestampLayout is the format used when timestamps are rendered as text.
const TimestampLayout = "2006-01-02 15:04:05"

// Account status and source values assigned to accounts created on demand.
const (
	StatusProspect = "Prospect"
	SourceImport   = "Import"
)

// Communication directions.
const (
	DirectionInbound  = "Inbound"
	DirectionOutbound = "Outbound"
)

type Account struct {
	ID                    uuid.UUID  `json:"account_id"`
	CompanyName           string     `json:"company_name"`
	Industry              string     `json:"industry,omitempty"`
	CompanySize           string     `json:"company_size,omitempty"`
	Location              string     `json:"location,omitempty"`
	Website               string     `json:"website,omitempty"`
	AccountStatus         string     `json:"account_status,omitempty"`
	Source                string     `json:"source,omitempty"`
	RevenuePotential      *float64   `json:"revenue_potential,omitempty"`
	DecisionTimeline      string     `json:"decision_timeline,omitempty"`
	TechnicalRequirements string     `json:"technical_requirements,omitempty"`
	CurrentSupplier       string     `json:"current_supplier,omitempty"`
	AccountOwner          string     `json:"account_owner,omitempty"`
	LastContact           *time.Time `json:"last_contact,omitempty"`
	NextFollowup          *time.Time `json:"next_followup,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Contact belongs to exactly one account.
type Contact struct {
	ID             uuid.UUID `json:"contact_id"`
	AccountID      uuid.UUID `json:"account_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Title          string    `json:"title,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	PrimaryContact bool      `json:"primary_contact"`
	DecisionMaker  bool      `json:"decision_maker"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Communication struct {
	ID               uuid.UUID  `json:"comm_id"`
	AccountID        uuid.UUID  `json:"account_id"`
	ContactID        *uuid.UUID `json:"contact_id,omitempty"`
	CommDate         *time.Time `json:"comm_date,omitempty"`
	CommType         string     `json:"comm_type,omitempty"`
	Direction        string     `json:"direction,omitempty"`
	Subject          string     `json:"subject,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	NextSteps        string     `json:"next_steps,omitempty"`
	FollowupRequired bool       `json:"followup_required"`
	FollowupDate     *time.Time `json:"followup_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Opportunity struct {
	ID            uuid.UUID  `json:"opp_id"`
	AccountID     uuid.UUID  `json:"account_id"`
	OppName       string     `json:"opp_name"`
	Stage         string     `json:"stage,omitempty"`
	Value         *float64   `json:"value,omitempty"`
	Probability   *float64   `json:"probability,omitempty"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
	Requirements  string     `json:"requirements,omitempty"`
	Competition   string     `json:"competition,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewProspect returns the minimal account created when a child row references
// a company that does not exist yet.
func NewProspect(companyName string) Account {
	return Account{
		CompanyName:   companyName,
		AccountStatus: StatusProspect,
		Source:        SourceImport,
	}
}
