package core

import (
	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

func init() {
	Register(EntityDefinition{
		Type:     EntityAccounts,
		Label:    "Accounts",
		FileName: "accounts.csv",
		NameHint: "account",
		Priority: 1,
		Headers: []string{
			"Company Name", "Industry", "Company Size", "Location", "Website",
			"Account Status", "Source", "Revenue Potential", "Decision Timeline",
			"Technical Requirements", "Current Supplier", "Account Owner",
			"Last Contact", "Next Followup", "Created At", "Updated At",
		},
		Validate: validateAccount,
		Build:    buildAccount,
	})

	Register(EntityDefinition{
		Type:     EntityContacts,
		Label:    "Contacts",
		FileName: "contacts.csv",
		NameHint: "contact",
		Priority: 2,
		Headers: []string{
			"Company Name", "First Name", "Last Name", "Title", "Email", "Phone",
			"Primary Contact", "Decision Maker", "Notes", "Created At",
		},
		Validate: validateContact,
		Build:    buildContact,
	})

	Register(EntityDefinition{
		Type:     EntityCommunications,
		Label:    "Communications",
		FileName: "communications.csv",
		NameHint: "communication",
		Priority: 3,
		Headers: []string{
			"Company Name", "Contact First Name", "Contact Last Name",
			"Communication Date", "Communication Type", "Direction", "Subject",
			"Summary", "Next Steps", "Followup Required", "Followup Date", "Created At",
		},
		Validate: validateCommunication,
		Build:    buildCommunication,
	})

	Register(EntityDefinition{
		Type:     EntityOpportunities,
		Label:    "Opportunities",
		FileName: "opportunities.csv",
		NameHint: "opportunit",
		Priority: 3,
		Headers: []string{
			"Company Name", "Opportunity Name", "Stage", "Value", "Probability",
			"Expected Close", "Requirements", "Competition", "Created At",
		},
		Validate: validateOpportunity,
		Build:    buildOpportunity,
	})
}

// Created At / Updated At columns are never read: timestamps are assigned by
// the store.

func buildAccount(row tabular.Row) (Record, error) {
	a := model.Account{
		CompanyName:           textField(row, "company_name"),
		Industry:              textField(row, "industry"),
		CompanySize:           textField(row, "company_size"),
		Location:              textField(row, "location"),
		Website:               textField(row, "website"),
		AccountStatus:         textField(row, "account_status"),
		Source:                textField(row, "source"),
		DecisionTimeline:      textField(row, "decision_timeline"),
		TechnicalRequirements: textField(row, "technical_requirements"),
		CurrentSupplier:       textField(row, "current_supplier"),
		AccountOwner:          textField(row, "account_owner"),
	}

	var err error
	if a.RevenuePotential, err = numberField(row, "revenue_potential"); err != nil {
		return nil, err
	}
	if a.LastContact, err = dateField(row, "last_contact"); err != nil {
		return nil, err
	}
	if a.NextFollowup, err = dateField(row, "next_followup"); err != nil {
		return nil, err
	}

	return AccountRecord{Account: a}, nil
}

func buildContact(row tabular.Row) (Record, error) {
	c := model.Contact{
		FirstName: textField(row, "first_name"),
		LastName:  textField(row, "last_name"),
		Title:     textField(row, "title"),
		Email:     textField(row, "email"),
		Phone:     textField(row, "phone"),
		Notes:     textField(row, "notes"),
	}

	var err error
	if c.PrimaryContact, err = boolField(row, "primary_contact"); err != nil {
		return nil, err
	}
	if c.DecisionMaker, err = boolField(row, "decision_maker"); err != nil {
		return nil, err
	}

	return ContactRecord{CompanyName: textField(row, "company_name"), Contact: c}, nil
}

func buildCommunication(row tabular.Row) (Record, error) {
	c := model.Communication{
		CommType:  textField(row, "comm_type"),
		Direction: textField(row, "direction"),
		Subject:   textField(row, "subject"),
		Summary:   textField(row, "summary"),
		NextSteps: textField(row, "next_steps"),
	}

	var err error
	if c.CommDate, err = dateField(row, "comm_date"); err != nil {
		return nil, err
	}
	if c.FollowupRequired, err = boolField(row, "followup_required"); err != nil {
		return nil, err
	}
	if c.FollowupDate, err = dateField(row, "followup_date"); err != nil {
		return nil, err
	}

	return CommunicationRecord{
		CompanyName:      textField(row, "company_name"),
		ContactFirstName: textField(row, "contact_first_name"),
		ContactLastName:  textField(row, "contact_last_name"),
		Communication:    c,
	}, nil
}

func buildOpportunity(row tabular.Row) (Record, error) {
	o := model.Opportunity{
		OppName:      textField(row, "opp_name"),
		Stage:        textField(row, "stage"),
		Requirements: textField(row, "requirements"),
		Competition:  textField(row, "competition"),
	}

	var err error
	if o.Value, err = numberField(row, "value"); err != nil {
		return nil, err
	}
	if o.Probability, err = numberField(row, "probability"); err != nil {
		return nil, err
	}
	if o.ExpectedClose, err = dateField(row, "expected_close"); err != nil {
		return nil, err
	}

	return OpportunityRecord{CompanyName: textField(row, "company_name"), Opportunity: o}, nil
}
