package core

// resolver.go resolves natural keys (company names, contact names) to
// surrogate ids during one import run.
//
// A resolver is created per run and discarded afterwards. Its caches hold ids
// observed or created during the run, so they must never be shared between
// runs: a stale id from an unrelated upload would otherwise be reused.

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/crmport/internal/model"
)

type resolver struct {
	store    Store
	accounts map[string]uuid.UUID // lower(company_name) -> account id
	contacts map[string]uuid.UUID // lower(company|first|last) -> contact id

	created int // prospect accounts created on demand
}

func newResolver(store Store) *resolver {
	return &resolver{
		store:    store,
		accounts: make(map[string]uuid.UUID),
		contacts: make(map[string]uuid.UUID),
	}
}

func accountKey(companyName string) string {
	return strings.ToLower(companyName)
}

func contactKey(companyName, firstName, lastName string) string {
	return strings.ToLower(companyName + "|" + firstName + "|" + lastName)
}

// warm loads every persisted account and contact once. When several records
// share a key the first one listed wins.
func (r *resolver) warm(ctx context.Context) error {
	accounts, err := r.store.ListAccounts(ctx)
	if err != nil {
		return errors.Wrap(err, "list accounts")
	}

	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.CompanyName
		key := accountKey(a.CompanyName)
		if _, ok := r.accounts[key]; !ok {
			r.accounts[key] = a.ID
		}
	}

	contacts, err := r.store.ListContacts(ctx)
	if err != nil {
		return errors.Wrap(err, "list contacts")
	}

	for _, c := range contacts {
		company, ok := names[c.AccountID]
		if !ok {
			continue
		}
		key := contactKey(company, c.FirstName, c.LastName)
		if _, ok := r.contacts[key]; !ok {
			r.contacts[key] = c.ID
		}
	}

	return nil
}

// findOrCreateAccount returns the id of the account named companyName,
// creating a minimal prospect account when none exists.
func (r *resolver) findOrCreateAccount(ctx context.Context, companyName string) (uuid.UUID, error) {
	key := accountKey(companyName)
	if id, ok := r.accounts[key]; ok {
		return id, nil
	}

	accounts, err := r.store.ListAccounts(ctx)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "list accounts")
	}
	for _, a := range accounts {
		if accountKey(a.CompanyName) == key {
			r.accounts[key] = a.ID
			return a.ID, nil
		}
	}

	created, err := r.store.CreateAccount(ctx, model.NewProspect(companyName))
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "create account %q", companyName)
	}
	r.created++
	r.accounts[key] = created.ID
	return created.ID, nil
}

// findContact looks a contact up by company and name. A miss is not an
// error: the caller proceeds without a contact reference. It never creates a
// contact.
func (r *resolver) findContact(ctx context.Context, companyName, firstName, lastName string) (*uuid.UUID, error) {
	if firstName == "" || lastName == "" {
		return nil, nil
	}

	key := contactKey(companyName, firstName, lastName)
	if id, ok := r.contacts[key]; ok {
		return &id, nil
	}

	accountID, err := r.findOrCreateAccount(ctx, companyName)
	if err != nil {
		return nil, err
	}

	contacts, err := r.store.ListContacts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	for _, c := range contacts {
		if c.AccountID == accountID &&
			strings.EqualFold(c.FirstName, firstName) &&
			strings.EqualFold(c.LastName, lastName) {
			id := c.ID
			r.contacts[key] = id
			return &id, nil
		}
	}

	return nil, nil
}

// write persists one record, resolving its natural-key references first.
func (r *resolver) write(ctx context.Context, rec Record) error {
	switch rec := rec.(type) {
	case AccountRecord:
		a, err := r.store.CreateAccount(ctx, rec.Account)
		if err != nil {
			return err
		}
		r.accounts[accountKey(a.CompanyName)] = a.ID
		return nil

	case ContactRecord:
		accountID, err := r.findOrCreateAccount(ctx, rec.CompanyName)
		if err != nil {
			return err
		}
		c := rec.Contact
		c.AccountID = accountID
		created, err := r.store.CreateContact(ctx, c)
		if err != nil {
			return err
		}
		r.contacts[contactKey(rec.CompanyName, c.FirstName, c.LastName)] = created.ID
		return nil

	case CommunicationRecord:
		accountID, err := r.findOrCreateAccount(ctx, rec.CompanyName)
		if err != nil {
			return err
		}
		contactID, err := r.findContact(ctx, rec.CompanyName, rec.ContactFirstName, rec.ContactLastName)
		if err != nil {
			return err
		}
		c := rec.Communication
		c.AccountID = accountID
		c.ContactID = contactID
		_, err = r.store.CreateCommunication(ctx, c)
		return err

	case OpportunityRecord:
		accountID, err := r.findOrCreateAccount(ctx, rec.CompanyName)
		if err != nil {
			return err
		}
		o := rec.Opportunity
		o.AccountID = accountID
		_, err = r.store.CreateOpportunity(ctx, o)
		return err

	default:
		return errors.Newf("unknown record type %T", rec)
	}
}
