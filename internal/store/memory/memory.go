// Package memory is an in-process Store. Data lives as long as the Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/crmport/internal/model"
)

type Store struct {
	mu             sync.RWMutex
	now            func() time.Time
	accounts       []model.Account
	contacts       []model.Contact
	communications []model.Communication
	opportunities  []model.Opportunity
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.New()
	if a.AccountStatus == "" {
		a.AccountStatus = model.StatusProspect
	}
	a.CreatedAt = s.now().UTC()
	a.UpdatedAt = a.CreatedAt
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Account(nil), s.accounts...), ctx.Err()
}

func (s *Store) CreateContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return model.Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()
	s.contacts = append(s.contacts, c)
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Contact(nil), s.contacts...), ctx.Err()
}

func (s *Store) CreateCommunication(ctx context.Context, c model.Communication) (model.Communication, error) {
	if err := ctx.Err(); err != nil {
		return model.Communication{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()
	s.communications = append(s.communications, c)
	return c, nil
}

func (s *Store) ListCommunications(ctx context.Context) ([]model.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Communication(nil), s.communications...), ctx.Err()
}

func (s *Store) CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return model.Opportunity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.New()
	o.CreatedAt = s.now().UTC()
	s.opportunities = append(s.opportunities, o)
	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Opportunity(nil), s.opportunities...), ctx.Err()
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
