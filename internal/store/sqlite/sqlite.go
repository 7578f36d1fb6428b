// Package sqlite stores CRM entities in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/crmport/internal/model"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path in WAL mode with
// foreign keys enforced, and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// One writer at a time; avoids "database is locked" under concurrent imports.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return New(db), nil
}

// New wraps an already-initialized database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	return s.db.Close()
}

const accountColumns = `account_id, company_name, industry, company_size, location, website,
	account_status, source, revenue_potential, decision_timeline, technical_requirements,
	current_supplier, account_owner, last_contact, next_followup, created_at, updated_at`

func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a.ID = uuid.New()
	if a.AccountStatus == "" {
		a.AccountStatus = model.StatusProspect
	}
	a.CreatedAt = s.now().UTC()
	a.UpdatedAt = a.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID.String(), a.CompanyName, nullText(a.Industry), nullText(a.CompanySize),
		nullText(a.Location), nullText(a.Website), a.AccountStatus, nullText(a.Source),
		a.RevenuePotential, nullText(a.DecisionTimeline), nullText(a.TechnicalRequirements),
		nullText(a.CurrentSupplier), nullText(a.AccountOwner),
		dateText(a.LastContact), dateText(a.NextFollowup), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return model.Account{}, errors.Wrapf(err, "insert account %q", a.CompanyName)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var (
			a                                                 model.Account
			industry, size, location, website, status, source sql.NullString
			timeline, requirements, supplier, owner           sql.NullString
			lastContact, nextFollowup                         sql.NullString
			revenue                                           sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.CompanyName, &industry, &size, &location, &website,
			&status, &source, &revenue, &timeline, &requirements, &supplier, &owner,
			&lastContact, &nextFollowup, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan account")
		}

		a.Industry = industry.String
		a.CompanySize = size.String
		a.Location = location.String
		a.Website = website.String
		a.AccountStatus = status.String
		a.Source = source.String
		a.RevenuePotential = floatPtr(revenue)
		a.DecisionTimeline = timeline.String
		a.TechnicalRequirements = requirements.String
		a.CurrentSupplier = supplier.String
		a.AccountOwner = owner.String
		if a.LastContact, err = parseDate(lastContact); err != nil {
			return nil, err
		}
		if a.NextFollowup, err = parseDate(nextFollowup); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, errors.Wrap(rows.Err(), "iterate accounts")
}

const contactColumns = `contact_id, account_id, first_name, last_name, title, email, phone,
	primary_contact, decision_maker, notes, created_at`

func (s *Store) CreateContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.AccountID.String(), c.FirstName, c.LastName, nullText(c.Title),
		nullText(c.Email), nullText(c.Phone), c.PrimaryContact, c.DecisionMaker,
		nullText(c.Notes), c.CreatedAt)
	if err != nil {
		return model.Contact{}, errors.Wrapf(err, "insert contact %q %q", c.FirstName, c.LastName)
	}
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var (
			c                          model.Contact
			title, email, phone, notes sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName, &title, &email,
			&phone, &c.PrimaryContact, &c.DecisionMaker, &notes, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan contact")
		}
		c.Title = title.String
		c.Email = email.String
		c.Phone = phone.String
		c.Notes = notes.String
		contacts = append(contacts, c)
	}
	return contacts, errors.Wrap(rows.Err(), "iterate contacts")
}

const communicationColumns = `comm_id, account_id, contact_id, comm_date, comm_type, direction,
	subject, summary, next_steps, followup_required, followup_date, created_at`

func (s *Store) CreateCommunication(ctx context.Context, c model.Communication) (model.Communication, error) {
	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()

	var contactID any
	if c.ContactID != nil {
		contactID = c.ContactID.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO communications (`+communicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.AccountID.String(), contactID, dateText(c.CommDate),
		nullText(c.CommType), nullText(c.Direction), nullText(c.Subject), nullText(c.Summary),
		nullText(c.NextSteps), c.FollowupRequired, dateText(c.FollowupDate), c.CreatedAt)
	if err != nil {
		return model.Communication{}, errors.Wrapf(err, "insert communication %q", c.Subject)
	}
	return c, nil
}

func (s *Store) ListCommunications(ctx context.Context) ([]model.Communication, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+communicationColumns+` FROM communications ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query communications")
	}
	defer rows.Close()

	var comms []model.Communication
	for rows.Next() {
		var (
			c                                            model.Communication
			contactID                                    uuid.NullUUID
			commDate, followupDate                       sql.NullString
			commType, direction, subject, summary, steps sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.AccountID, &contactID, &commDate, &commType, &direction,
			&subject, &summary, &steps, &c.FollowupRequired, &followupDate, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan communication")
		}
		if contactID.Valid {
			id := contactID.UUID
			c.ContactID = &id
		}
		c.CommType = commType.String
		c.Direction = direction.String
		c.Subject = subject.String
		c.Summary = summary.String
		c.NextSteps = steps.String
		if c.CommDate, err = parseDate(commDate); err != nil {
			return nil, err
		}
		if c.FollowupDate, err = parseDate(followupDate); err != nil {
			return nil, err
		}
		comms = append(comms, c)
	}
	return comms, errors.Wrap(rows.Err(), "iterate communications")
}

const opportunityColumns = `opp_id, account_id, opp_name, stage, value, probability,
	expected_close, requirements, competition, created_at`

func (s *Store) CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	o.ID = uuid.New()
	o.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID.String(), o.AccountID.String(), o.OppName, nullText(o.Stage), o.Value,
		o.Probability, dateText(o.ExpectedClose), nullText(o.Requirements),
		nullText(o.Competition), o.CreatedAt)
	if err != nil {
		return model.Opportunity{}, errors.Wrapf(err, "insert opportunity %q", o.OppName)
	}
	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+opportunityColumns+` FROM opportunities ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var (
			o                                        model.Opportunity
			stage, requirements, competition, closes sql.NullString
			value, probability                       sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &o.AccountID, &o.OppName, &stage, &value, &probability,
			&closes, &requirements, &competition, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan opportunity")
		}
		o.Stage = stage.String
		o.Value = floatPtr(value)
		o.Probability = floatPtr(probability)
		o.Requirements = requirements.String
		o.Competition = competition.String
		if o.ExpectedClose, err = parseDate(closes); err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, errors.Wrap(rows.Err(), "iterate opportunities")
}

// nullText stores empty optional text as NULL.
func nullText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func dateText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(model.DateLayout)
}

func parseDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, ns.String)
	if err != nil {
		return nil, errors.Wrapf(err, "parse stored date %q", ns.String)
	}
	return &t, nil
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
