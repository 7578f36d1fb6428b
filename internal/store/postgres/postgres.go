// Package postgres stores CRM entities in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/model"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db    DBTX
	close func()
	now   func() time.Time
}

// Open connects a pool sized from cfg, verifies it, and ensures the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database URL")
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	s := &Store{db: pool, close: pool.Close, now: time.Now}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps db without managing its lifetime.
func New(db DBTX) *Store {
	return &Store{db: db, close: func() {}, now: time.Now}
}

func (s *Store) Close() error {
	s.close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id UUID PRIMARY KEY,
	company_name TEXT NOT NULL,
	industry TEXT,
	company_size TEXT,
	location TEXT,
	website TEXT,
	account_status TEXT DEFAULT 'Prospect',
	source TEXT,
	revenue_potential DOUBLE PRECISION,
	decision_timeline TEXT,
	technical_requirements TEXT,
	current_supplier TEXT,
	account_owner TEXT,
	last_contact DATE,
	next_followup DATE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	seq BIGSERIAL
);

CREATE INDEX IF NOT EXISTS idx_accounts_company_name ON accounts (lower(company_name));

CREATE TABLE IF NOT EXISTS contacts (
	contact_id UUID PRIMARY KEY,
	account_id UUID NOT NULL REFERENCES accounts(account_id),
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	title TEXT,
	email TEXT,
	phone TEXT,
	primary_contact BOOLEAN NOT NULL DEFAULT false,
	decision_maker BOOLEAN NOT NULL DEFAULT false,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	seq BIGSERIAL
);

CREATE TABLE IF NOT EXISTS communications (
	comm_id UUID PRIMARY KEY,
	account_id UUID NOT NULL REFERENCES accounts(account_id),
	contact_id UUID REFERENCES contacts(contact_id),
	comm_date DATE,
	comm_type TEXT,
	direction TEXT,
	subject TEXT,
	summary TEXT,
	next_steps TEXT,
	followup_required BOOLEAN NOT NULL DEFAULT false,
	followup_date DATE,
	created_at TIMESTAMPTZ NOT NULL,
	seq BIGSERIAL
);

CREATE TABLE IF NOT EXISTS opportunities (
	opp_id UUID PRIMARY KEY,
	account_id UUID NOT NULL REFERENCES accounts(account_id),
	opp_name TEXT NOT NULL,
	stage TEXT,
	value DOUBLE PRECISION,
	probability DOUBLE PRECISION,
	expected_close DATE,
	requirements TEXT,
	competition TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	seq BIGSERIAL
);
`

// EnsureSchema creates any missing tables. The seq column gives List a
// stable creation order independent of clock resolution.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
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

	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, a.ID, a.CompanyName, toPgText(a.Industry), toPgText(a.CompanySize),
		toPgText(a.Location), toPgText(a.Website), a.AccountStatus, toPgText(a.Source),
		toPgFloat8(a.RevenuePotential), toPgText(a.DecisionTimeline),
		toPgText(a.TechnicalRequirements), toPgText(a.CurrentSupplier),
		toPgText(a.AccountOwner), toPgDate(a.LastContact), toPgDate(a.NextFollowup),
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return model.Account{}, errors.Wrapf(err, "insert account %q", a.CompanyName)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var (
			a                                                 model.Account
			industry, size, location, website, status, source pgtype.Text
			timeline, requirements, supplier, owner           pgtype.Text
			revenue                                           pgtype.Float8
			lastContact, nextFollowup                         pgtype.Date
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
		a.RevenuePotential = fromPgFloat8(revenue)
		a.DecisionTimeline = timeline.String
		a.TechnicalRequirements = requirements.String
		a.CurrentSupplier = supplier.String
		a.AccountOwner = owner.String
		a.LastContact = fromPgDate(lastContact)
		a.NextFollowup = fromPgDate(nextFollowup)
		accounts = append(accounts, a)
	}
	return accounts, errors.Wrap(rows.Err(), "iterate accounts")
}

const contactColumns = `contact_id, account_id, first_name, last_name, title, email, phone,
	primary_contact, decision_maker, notes, created_at`

func (s *Store) CreateContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	c.ID = uuid.New()
	c.CreatedAt = s.now().UTC()

	_, err := s.db.Exec(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.AccountID, c.FirstName, c.LastName, toPgText(c.Title), toPgText(c.Email),
		toPgText(c.Phone), c.PrimaryContact, c.DecisionMaker, toPgText(c.Notes), c.CreatedAt)
	if err != nil {
		return model.Contact{}, errors.Wrapf(err, "insert contact %q %q", c.FirstName, c.LastName)
	}
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var (
			c                          model.Contact
			title, email, phone, notes pgtype.Text
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

	_, err := s.db.Exec(ctx, `
		INSERT INTO communications (`+communicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.AccountID, toPgUUID(c.ContactID), toPgDate(c.CommDate), toPgText(c.CommType),
		toPgText(c.Direction), toPgText(c.Subject), toPgText(c.Summary), toPgText(c.NextSteps),
		c.FollowupRequired, toPgDate(c.FollowupDate), c.CreatedAt)
	if err != nil {
		return model.Communication{}, errors.Wrapf(err, "insert communication %q", c.Subject)
	}
	return c, nil
}

func (s *Store) ListCommunications(ctx context.Context) ([]model.Communication, error) {
	rows, err := s.db.Query(ctx, `SELECT `+communicationColumns+` FROM communications ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query communications")
	}
	defer rows.Close()

	var comms []model.Communication
	for rows.Next() {
		var (
			c                                            model.Communication
			contactID                                    pgtype.UUID
			commDate, followupDate                       pgtype.Date
			commType, direction, subject, summary, steps pgtype.Text
		)
		if err := rows.Scan(&c.ID, &c.AccountID, &contactID, &commDate, &commType, &direction,
			&subject, &summary, &steps, &c.FollowupRequired, &followupDate, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan communication")
		}
		c.ContactID = fromPgUUID(contactID)
		c.CommDate = fromPgDate(commDate)
		c.CommType = commType.String
		c.Direction = direction.String
		c.Subject = subject.String
		c.Summary = summary.String
		c.NextSteps = steps.String
		c.FollowupDate = fromPgDate(followupDate)
		comms = append(comms, c)
	}
	return comms, errors.Wrap(rows.Err(), "iterate communications")
}

const opportunityColumns = `opp_id, account_id, opp_name, stage, value, probability,
	expected_close, requirements, competition, created_at`

func (s *Store) CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	o.ID = uuid.New()
	o.CreatedAt = s.now().UTC()

	_, err := s.db.Exec(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.AccountID, o.OppName, toPgText(o.Stage), toPgFloat8(o.Value),
		toPgFloat8(o.Probability), toPgDate(o.ExpectedClose), toPgText(o.Requirements),
		toPgText(o.Competition), o.CreatedAt)
	if err != nil {
		return model.Opportunity{}, errors.Wrapf(err, "insert opportunity %q", o.OppName)
	}
	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.Query(ctx, `SELECT `+opportunityColumns+` FROM opportunities ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var (
			o                                model.Opportunity
			stage, requirements, competition pgtype.Text
			value, probability               pgtype.Float8
			expectedClose                    pgtype.Date
		)
		if err := rows.Scan(&o.ID, &o.AccountID, &o.OppName, &stage, &value, &probability,
			&expectedClose, &requirements, &competition, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan opportunity")
		}
		o.Stage = stage.String
		o.Value = fromPgFloat8(value)
		o.Probability = fromPgFloat8(probability)
		o.ExpectedClose = fromPgDate(expectedClose)
		o.Requirements = requirements.String
		o.Competition = competition.String
		opps = append(opps, o)
	}
	return opps, errors.Wrap(rows.Err(), "iterate opportunities")
}
