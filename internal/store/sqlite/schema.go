package sqlite

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
)

// Date-only attributes are TEXT in YYYY-MM-DD form. Declaring them DATE
// would make the driver hand them back as timestamps.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	industry TEXT,
	company_size TEXT,
	location TEXT,
	website TEXT,
	account_status TEXT DEFAULT 'Prospect',
	source TEXT,
	revenue_potential REAL,
	decision_timeline TEXT,
	technical_requirements TEXT,
	current_supplier TEXT,
	account_owner TEXT,
	last_contact TEXT,
	next_followup TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_company_name ON accounts(company_name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS contacts (
	contact_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	title TEXT,
	email TEXT,
	phone TEXT,
	primary_contact BOOLEAN NOT NULL DEFAULT 0,
	decision_maker BOOLEAN NOT NULL DEFAULT 0,
	notes TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (account_id) REFERENCES accounts(account_id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_account_id ON contacts(account_id);

CREATE TABLE IF NOT EXISTS communications (
	comm_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	contact_id TEXT,
	comm_date TEXT,
	comm_type TEXT,
	direction TEXT,
	subject TEXT,
	summary TEXT,
	next_steps TEXT,
	followup_required BOOLEAN NOT NULL DEFAULT 0,
	followup_date TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (account_id) REFERENCES accounts(account_id),
	FOREIGN KEY (contact_id) REFERENCES contacts(contact_id)
);

CREATE INDEX IF NOT EXISTS idx_communications_account_id ON communications(account_id);

CREATE TABLE IF NOT EXISTS opportunities (
	opp_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	opp_name TEXT NOT NULL,
	stage TEXT,
	value REAL,
	probability REAL,
	expected_close TEXT,
	requirements TEXT,
	competition TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (account_id) REFERENCES accounts(account_id)
);

CREATE INDEX IF NOT EXISTS idx_opportunities_account_id ON opportunities(account_id);
`

// InitSchema creates any missing tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "init schema")
	}
	return nil
}
