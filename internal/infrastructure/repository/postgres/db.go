package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockID int64 = 2026101701

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL UNIQUE,
	balance NUMERIC(14,2) NOT NULL CHECK (balance >= 0),
	card_number TEXT UNIQUE,
	card_issued BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS claims (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id),
	provider_name TEXT NOT NULL,
	service_description TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	service_date TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	requires_documentation BOOLEAN NOT NULL DEFAULT FALSE,
	documentation_type TEXT NOT NULL DEFAULT '',
	has_documentation BOOLEAN NOT NULL DEFAULT FALSE,
	document_count INTEGER NOT NULL DEFAULT 0,
	channel TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claims_account_created ON claims(account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_claims_account_status ON claims(account_id, status);

CREATE TABLE IF NOT EXISTS claim_audit (
	event_id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	claim_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	status TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	channel TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claim_audit_claim ON claim_audit(claim_id, occurred_at);
`

// EnsureSchema creates the tables if missing. Safe to run from every replica.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
