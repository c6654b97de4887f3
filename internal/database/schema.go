package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Schema is applied at startup so a fresh database serves traffic without a
// separate provisioning step. Statements are idempotent; the identity store
// is owned by the identity provider and never touched here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS child_records (
		health_id           TEXT PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		gender              TEXT,
		date_of_birth       TEXT,
		age_months          INTEGER,
		weight_kg           DOUBLE PRECISION,
		height_cm           DOUBLE PRECISION,
		malnutrition_status TEXT,
		guardian_name       TEXT,
		guardian_phone      TEXT,
		relation            TEXT,
		id_reference        TEXT,
		location            TEXT,
		representative      TEXT,
		photo_data          TEXT,
		uploader_name       TEXT,
		uploader_email      TEXT,
		uploader_location   TEXT,
		uploaded_by         TEXT NOT NULL DEFAULT 'anonymous',
		status              TEXT NOT NULL DEFAULT 'uploaded',
		uploaded_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS child_records_uploaded_at_idx ON child_records (uploaded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'admin',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS admin_users_username_key ON admin_users (username)`,
}

// EnsureSchema applies all statements in one transaction so a partially
// provisioned database never serves traffic.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
