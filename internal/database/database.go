package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// New opens a PostgreSQL connection pool and verifies it with a ping.
func New(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		token VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS voiceprints (
		user_id UUID NOT NULL REFERENCES users (user_id),
		embedding JSONB,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS records (
		record_id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (user_id),
		department TEXT NOT NULL,
		transcript TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS reminders (
		reminder_id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (user_id),
		message TEXT NOT NULL,
		remind_at VARCHAR(16) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_token ON users (token) WHERE token <> '';
	CREATE INDEX IF NOT EXISTS idx_reminders_triple ON reminders (user_id, message, remind_at);
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	return err
}
