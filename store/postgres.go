// Package store provides a PostgreSQL-based implementation of the KV interface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/aetherchat/settings"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	pgCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS aether_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	pgUpsertSQL = `
		INSERT INTO aether_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = $2, updated_at = $3
	`

	pgSelectSQL = `
		SELECT value FROM aether_settings WHERE key = $1
	`

	pgSelectKeysSQL = `
		SELECT key FROM aether_settings
	`

	pgDeleteSQL = `
		DELETE FROM aether_settings WHERE key = $1
	`
)

// PostgresKV implements the KV interface using PostgreSQL.
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV connects to PostgreSQL using the provided connection
// string and runs migrations.
func NewPostgresKV(connString string) (*PostgresKV, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	kv := &PostgresKV{db: db}
	if err := kv.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return kv, nil
}

// migrate runs the necessary database migrations.
func (p *PostgresKV) migrate() error {
	_, err := p.db.Exec(pgCreateTableSQL)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key.
// It returns settings.ErrNotFound if the key holds nothing.
func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx, pgSelectSQL, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: failed to get setting: %w", err)
	}
	return value, nil
}

// Set stores or updates the value under key.
func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	if _, err := p.db.ExecContext(ctx, pgUpsertSQL, key, value, time.Now()); err != nil {
		return fmt.Errorf("postgres: failed to set setting: %w", err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing a missing key is
// not an error.
func (p *PostgresKV) Remove(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, pgDeleteSQL, key); err != nil {
		return fmt.Errorf("postgres: failed to remove setting: %w", err)
	}
	return nil
}

// Keys returns all stored keys.
func (p *PostgresKV) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, pgSelectKeysSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: error iterating rows: %w", err)
	}
	return keys, nil
}

// Close closes the PostgreSQL database connection.
func (p *PostgresKV) Close() error {
	return p.db.Close()
}
