// Package store provides a SQLite-based implementation of the KV interface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/aetherchat/settings"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS aether_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO aether_settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key)
		DO UPDATE SET value = ?, updated_at = ?
	`

	sqliteSelectSQL = `
		SELECT value FROM aether_settings WHERE key = ?
	`

	sqliteSelectKeysSQL = `
		SELECT key FROM aether_settings
	`

	sqliteDeleteSQL = `
		DELETE FROM aether_settings WHERE key = ?
	`
)

// SQLiteKV implements the KV interface using SQLite.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens the SQLite database at the given path and runs
// migrations.
func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	kv := &SQLiteKV{db: db}
	if err := kv.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return kv, nil
}

// migrate runs the necessary database migrations.
func (s *SQLiteKV) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Get retrieves the value stored under key.
// It returns settings.ErrNotFound if the key holds nothing.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, sqliteSelectSQL, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", settings.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// Set stores or updates the value under key.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, sqliteUpsertSQL, key, value, now, value, now)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing a missing key is
// not an error.
func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, sqliteDeleteSQL, key); err != nil {
		return fmt.Errorf("failed to remove setting: %w", err)
	}
	return nil
}

// Keys returns all stored keys.
func (s *SQLiteKV) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectKeysSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("Error closing rows: %v\n", cerr)
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return keys, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
