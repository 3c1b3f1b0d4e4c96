// Package store implements the durable settings layer on top of the four
// KV collaborator primitives, plus the KV backends themselves.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aetherchat/settings"
)

// exportVersion tags the export envelope. The format is consumed by the
// platform share sheet and re-imported later, so it must stay stable.
const exportVersion = 1

type exportEnvelope struct {
	Version  int                    `json:"version"`
	Settings map[string]interface{} `json:"settings"`
}

// Store persists the preference snapshot through a KV backend. Values are
// JSON-encoded per key. Reads fail open: a missing or corrupt key yields
// the schema default for that key and a warning, never an error.
type Store struct {
	kv     settings.KV
	schema *settings.Schema
	logger settings.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for fail-open warnings.
func WithLogger(l settings.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store over the given KV backend and schema.
func New(kv settings.KV, schema *settings.Schema, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		schema: schema,
		logger: settings.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll reads every known key. Durability failures must not crash the
// UI, so any per-key read or decode failure substitutes the schema
// default for that key only. The returned error is always nil; the
// signature matches the settings.Store boundary.
func (s *Store) GetAll(ctx context.Context) (settings.Snapshot, error) {
	snap := s.schema.Defaults()
	for _, key := range s.schema.Keys() {
		def, _ := s.schema.Definition(key)
		if !def.Kind.HasValue() {
			continue
		}

		raw, err := s.kv.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, settings.ErrNotFound) {
				s.logger.Warn("settings read failed, using default", "key", key, "error", err)
			}
			continue
		}

		value, err := decodeValue(def, raw)
		if err != nil {
			s.logger.Warn("settings value corrupt, using default", "key", key, "error", err)
			continue
		}
		snap[key] = value
	}
	return snap, nil
}

// Set validates and durably writes one value. Backend failures are
// surfaced as ErrStorageWrite; the caller decides what to do with the
// in-memory value.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	def, ok := s.schema.Definition(key)
	if !ok {
		return fmt.Errorf("%w: %q", settings.ErrNotDefined, key)
	}
	norm, err := def.Normalize(value)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("%w: marshal %q: %v", settings.ErrStorageWrite, key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("%w: %q: %v", settings.ErrStorageWrite, key, err)
	}
	return nil
}

// Export serializes the full snapshot into a versioned JSON envelope.
// Importing the result reproduces an equivalent snapshot.
func (s *Store) Export(ctx context.Context) (string, error) {
	snap, _ := s.GetAll(ctx)

	env := exportEnvelope{
		Version:  exportVersion,
		Settings: map[string]interface{}(snap),
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", settings.ErrExport, err)
	}
	return string(data), nil
}

// Import applies a previously exported payload. Unknown keys are skipped
// with a warning; invalid values for known keys abort the import.
func (s *Store) Import(ctx context.Context, payload string) error {
	var env exportEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return fmt.Errorf("%w: %v", settings.ErrImport, err)
	}
	if env.Version != exportVersion {
		return fmt.Errorf("%w: unsupported version %d", settings.ErrImport, env.Version)
	}

	for _, key := range s.schema.Keys() {
		value, ok := env.Settings[key]
		if !ok {
			continue
		}
		if err := s.Set(ctx, key, value); err != nil {
			return fmt.Errorf("%w: %q: %v", settings.ErrImport, key, err)
		}
	}
	for key := range env.Settings {
		if _, ok := s.schema.Definition(key); !ok {
			s.logger.Warn("import skipped unknown key", "key", key)
		}
	}
	return nil
}

// Reset rewrites every value-carrying key to its schema default. Running
// it twice leaves storage in the same state as running it once.
func (s *Store) Reset(ctx context.Context) error {
	for _, key := range s.schema.Keys() {
		def, _ := s.schema.Definition(key)
		if !def.Kind.HasValue() {
			continue
		}
		if err := s.Set(ctx, key, def.Default); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying KV backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

func decodeValue(def settings.Definition, raw string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return def.Normalize(v)
}
