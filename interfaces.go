// Package settings defines the interfaces for durable storage, the
// aggregator's store boundary, and remote wipe collaborators.
package settings

import "context"

// KV is the durable key-value collaborator every store backend is built
// on. Get returns ErrNotFound when the key holds nothing.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Store is the persistence boundary the Aggregator writes through.
// Implemented by store.Store.
type Store interface {
	GetAll(ctx context.Context) (Snapshot, error)
	Set(ctx context.Context, key string, value interface{}) error
	Export(ctx context.Context) (string, error)
	Import(ctx context.Context, payload string) error
	Reset(ctx context.Context) error
	Close() error
}

// RemoteWiper deletes remotely held user data (conversations, profile)
// during a clear-all-data flow. Local reset must not proceed when Wipe
// fails, so local and remote state cannot diverge mid-failure.
type RemoteWiper interface {
	Wipe(ctx context.Context) error
}
