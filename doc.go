// Package settings provides the preference layer of the Aether client: a
// declarative preference schema, an immutable settings snapshot, and a
// reactive aggregator that applies optimistic updates and persists them
// in issue order through a durable store.
//
// Durable backends (memory, file, SQLite, PostgreSQL, Redis) live in the
// store subpackage; the animated drawer navigator that presents settings
// sections lives in the drawer subpackage.
package settings
