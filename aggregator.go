// aggregator.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Aggregator is the process-wide reactive cache over the settings store.
// It owns the in-memory Snapshot: UpdateSetting applies the new value to
// the cache immediately and persists it asynchronously, so the UI never
// blocks on storage. Writes to the same key are persisted in the order
// they were issued, which makes the cache last-write-wins by call
// sequence rather than by completion time of the underlying I/O.
//
// A single Aggregator is created at startup and passed explicitly to its
// consumers; there is no package-level instance.
type Aggregator struct {
	mu     sync.RWMutex
	config *Config
	snap   Snapshot
	queues map[string]*writeQueue
	subs   map[int]chan Snapshot
	idle   *sync.Cond
	nextID int
	closed bool
	wg     sync.WaitGroup
}

type writeQueue struct {
	pending []pendingWrite
	busy    bool
}

type pendingWrite struct {
	ctx   context.Context
	key   string
	value interface{}
	done  chan error
}

// New creates an Aggregator. WithStore is required; the snapshot starts
// from schema defaults until Load is called.
func New(opts ...Option) *Aggregator {
	cfg := &Config{
		logger: NewDefaultLogger(),
		schema: DefaultSchema(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	a := &Aggregator{
		config: cfg,
		snap:   cfg.schema.Defaults(),
		queues: make(map[string]*writeQueue),
		subs:   make(map[int]chan Snapshot),
	}
	a.idle = sync.NewCond(&a.mu)
	return a
}

// Schema returns the preference schema the aggregator was built with.
func (a *Aggregator) Schema() *Schema {
	return a.config.schema
}

// Load reads the durable snapshot once at startup. The store fails open,
// so a missing or corrupt backend yields schema defaults rather than an
// error reaching the UI.
func (a *Aggregator) Load(ctx context.Context) error {
	snap, err := a.config.store.GetAll(ctx)
	if err != nil {
		a.config.logger.Warn("settings load failed, using defaults", "error", err)
		snap = a.config.schema.Defaults()
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.snap = snap
	a.mu.Unlock()

	a.publish(snap)
	return nil
}

// Snapshot returns the current immutable snapshot. Callers may hold the
// returned value indefinitely; it is never mutated.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Get returns the current value for key, falling back to the schema
// default when the snapshot holds nothing for it.
func (a *Aggregator) Get(key string) (interface{}, error) {
	def, ok := a.config.schema.Definition(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotDefined, key)
	}

	a.mu.RLock()
	v, exists := a.snap.Get(key)
	a.mu.RUnlock()

	if !exists {
		return copyValue(def.Default), nil
	}
	return copyValue(v), nil
}

// Sections projects the current snapshot onto the schema's section
// catalog, ready for rendering.
func (a *Aggregator) Sections() []Section {
	return BuildSections(a.config.schema, a.Snapshot())
}

// UpdateSetting validates value, applies it to the in-memory snapshot
// immediately, and schedules the durable write. The returned channel
// receives the outcome of the write; on failure the optimistic value is
// kept in memory (accepted inconsistency window) and the failure is
// logged, so callers may ignore the channel.
func (a *Aggregator) UpdateSetting(ctx context.Context, key string, value interface{}) (<-chan error, error) {
	def, ok := a.config.schema.Definition(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotDefined, key)
	}
	norm, err := def.Normalize(value)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrClosed
	}
	a.snap = a.snap.With(key, norm)
	snap := a.snap

	q := a.queues[key]
	if q == nil {
		q = &writeQueue{}
		a.queues[key] = q
	}
	q.pending = append(q.pending, pendingWrite{ctx: ctx, key: key, value: norm, done: done})
	start := !q.busy
	if start {
		q.busy = true
		a.wg.Add(1)
	}
	a.mu.Unlock()

	a.publish(snap)
	if start {
		go a.drain(q)
	}
	return done, nil
}

// drain persists queued writes for one key in FIFO order. Only one drain
// goroutine runs per key at a time, which keeps durable writes in issue
// order even when the backend reorders completions internally.
func (a *Aggregator) drain(q *writeQueue) {
	defer a.wg.Done()
	for {
		a.mu.Lock()
		if len(q.pending) == 0 {
			q.busy = false
			a.idle.Broadcast()
			a.mu.Unlock()
			return
		}
		w := q.pending[0]
		q.pending = q.pending[1:]
		a.mu.Unlock()

		err := a.config.store.Set(w.ctx, w.key, w.value)
		if err != nil {
			// No rollback: the optimistic value stays authoritative in memory.
			a.config.logger.Warn("settings write failed, keeping optimistic value",
				"key", w.key, "error", err)
		}
		w.done <- err
		close(w.done)
	}
}

// Watch registers a subscriber that receives the new snapshot after every
// committed mutation. Delivery coalesces: a slow subscriber sees the
// latest snapshot, not every intermediate one. The returned cancel
// function unregisters the subscriber and closes the channel.
func (a *Aggregator) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = ch
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if sub, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(sub)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Aggregator) publish(snap Snapshot) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, ch := range a.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// WatchExternal reloads the snapshot whenever the changes channel fires,
// so edits made to the backend behind the aggregator's back (for example
// a hand-edited settings file) reach watchers. The goroutine exits when
// ctx is cancelled or the channel closes.
func (a *Aggregator) WatchExternal(ctx context.Context, changes <-chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				err := a.Load(ctx)
				if errors.Is(err, ErrClosed) {
					return
				}
				if err != nil {
					a.config.logger.Warn("external settings reload failed", "error", err)
				}
			}
		}
	}()
}

// flush blocks until every per-key write queue has drained. Store-level
// operations (export, import, reset) must not run while queued writes
// are still in flight: an export taken mid-queue would miss issued
// values, and a reset could be overwritten by a write that was issued
// before it.
func (a *Aggregator) flush() {
	a.mu.Lock()
	for a.busyLocked() {
		a.idle.Wait()
	}
	a.mu.Unlock()
}

func (a *Aggregator) busyLocked() bool {
	for _, q := range a.queues {
		if q.busy || len(q.pending) > 0 {
			return true
		}
	}
	return false
}

// Export serializes the current durable snapshot into transportable
// text. Pending writes are flushed first, so the export reflects every
// update issued before the call.
func (a *Aggregator) Export(ctx context.Context) (string, error) {
	a.flush()
	return a.config.store.Export(ctx)
}

// Import applies a previously exported payload and reloads the snapshot
// from storage, so watchers observe the imported values. Pending writes
// are flushed first so the import cannot interleave with them.
func (a *Aggregator) Import(ctx context.Context, payload string) error {
	a.flush()
	if err := a.config.store.Import(ctx, payload); err != nil {
		return err
	}
	return a.Load(ctx)
}

// Reset restores every preference to its schema default, durably and in
// memory. It is idempotent. Pending writes are flushed first: a write
// issued before the reset must land before the defaults do, never after
// them, or durable storage would resurrect a value memory no longer
// holds.
func (a *Aggregator) Reset(ctx context.Context) error {
	a.flush()
	if err := a.config.store.Reset(ctx); err != nil {
		return err
	}
	defaults := a.config.schema.Defaults()

	a.mu.Lock()
	a.snap = defaults
	a.mu.Unlock()

	a.publish(defaults)
	return nil
}

// ClearAll runs the destructive clear-data flow: remote deletion first,
// then local reset. When remote deletion fails the local reset is
// aborted, so local state is never emptied while the backend still holds
// data. Callers are expected to have confirmed the action with the user.
func (a *Aggregator) ClearAll(ctx context.Context) error {
	if a.config.wiper != nil {
		if err := a.config.wiper.Wipe(ctx); err != nil {
			return fmt.Errorf("%w: remote deletion: %v", ErrDestructiveAction, err)
		}
	}
	if err := a.Reset(ctx); err != nil {
		return fmt.Errorf("%w: local reset: %v", ErrDestructiveAction, err)
	}
	return nil
}

// Close drains all pending writes and closes subscriber channels. The
// aggregator rejects further mutations afterwards.
func (a *Aggregator) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()

	a.mu.Lock()
	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
	a.mu.Unlock()
	return nil
}
