package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// mockStore implements the Store interface for testing. It records every
// durable write in completion order and can be told to fail or stall.
type mockStore struct {
	mu         sync.Mutex
	data       map[string]interface{}
	writes     []mockWrite
	setDelay   time.Duration
	setErr     error
	resetCalls int
}

type mockWrite struct {
	key   string
	value interface{}
}

func newMockStore() *mockStore {
	return &mockStore{
		data: make(map[string]interface{}),
	}
}

func (m *mockStore) GetAll(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := make(Snapshot, len(m.data))
	for k, v := range m.data {
		snap[k] = v
	}
	return snap, nil
}

func (m *mockStore) Set(_ context.Context, key string, value interface{}) error {
	m.mu.Lock()
	delay := m.setDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.writes = append(m.writes, mockWrite{key: key, value: value})
	return nil
}

func (m *mockStore) Export(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(m.data)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *mockStore) get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockStore) Import(_ context.Context, _ string) error {
	return nil
}

func (m *mockStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.resetCalls++
	m.data = make(map[string]interface{})
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) writeLog() []mockWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := make([]mockWrite, len(m.writes))
	copy(log, m.writes)
	return log
}

// mockWiper implements RemoteWiper for testing.
type mockWiper struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockWiper) Wipe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

// mockLogger implements the Logger interface for testing.
type mockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *mockLogger) log(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(args) > 0 {
		m.Messages = append(m.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
		return
	}
	m.Messages = append(m.Messages, fmt.Sprintf("%s: %s", level, msg))
}

func (m *mockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *mockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *mockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }

func (m *mockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, fmt.Sprintf("SET_LEVEL: %v", level))
}
