package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotConnected is returned by Save and Get when the store has not been
// connected, or has been disconnected. Callers are expected to surface it
// unchanged rather than translate it.
var ErrNotConnected = errors.New("database not connected")

// Store defines a connected-gated key/value store. Connect and Disconnect
// toggle availability and are idempotent; Save and Get fail with
// ErrNotConnected while disconnected. Get reports absence through the bool,
// never through an error.
type Store[V any] interface {
	Connect()
	Disconnect()
	Save(ctx context.Context, key string, value V) error
	Get(ctx context.Context, key string) (V, bool, error)
}

// Memory implements Store with a mutex-guarded map. Disconnecting gates
// access but keeps the data, so a reconnect sees everything written before.
type Memory[V any] struct {
	mu        sync.RWMutex
	data      map[string]V
	connected bool
}

// NewMemory creates a disconnected in-memory store.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		data: make(map[string]V),
	}
}

// Connect marks the store available. Connecting twice is a no-op.
func (m *Memory[V]) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
}

// Disconnect marks the store unavailable. Stored values are retained.
func (m *Memory[V]) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

// Connected reports current availability. Used by health checks; not part
// of the Store contract.
func (m *Memory[V]) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Save stores value under key, overwriting any previous value.
func (m *Memory[V]) Save(ctx context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.data[key] = value
	return nil
}

// Get retrieves the value for key. Returns (value, true, nil) when present
// and (zero, false, nil) when absent.
func (m *Memory[V]) Get(ctx context.Context, key string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var zero V
	if !m.connected {
		return zero, false, ErrNotConnected
	}
	v, ok := m.data[key]
	if !ok {
		return zero, false, nil
	}
	return v, true, nil
}
