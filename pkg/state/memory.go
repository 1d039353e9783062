package state

import (
	"context"
	"sync"
)

// Memory keeps state and journal entries in process memory.
type Memory struct {
	mu          sync.Mutex
	values      map[string]string
	invocations []Invocation
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key; missing keys are not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Record appends an invocation.
func (m *Memory) Record(_ context.Context, inv Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invocations = append(m.invocations, inv)
	return nil
}

// List returns filtered invocations in recording order. With a limit,
// the most recent entries are kept.
func (m *Memory) List(_ context.Context, filter Filter) ([]Invocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Invocation, 0, len(m.invocations))
	for _, inv := range m.invocations {
		if filter.match(inv) {
			out = append(out, inv)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
