package store

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process store. Values are lost on exit.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte

	// failWith, when set, makes every Set fail. Tests use it to simulate a
	// full or read-only disk.
	failWith error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// FailWrites makes every subsequent Set return err. Pass nil to recover.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = err
}

// Get reads a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, notFound(key)
	}

	return cloneBytes(v), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}

	m.values[key] = cloneBytes(value)

	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)

	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Name implements ports.HealthChecker.
func (m *Memory) Name() string {
	return "store"
}

// Check always succeeds unless writes are failing.
func (m *Memory) Check(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failWith != nil {
		return errors.Join(errors.New("writes failing"), m.failWith)
	}

	return nil
}
