// Package storage provides the string-keyed persistent slots behind the bookmark store.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// KV is a persistent key-value store holding string values.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set replaces the value stored under key.
	Set(key, value string) error
	Close() error
}

// Open creates the backend of the given kind rooted at dir.
func Open(kind, dir string) (KV, error) {
	switch kind {
	case "", KindFile:
		return NewFileKV(dir)
	case KindSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
		return OpenSQLite(filepath.Join(dir, "catalog.db"))
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}

// Memory is an in-process KV, used in tests and as a fallback.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
