// Package store keeps the hashes of the slash commands a bot registered,
// per scope. The empty scope holds global commands, other scopes are guild
// IDs.
package store

import (
	"context"
	"sort"
	"sync"
)

// Store is the command hash cache used by the sync step.
type Store interface {
	// Hashes returns command name -> hash for scope.
	Hashes(ctx context.Context, scope string) (map[string]string, error)
	// SaveHashes replaces the hashes of scope. An empty map forgets the scope.
	SaveHashes(ctx context.Context, scope string, hashes map[string]string) error
	// Scopes lists the scopes holding at least one hash.
	Scopes(ctx context.Context) ([]string, error)
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{scopes: make(map[string]map[string]string)}
}

func (m *Memory) Hashes(_ context.Context, scope string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.scopes[scope]))
	for k, v := range m.scopes[scope] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) SaveHashes(_ context.Context, scope string, hashes map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(hashes) == 0 {
		delete(m.scopes, scope)
		return nil
	}
	cp := make(map[string]string, len(hashes))
	for k, v := range hashes {
		cp[k] = v
	}
	m.scopes[scope] = cp
	return nil
}

func (m *Memory) Scopes(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.scopes))
	for s := range m.scopes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
