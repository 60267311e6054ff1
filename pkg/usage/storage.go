package usage

import (
	"context"
	"sync"

	"skillforge-hq/anvil/pkg/providers"
)

// Backend persists usage totals across restarts.
type Backend interface {
	// Save replaces the persisted totals with the given snapshot.
	Save(ctx context.Context, totals map[providers.ID]Totals) error

	// Load returns the persisted totals, or an empty map when nothing
	// has been saved yet.
	Load(ctx context.Context) (map[providers.ID]Totals, error)

	// Close releases backend resources.
	Close() error
}

// MemoryBackend is a Backend that lives only for the process lifetime.
// Useful for tests and for deployments that don't need durable totals.
type MemoryBackend struct {
	mu     sync.RWMutex
	totals map[providers.ID]Totals
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		totals: make(map[providers.ID]Totals),
	}
}

// Save replaces the stored totals.
func (m *MemoryBackend) Save(_ context.Context, totals map[providers.ID]Totals) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totals = make(map[providers.ID]Totals, len(totals))
	for id, t := range totals {
		m.totals[id] = t
	}
	return nil
}

// Load returns a copy of the stored totals.
func (m *MemoryBackend) Load(_ context.Context) (map[providers.ID]Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[providers.ID]Totals, len(m.totals))
	for id, t := range m.totals {
		out[id] = t
	}
	return out, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
