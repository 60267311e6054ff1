// Package usage tracks per-provider consumption: request counts, output
// tokens and estimated cost. Totals accumulate in memory and can be
// snapshotted to a storage backend, either on demand or on a cron
// schedule. No prompt or response text is ever recorded.
package usage

import (
	"context"
	"sync"
	"time"

	"skillforge-hq/anvil/pkg/providers"
)

// Totals is the accumulated consumption for one provider.
type Totals struct {
	// Requests counts successful real (non-cached) generations.
	Requests int64 `json:"requests"`

	// OutputTokens is the accumulated output token count.
	OutputTokens int64 `json:"output_tokens"`

	// EstimatedCost is the accumulated estimated cost in USD.
	EstimatedCost float64 `json:"estimated_cost"`

	// UpdatedAt is the time of the last recorded generation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker accumulates usage totals per provider. It is safe for
// concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	totals  map[providers.ID]*Totals
	backend Backend
}

// NewTracker creates a tracker. backend may be nil for a purely
// in-memory tracker; with a backend, previously persisted totals are
// loaded so counts survive restarts.
func NewTracker(ctx context.Context, backend Backend) (*Tracker, error) {
	t := &Tracker{
		totals:  make(map[providers.ID]*Totals),
		backend: backend,
	}

	if backend != nil {
		loaded, err := backend.Load(ctx)
		if err != nil {
			return nil, err
		}
		for id, totals := range loaded {
			copied := totals
			t.totals[id] = &copied
		}
	}

	return t, nil
}

// Record accumulates one successful generation.
func (t *Tracker) Record(id providers.ID, outputTokens int, estimatedCost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	totals, ok := t.totals[id]
	if !ok {
		totals = &Totals{}
		t.totals[id] = totals
	}

	totals.Requests++
	totals.OutputTokens += int64(outputTokens)
	totals.EstimatedCost += estimatedCost
	totals.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the current totals.
func (t *Tracker) Snapshot() map[providers.ID]Totals {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[providers.ID]Totals, len(t.totals))
	for id, totals := range t.totals {
		out[id] = *totals
	}
	return out
}

// Flush persists the current totals to the backend, if one is configured.
func (t *Tracker) Flush(ctx context.Context) error {
	if t.backend == nil {
		return nil
	}
	return t.backend.Save(ctx, t.Snapshot())
}

// Close flushes and releases the backend.
func (t *Tracker) Close(ctx context.Context) error {
	if t.backend == nil {
		return nil
	}
	if err := t.Flush(ctx); err != nil {
		return err
	}
	return t.backend.Close()
}
