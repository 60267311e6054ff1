// Package manager orchestrates generation across the provider registry:
// preferred-then-fallback single generation, concurrent ensemble
// generation, live availability probes and observability snapshots.
package manager

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"skillforge-hq/anvil/pkg/providers"
	"skillforge-hq/anvil/pkg/registry"
	"skillforge-hq/anvil/pkg/telemetry/metrics"
	"skillforge-hq/anvil/pkg/usage"
)

// tracerName identifies this package's spans.
const tracerName = "skillforge-hq/anvil/pkg/manager"

// Manager coordinates generation across active adapters. It holds no
// mutable state of its own; all per-provider state (cache, rate window,
// counters) lives inside the adapters.
//
// Like the adapters, Generate never returns a Go error: total failure is
// a synthetic response, not an exception, because the manager's entire
// purpose is graceful multi-provider degradation.
type Manager struct {
	registry *registry.Registry
	metrics  *metrics.ProviderMetrics
	usage    *usage.Tracker
	tracer   trace.Tracer
}

// Option configures optional manager collaborators.
type Option func(*Manager)

// WithMetrics attaches Prometheus provider metrics.
func WithMetrics(pm *metrics.ProviderMetrics) Option {
	return func(m *Manager) { m.metrics = pm }
}

// WithUsage attaches a usage tracker; every real successful generation
// is recorded against its provider.
func WithUsage(t *usage.Tracker) Option {
	return func(m *Manager) { m.usage = t }
}

// New creates a manager over a built registry.
func New(reg *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate produces a single response for the request.
//
// If preferred names an active, currently-available adapter it is tried
// first; a successful result returns immediately. Otherwise, and when
// allowFallback permits, the active adapters are tried strictly in
// ascending priority order, stopping at the first success. Fallback is
// sequential by design: dispatching concurrently would defeat the point
// of trying cheap local providers before expensive hosted ones.
//
// When every attempted adapter fails or is unavailable, the result is a
// synthetic total-failure response, attributed to the preferred identity
// when given, else the first configured identity, else a fixed default.
func (m *Manager) Generate(ctx context.Context, req *providers.GenerationRequest, preferred providers.ID, allowFallback bool) *providers.GenerationResponse {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ctx, span := m.tracer.Start(ctx, "manager.Generate",
		trace.WithAttributes(
			attribute.String("request.id", req.RequestID),
			attribute.String("request.preferred", string(preferred)),
			attribute.Bool("request.allow_fallback", allowFallback),
		))
	defer span.End()

	preferredTried := false

	if preferred != "" {
		if adapter, ok := m.registry.AdapterFor(preferred); ok && adapter.IsAvailable(ctx) {
			preferredTried = true
			resp := m.call(ctx, adapter, req)
			if resp.OK() {
				span.SetAttributes(attribute.String("response.provider", string(resp.Provider)))
				return resp
			}
			slog.Warn("preferred provider failed",
				"provider", preferred,
				"error", resp.Error,
				"request_id", req.RequestID,
			)
		} else {
			slog.Warn("preferred provider not active or unavailable",
				"provider", preferred,
				"request_id", req.RequestID,
			)
		}
	}

	if allowFallback || !preferredTried {
		for _, adapter := range m.registry.OrderedAdapters() {
			if preferredTried && adapter.Identity() == preferred {
				continue
			}
			if !adapter.IsAvailable(ctx) {
				slog.Debug("skipping unavailable provider",
					"provider", adapter.Identity(),
					"request_id", req.RequestID,
				)
				continue
			}

			resp := m.call(ctx, adapter, req)
			if resp.OK() {
				span.SetAttributes(attribute.String("response.provider", string(resp.Provider)))
				return resp
			}

			slog.Warn("provider failed, falling back",
				"provider", adapter.Identity(),
				"error", resp.Error,
				"request_id", req.RequestID,
			)
		}
	}

	span.SetAttributes(attribute.Bool("response.total_failure", true))
	return m.totalFailure(preferred, req)
}

// GenerateEnsemble fans the request out concurrently to exactly the
// requested adapters that are active and currently available; the rest
// are silently skipped. It collects responses in arrival order, success
// or per-adapter soft failure alike. A goroutine that panics despite the
// adapters' no-throw contract is logged and excluded without disturbing
// its siblings. An empty identity set yields an empty slice.
func (m *Manager) GenerateEnsemble(ctx context.Context, req *providers.GenerationRequest, identities []providers.ID) []*providers.GenerationResponse {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ctx, span := m.tracer.Start(ctx, "manager.GenerateEnsemble",
		trace.WithAttributes(
			attribute.String("request.id", req.RequestID),
			attribute.Int("request.identities", len(identities)),
		))
	defer span.End()

	var dispatched []providers.Adapter
	for _, id := range identities {
		adapter, ok := m.registry.AdapterFor(id)
		if !ok {
			slog.Debug("ensemble skipping inactive provider", "provider", id, "request_id", req.RequestID)
			continue
		}
		if !adapter.IsAvailable(ctx) {
			slog.Debug("ensemble skipping unavailable provider", "provider", id, "request_id", req.RequestID)
			continue
		}
		dispatched = append(dispatched, adapter)
	}

	results := make(chan *providers.GenerationResponse, len(dispatched))
	var wg sync.WaitGroup

	for _, adapter := range dispatched {
		wg.Add(1)
		go func(a providers.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("ensemble call panicked",
						"provider", a.Identity(),
						"panic", r,
						"stack", string(debug.Stack()),
						"request_id", req.RequestID,
					)
				}
			}()
			results <- m.call(ctx, a, req)
		}(adapter)
	}

	wg.Wait()
	close(results)

	responses := make([]*providers.GenerationResponse, 0, len(dispatched))
	for resp := range results {
		responses = append(responses, resp)
	}

	span.SetAttributes(attribute.Int("response.count", len(responses)))
	return responses
}

// ActiveProviders returns the identities of active adapters whose
// availability probe currently passes. This probes live at call time.
func (m *Manager) ActiveProviders(ctx context.Context) []providers.ID {
	var active []providers.ID
	for _, adapter := range m.registry.OrderedAdapters() {
		if adapter.IsAvailable(ctx) {
			active = append(active, adapter.Identity())
		}
	}
	return active
}

// ProviderStatistics is a read-only observability snapshot for one
// provider.
type ProviderStatistics struct {
	Available    bool    `json:"available"`
	Requests     int64   `json:"requests"`
	CacheHits    int64   `json:"cache_hits"`
	RateLimited  int64   `json:"rate_limited"`
	CacheSize    int     `json:"cache_size"`
	Model        string  `json:"model"`
	CostPerToken float64 `json:"cost_per_token"`
	Priority     int     `json:"priority"`
}

// Statistics returns a snapshot per active provider. It reads counters
// and probes availability but mutates no adapter state.
func (m *Manager) Statistics(ctx context.Context) map[providers.ID]ProviderStatistics {
	out := make(map[providers.ID]ProviderStatistics)
	for _, adapter := range m.registry.OrderedAdapters() {
		cfg := adapter.Config()
		stats := adapter.Stats()
		out[adapter.Identity()] = ProviderStatistics{
			Available:    adapter.IsAvailable(ctx),
			Requests:     stats.Requests,
			CacheHits:    stats.CacheHits,
			RateLimited:  stats.RateLimited,
			CacheSize:    stats.CacheSize,
			Model:        cfg.Model,
			CostPerToken: cfg.CostPerToken,
			Priority:     cfg.Priority,
		}
	}
	return out
}

// call invokes one adapter and records observability signals.
func (m *Manager) call(ctx context.Context, adapter providers.Adapter, req *providers.GenerationRequest) *providers.GenerationResponse {
	ctx, span := m.tracer.Start(ctx, "provider.Generate",
		trace.WithAttributes(attribute.String("provider", string(adapter.Identity()))))
	defer span.End()

	resp := adapter.Generate(ctx, req)

	if m.metrics != nil {
		id, model := string(resp.Provider), resp.Model
		switch {
		case resp.FromCache:
			m.metrics.RecordCacheHit(id)
		case resp.OK():
			m.metrics.RecordRequest(id, model)
			m.metrics.RecordLatency(id, model, resp.Latency.Seconds())
			m.metrics.RecordCost(id, model, resp.EstimatedCost)
		default:
			m.metrics.RecordRequest(id, model)
			m.metrics.RecordError(id)
		}
	}

	if m.usage != nil && resp.OK() && !resp.FromCache {
		m.usage.Record(resp.Provider, resp.OutputTokens, resp.EstimatedCost)
	}

	span.SetAttributes(
		attribute.Bool("response.from_cache", resp.FromCache),
		attribute.Bool("response.ok", resp.OK()),
	)
	return resp
}

// totalFailure builds the synthetic response for a request no provider
// could serve.
func (m *Manager) totalFailure(preferred providers.ID, req *providers.GenerationRequest) *providers.GenerationResponse {
	attributed := preferred
	if attributed == "" {
		if ordered := m.registry.OrderedAdapters(); len(ordered) > 0 {
			attributed = ordered[0].Identity()
		} else {
			attributed = providers.DefaultID
		}
	}

	slog.Error("all providers failed or unavailable",
		"attributed_provider", attributed,
		"request_id", req.RequestID,
	)

	return &providers.GenerationResponse{
		Provider: attributed,
		Error:    providers.ErrAllProvidersFailed,
	}
}
