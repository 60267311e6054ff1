package providers

import "context"

// Adapter is the core interface every backend adapter implements. It owns
// the mechanics of calling exactly one backend and normalizing the outcome
// into a GenerationResponse.
//
// Generate never returns a Go error and never panics: backend failures of
// every kind (network, auth, rate limiting, malformed payloads) are
// expressed as a populated Error field on an otherwise well-formed
// response. The manager depends on this to keep its fallback chain alive
// past a failing provider.
type Adapter interface {
	// Generate runs the full pipeline for one request: cache lookup,
	// rate-limit check, backend invocation, normalization and cost
	// accounting. A cache hit bypasses the rate limiter and the network
	// entirely and is marked with FromCache.
	Generate(ctx context.Context, req *GenerationRequest) *GenerationResponse

	// IsAvailable is a lightweight health probe used to skip clearly-dead
	// backends before attempting generation. It must not block for more
	// than a few seconds and must not panic; any probe failure, including
	// a missing credential, reports false.
	IsAvailable(ctx context.Context) bool

	// Identity returns the backend kind this adapter talks to.
	Identity() ID

	// Config returns the adapter's configuration snapshot.
	Config() Config

	// Stats returns a read-only snapshot of the adapter's counters.
	Stats() Stats
}

// Invocation is the raw outcome of a single backend call, before
// normalization and cost accounting.
type Invocation struct {
	// Content is the generated text.
	Content string

	// OutputTokens is the backend-reported output token count.
	// Ignored unless Exact is true.
	OutputTokens int

	// Exact reports whether the backend provided a real token count.
	// When false the base adapter falls back to the word-count heuristic.
	Exact bool
}

// Backend is implemented by each vendor package and plugged into a
// BaseAdapter. Invoke performs the provider-specific network call; Probe
// performs the cheap health check behind IsAvailable.
type Backend interface {
	Invoke(ctx context.Context, req *GenerationRequest) (*Invocation, error)
	Probe(ctx context.Context) error
}
