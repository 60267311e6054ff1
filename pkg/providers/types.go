package providers

import "time"

// ID identifies a backend kind (local inference server or hosted vendor).
// The set of known identities is fixed at compile time; the registry skips
// configurations that reference an identity it does not recognize.
type ID string

const (
	// IDOllama is the local inference server (no credential, zero cost).
	IDOllama ID = "ollama"

	// IDOpenAI is the OpenAI chat completions API.
	IDOpenAI ID = "openai"

	// IDAnthropic is the Anthropic messages API.
	IDAnthropic ID = "anthropic"

	// IDGemini is the Google Gemini generateContent API.
	IDGemini ID = "gemini"
)

// DefaultID is the identity attributed to synthetic responses when no
// provider is configured at all.
const DefaultID = IDOllama

// Config contains configuration for a single provider instance.
// It is created from file/environment configuration at startup and is
// read-only thereafter.
type Config struct {
	// Identity is the backend kind this config targets.
	Identity ID

	// Model is the model identifier sent to the backend
	// (e.g., "gpt-4o-mini", "claude-3-5-haiku-latest", "llama3.1").
	Model string

	// APIKey is the authentication credential. Hosted vendors require it;
	// the local inference adapter ignores it.
	APIKey string

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string

	// MaxTokens is the default output token cap for generation requests.
	MaxTokens int

	// Temperature is the default sampling temperature.
	Temperature float64

	// Timeout is the per-request timeout for generation calls.
	Timeout time.Duration

	// RateLimitPerMinute caps real (non-cached) calls per rolling minute.
	RateLimitPerMinute int

	// CostPerToken is the estimated cost per output token in USD.
	CostPerToken float64

	// Enabled controls whether the registry instantiates an adapter
	// for this config at all.
	Enabled bool

	// Priority orders fallback attempts; lower values are tried first.
	Priority int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// GenerationRequest is a provider-agnostic prompt request.
// Sampling fields are overrides: nil means "use the adapter's configured
// default".
type GenerationRequest struct {
	// Prompt is the user prompt text. An empty prompt is passed through;
	// the backend may reject it, producing a soft error response.
	Prompt string `json:"prompt"`

	// System is optional system/context text.
	System string `json:"system,omitempty"`

	// Temperature overrides the configured sampling temperature.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens overrides the configured output token cap.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// TopP overrides nucleus sampling.
	TopP *float64 `json:"top_p,omitempty"`

	// RequestID correlates log lines and traces. Assigned by the manager
	// when empty.
	RequestID string `json:"-"`
}

// GenerationResponse is the canonical result of a generation attempt.
//
// Exactly one of Content (non-empty) or Error is the success signal:
// a non-empty Error marks failure regardless of Content. Adapter and
// manager failures are always expressed this way, never as a Go error
// or panic, so the fallback chain can keep going.
type GenerationResponse struct {
	// Content is the generated text. Empty on failure.
	Content string `json:"content"`

	// Provider is the identity that produced (or was attributed) this response.
	Provider ID `json:"provider"`

	// Model is the model that served the request.
	Model string `json:"model"`

	// OutputTokens is the number of output tokens consumed. Exact when the
	// backend reports usage, otherwise approximated from word count.
	OutputTokens int `json:"output_tokens"`

	// EstimatedCost is OutputTokens times the adapter's cost per token.
	EstimatedCost float64 `json:"estimated_cost"`

	// Latency is the wall-clock duration of the attempt, in nanoseconds
	// when serialized.
	Latency time.Duration `json:"latency"`

	// FromCache reports whether the response was served from the adapter's
	// response cache without touching the rate limiter or the network.
	FromCache bool `json:"from_cache"`

	// Error is the soft failure reason. Empty means success.
	Error string `json:"error,omitempty"`
}

// OK reports whether the response represents a successful generation.
func (r *GenerationResponse) OK() bool {
	return r.Error == ""
}

// Stats is a read-only snapshot of an adapter's internal counters.
type Stats struct {
	// Requests counts real (non-cached) generation attempts.
	Requests int64 `json:"requests"`

	// CacheHits counts responses served from the cache.
	CacheHits int64 `json:"cache_hits"`

	// RateLimited counts attempts rejected by the rate window.
	RateLimited int64 `json:"rate_limited"`

	// CacheSize is the current number of cached responses.
	CacheSize int `json:"cache_size"`
}

// ErrAllProvidersFailed is the error text of the synthetic response the
// manager produces when no provider could serve a request.
const ErrAllProvidersFailed = "All providers failed or unavailable"

// ErrRateLimitExceeded is the soft error text produced when an adapter's
// rate window is exhausted.
const ErrRateLimitExceeded = "Rate limit exceeded"
