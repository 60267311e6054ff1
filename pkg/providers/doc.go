// Package providers defines the provider abstraction for the anvil LLM
// manager: the Adapter interface, the shared generation pipeline
// (BaseAdapter), the per-adapter response cache and rate window, and the
// canonical request/response types.
//
// # Soft errors
//
// The central design decision of this package is that backend failures
// are data, not exceptions. Adapter.Generate always returns a well-formed
// GenerationResponse; a failure populates its Error field. The manager's
// fallback chain depends on this: an escaped error from provider N would
// abort the chain before provider N+1 is tried.
//
// # Pipeline
//
// Each call to Generate runs, in order:
//
//  1. Cache lookup: a hit returns immediately with FromCache set and
//     consumes no rate-limit quota.
//  2. Rate-limit check: a 60-second window with lazy reset; a throttled
//     call fails softly with "Rate limit exceeded".
//  3. Backend invocation: the vendor package's Invoke with the adapter's
//     configured timeout. Any error, including a panic, becomes a soft
//     error response.
//  4. Normalization: output token accounting (backend-reported when
//     available, word-count heuristic otherwise), cost estimation, and
//     cache insertion.
//
// Vendor adapters live in the subpackages ollama, openai, anthropic and
// gemini; each embeds BaseAdapter and implements only the Backend
// interface (Invoke + Probe).
package providers
