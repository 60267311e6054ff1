package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// probeTimeout bounds the IsAvailable health probe.
const probeTimeout = 3 * time.Second

// BaseAdapter implements the generation pipeline shared by every backend:
// cache lookup, rate limiting, invocation through the vendor Backend, and
// normalization into a GenerationResponse. Vendor packages embed it and
// supply the Backend that performs the provider-specific HTTP call.
//
// The cache and rate window are private, adapter-owned state guarded
// against concurrent Generate calls on the same adapter.
type BaseAdapter struct {
	cfg     Config
	backend Backend
	client  *http.Client

	cache  *responseCache
	window *rateWindow

	// requiresCredential marks hosted vendors; resolved once at
	// construction, not re-checked per call.
	requiresCredential bool

	requests    atomic.Int64
	cacheHits   atomic.Int64
	rateLimited atomic.Int64
}

// NewBaseAdapter creates the shared pipeline for one backend. The backend
// performs the provider-specific call; requiresCredential should be true
// for hosted vendors so that a missing API key reports unavailable
// instead of erroring.
func NewBaseAdapter(cfg Config, backend Backend, requiresCredential bool) *BaseAdapter {
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 60
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &BaseAdapter{
		cfg:                cfg,
		backend:            backend,
		client:             &http.Client{Transport: transport},
		cache:              newResponseCache(),
		window:             newRateWindow(cfg.RateLimitPerMinute),
		requiresCredential: requiresCredential,
	}
}

// Identity returns the backend kind this adapter talks to.
func (b *BaseAdapter) Identity() ID {
	return b.cfg.Identity
}

// Config returns the adapter's configuration snapshot.
func (b *BaseAdapter) Config() Config {
	return b.cfg
}

// Stats returns a read-only snapshot of the adapter's counters.
func (b *BaseAdapter) Stats() Stats {
	return Stats{
		Requests:    b.requests.Load(),
		CacheHits:   b.cacheHits.Load(),
		RateLimited: b.rateLimited.Load(),
		CacheSize:   b.cache.size(),
	}
}

// Generate runs the shared pipeline. It never returns a Go error and
// never panics; every failure mode becomes a soft error response.
func (b *BaseAdapter) Generate(ctx context.Context, req *GenerationRequest) *GenerationResponse {
	key := cacheKey(b.cfg, req)

	if cached, ok := b.cache.get(key); ok {
		b.cacheHits.Add(1)
		slog.Debug("response served from cache",
			"provider", b.cfg.Identity,
			"request_id", req.RequestID,
		)
		return cached
	}

	b.requests.Add(1)

	if !b.window.allow() {
		b.rateLimited.Add(1)
		slog.Warn("rate limit exceeded",
			"provider", b.cfg.Identity,
			"limit_per_minute", b.cfg.RateLimitPerMinute,
			"request_id", req.RequestID,
		)
		return b.softError(ErrRateLimitExceeded, 0)
	}

	timeout := b.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	inv, err := b.invoke(callCtx, req)
	latency := time.Since(start)

	if err != nil {
		slog.Warn("generation failed",
			"provider", b.cfg.Identity,
			"model", b.cfg.Model,
			"latency", latency,
			"error", err,
			"request_id", req.RequestID,
		)
		return b.softError(err.Error(), latency)
	}

	tokens := inv.OutputTokens
	if !inv.Exact {
		tokens = approxOutputTokens(inv.Content)
	}

	resp := &GenerationResponse{
		Content:       inv.Content,
		Provider:      b.cfg.Identity,
		Model:         b.cfg.Model,
		OutputTokens:  tokens,
		EstimatedCost: float64(tokens) * b.cfg.CostPerToken,
		Latency:       latency,
	}

	b.cache.put(key, resp)

	slog.Debug("generation succeeded",
		"provider", b.cfg.Identity,
		"model", b.cfg.Model,
		"output_tokens", tokens,
		"latency", latency,
		"request_id", req.RequestID,
	)

	return resp
}

// invoke calls the vendor backend, converting a panic into an error so
// the no-throw contract holds even against a defective backend.
func (b *BaseAdapter) invoke(ctx context.Context, req *GenerationRequest) (inv *Invocation, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv = nil
			err = &BackendError{
				Provider: b.cfg.Identity,
				Message:  fmt.Sprintf("backend panicked: %v", r),
			}
		}
	}()

	inv, err = b.backend.Invoke(ctx, req)
	if err == nil && inv == nil {
		err = &BackendError{Provider: b.cfg.Identity, Message: "backend returned no result"}
	}
	return inv, err
}

// IsAvailable probes the backend with a short timeout. A hosted vendor
// without a credential is unavailable, not broken.
func (b *BaseAdapter) IsAvailable(ctx context.Context) bool {
	if b.requiresCredential && b.cfg.APIKey == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := b.backend.Probe(probeCtx); err != nil {
		slog.Debug("availability probe failed",
			"provider", b.cfg.Identity,
			"error", err,
		)
		return false
	}
	return true
}

// softError builds a failure response attributed to this adapter.
func (b *BaseAdapter) softError(message string, latency time.Duration) *GenerationResponse {
	return &GenerationResponse{
		Provider: b.cfg.Identity,
		Model:    b.cfg.Model,
		Latency:  latency,
		Error:    message,
	}
}

// EffectiveTemperature resolves the sampling temperature for a request
// against this adapter's defaults.
func (b *BaseAdapter) EffectiveTemperature(req *GenerationRequest) float64 {
	return effectiveTemperature(b.cfg, req)
}

// EffectiveMaxTokens resolves the output token cap for a request against
// this adapter's defaults.
func (b *BaseAdapter) EffectiveMaxTokens(req *GenerationRequest) int {
	return effectiveMaxTokens(b.cfg, req)
}

// DoJSON performs a JSON request against the backend and decodes the
// response into respBody. Non-2xx statuses are converted into the typed
// errors from errors.go; nothing is retried here, since the manager's
// retry unit is "the next provider".
func (b *BaseAdapter) DoJSON(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyReader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return &TimeoutError{Provider: b.cfg.Identity, Timeout: b.cfg.Timeout}
		}
		return &BackendError{Provider: b.cfg.Identity, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: b.cfg.Identity,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Provider: b.cfg.Identity, Message: string(responseBytes)}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &BackendError{
			Provider:   b.cfg.Identity,
			StatusCode: resp.StatusCode,
			Message:    string(responseBytes),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    b.cfg.Identity,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}
