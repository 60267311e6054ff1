package providers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// responseCache memoizes prompt+parameters to a previously produced
// response. It is private to one adapter instance, unbounded, and lives
// for the process lifetime; there is no TTL, eviction or persistence.
// A hit short-circuits rate limiting and network I/O entirely.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]GenerationResponse
}

func newResponseCache() *responseCache {
	return &responseCache{
		entries: make(map[string]GenerationResponse),
	}
}

// get returns a copy of the cached response for key, marked as served
// from cache.
func (c *responseCache) get(key string) (*GenerationResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	entry.FromCache = true
	return &entry, true
}

// put stores a response under key. Only successful responses are cached;
// callers must not store soft errors.
func (c *responseCache) put(key string, resp *GenerationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = *resp
}

// size returns the current number of cached entries.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// cacheKey computes a stable content-addressed key over the prompt, the
// sampling overrides actually applied, and the adapter's own config
// snapshot, so that identical text with a different temperature, model
// or provider never collides.
func cacheKey(cfg Config, req *GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s|%s|", cfg.Identity, cfg.Model)
	fmt.Fprintf(&b, "%g|%d|", effectiveTemperature(cfg, req), effectiveMaxTokens(cfg, req))
	if req.TopP != nil {
		fmt.Fprintf(&b, "%g|", *req.TopP)
	} else {
		b.WriteString("-|")
	}
	b.WriteString(req.System)
	b.WriteString("\x00")
	b.WriteString(req.Prompt)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// effectiveTemperature resolves the sampling temperature for a request,
// preferring the per-request override over the config default.
func effectiveTemperature(cfg Config, req *GenerationRequest) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return cfg.Temperature
}

// effectiveMaxTokens resolves the output token cap for a request.
func effectiveMaxTokens(cfg Config, req *GenerationRequest) int {
	if req.MaxTokens != nil {
		return *req.MaxTokens
	}
	return cfg.MaxTokens
}
