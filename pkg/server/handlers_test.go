package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"skillforge-hq/anvil/pkg/config"
	"skillforge-hq/anvil/pkg/manager"
	"skillforge-hq/anvil/pkg/providers"
	"skillforge-hq/anvil/pkg/registry"
	"skillforge-hq/anvil/pkg/telemetry/metrics"
)

// newTestServer builds a Server over a single healthy ollama backend
// served by httptest.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			json.NewEncoder(w).Encode(map[string]any{
				"response":   "generated text",
				"done":       true,
				"eval_count": 2,
			})
		}
	}))
	t.Cleanup(backend.Close)

	reg := registry.Build([]providers.Config{{
		Identity:           providers.IDOllama,
		Model:              "test-model",
		BaseURL:            backend.URL,
		MaxTokens:          128,
		Temperature:        0.7,
		RateLimitPerMinute: 1000,
		Enabled:            true,
		Priority:           1,
	}})

	promRegistry := prometheus.NewRegistry()
	mgr := manager.New(reg, manager.WithMetrics(metrics.NewProviderMetrics(promRegistry)))

	cfg := &config.ServerConfig{ListenAddress: "127.0.0.1:0"}
	return NewServer(cfg, mgr, promRegistry), backend
}

func TestHandleGenerate(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/v1/generate", strings.NewReader(`{"prompt":"hello"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Unexpected content type %q", ct)
	}

	var resp providers.GenerationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.OK() || resp.Content != "generated text" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.Provider != providers.IDOllama {
		t.Errorf("Expected ollama attribution, got %s", resp.Provider)
	}
}

func TestHandleGenerate_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/v1/generate", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerate_TotalFailureIsStill200(t *testing.T) {
	s, backend := newTestServer(t)

	// Kill the backend: generation fails, but the protocol never uses
	// HTTP errors for provider failures
	backend.Close()

	req := httptest.NewRequest("POST", "/v1/generate", strings.NewReader(`{"prompt":"hello"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp providers.GenerationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.OK() {
		t.Fatal("Expected a soft failure response")
	}
	if resp.Error != providers.ErrAllProvidersFailed {
		t.Errorf("Expected %q, got %q", providers.ErrAllProvidersFailed, resp.Error)
	}
}

func TestHandleEnsemble(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"prompt":"hello","providers":["ollama","gemini"]}`
	req := httptest.NewRequest("POST", "/v1/ensemble", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Responses []providers.GenerationResponse `json:"responses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// gemini is not active, so only ollama answers
	if len(envelope.Responses) != 1 {
		t.Fatalf("Expected 1 response, got %d", len(envelope.Responses))
	}
	if envelope.Responses[0].Provider != providers.IDOllama {
		t.Errorf("Unexpected provider %s", envelope.Responses[0].Provider)
	}
}

func TestHandleProviders(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/v1/providers", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp providersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Active) != 1 || resp.Active[0] != providers.IDOllama {
		t.Errorf("Unexpected active list: %v", resp.Active)
	}
}

func TestHandleProviderStats(t *testing.T) {
	s, _ := newTestServer(t)

	// Generate once so the counters move
	gen := httptest.NewRequest("POST", "/v1/generate", strings.NewReader(`{"prompt":"hello"}`))
	s.Handler().ServeHTTP(httptest.NewRecorder(), gen)

	req := httptest.NewRequest("GET", "/v1/providers/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var stats map[providers.ID]manager.ProviderStatistics
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	s1, ok := stats[providers.IDOllama]
	if !ok {
		t.Fatal("Expected ollama statistics")
	}
	if s1.Requests != 1 || !s1.Available {
		t.Errorf("Unexpected statistics: %+v", s1)
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	s.promRegistry = nil

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a metrics registry, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}

	// An incoming ID is honored and echoed
	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "client-chosen-id")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-chosen-id" {
		t.Errorf("Expected client request ID to be echoed, got %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/v1/generate", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
