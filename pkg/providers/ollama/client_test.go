package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillforge-hq/anvil/pkg/providers"
)

func testConfig(baseURL string) providers.Config {
	return providers.Config{
		Identity:           providers.IDOllama,
		Model:              "llama3.1",
		BaseURL:            baseURL,
		MaxTokens:          1024,
		Temperature:        0.7,
		RateLimitPerMinute: 60,
		Enabled:            true,
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(providers.Config{Identity: providers.IDOllama}); err == nil {
		t.Error("Expected error for missing model")
	}

	a, err := New(providers.Config{Identity: providers.IDOllama, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.Config().BaseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", a.Config().BaseURL)
	}
}

func TestInvoke_Success(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{
			Model:     "llama3.1",
			Response:  "a cloud is condensed water vapor",
			Done:      true,
			EvalCount: 7,
		})
	}))
	defer server.Close()

	a, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	inv, err := a.Invoke(context.Background(), &providers.GenerationRequest{
		Prompt: "what is a cloud",
		System: "be brief",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if inv.Content != "a cloud is condensed water vapor" {
		t.Errorf("Unexpected content %q", inv.Content)
	}
	if inv.OutputTokens != 7 || !inv.Exact {
		t.Errorf("Expected exact 7 tokens, got %d exact=%t", inv.OutputTokens, inv.Exact)
	}

	// Request transformation
	if captured.Model != "llama3.1" || captured.Prompt != "what is a cloud" || captured.System != "be brief" {
		t.Errorf("Request not transformed correctly: %+v", captured)
	}
	if captured.Stream {
		t.Error("Streaming must be disabled")
	}
	if captured.Options.Temperature != 0.7 || captured.Options.NumPredict != 1024 {
		t.Errorf("Sampling defaults not applied: %+v", captured.Options)
	}
}

func TestInvoke_MissingEvalCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "text without usage", Done: true})
	}))
	defer server.Close()

	a, _ := New(testConfig(server.URL))
	inv, err := a.Invoke(context.Background(), &providers.GenerationRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if inv.Exact {
		t.Error("Expected Exact=false when eval_count is absent")
	}
}

func TestInvoke_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	a, _ := New(testConfig(server.URL))
	if _, err := a.Invoke(context.Background(), &providers.GenerationRequest{Prompt: "p"}); err == nil {
		t.Error("Expected error on non-2xx response")
	}
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Unexpected probe path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	a, _ := New(testConfig(server.URL))
	if err := a.Probe(context.Background()); err != nil {
		t.Errorf("Probe failed: %v", err)
	}

	server.Close()
	if err := a.Probe(context.Background()); err == nil {
		t.Error("Expected probe failure against closed server")
	}
}
