package anthropic

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
		Identity:           providers.IDAnthropic,
		Model:              "claude-3-5-haiku-latest",
		APIKey:             "sk-ant-test",
		BaseURL:            baseURL,
		MaxTokens:          1024,
		Temperature:        0.7,
		RateLimitPerMinute: 60,
		Enabled:            true,
	}
}

func TestNew_MissingModel(t *testing.T) {
	if _, err := New(providers.Config{Identity: providers.IDAnthropic}); err == nil {
		t.Error("Expected error for missing model")
	}
}

func TestInvoke_Success(t *testing.T) {
	var captured messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("Unexpected api key header %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != apiVersion {
			t.Errorf("Unexpected version header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(messagesResponse{
			ID: "msg_1",
			Content: []contentBlock{
				{Type: "text", Text: "clouds are "},
				{Type: "text", Text: "condensed vapor"},
			},
			StopReason: "end_turn",
			Usage:      usage{InputTokens: 9, OutputTokens: 4},
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

	// Text blocks are concatenated in order
	if inv.Content != "clouds are condensed vapor" {
		t.Errorf("Unexpected content %q", inv.Content)
	}
	if inv.OutputTokens != 4 || !inv.Exact {
		t.Errorf("Expected exact 4 tokens, got %d exact=%t", inv.OutputTokens, inv.Exact)
	}

	// System travels as a top-level field, not a message
	if captured.System != "be brief" {
		t.Errorf("Expected system field, got %q", captured.System)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("Expected a single user message, got %+v", captured.Messages)
	}
	if captured.MaxTokens != 1024 {
		t.Errorf("Expected max_tokens 1024, got %d", captured.MaxTokens)
	}
}

func TestBuildRequest_MaxTokensFallback(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.MaxTokens = 0
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	// The messages API rejects max_tokens <= 0, so a floor is applied
	req := a.buildRequest(&providers.GenerationRequest{Prompt: "p"})
	if req.MaxTokens != 1024 {
		t.Errorf("Expected fallback max_tokens 1024, got %d", req.MaxTokens)
	}
}

func TestTransformResponse_NonTextBlocksIgnored(t *testing.T) {
	inv, err := transformResponse(&messagesResponse{
		Content: []contentBlock{
			{Type: "tool_use", Text: "should be skipped"},
			{Type: "text", Text: "kept"},
		},
		Usage: usage{OutputTokens: 1},
	}, providers.IDAnthropic)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inv.Content != "kept" {
		t.Errorf("Expected only text blocks, got %q", inv.Content)
	}
}

func TestTransformResponse_EmptyContent(t *testing.T) {
	if _, err := transformResponse(&messagesResponse{}, providers.IDAnthropic); err == nil {
		t.Error("Expected error for empty content")
	}
}
