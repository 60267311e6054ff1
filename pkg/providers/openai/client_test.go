package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillforge-hq/anvil/pkg/providers"
)

func testConfig(baseURL string) providers.Config {
	return providers.Config{
		Identity:           providers.IDOpenAI,
		Model:              "gpt-4o-mini",
		APIKey:             "sk-test",
		BaseURL:            baseURL,
		MaxTokens:          1024,
		Temperature:        0.7,
		RateLimitPerMinute: 60,
		Enabled:            true,
	}
}

func TestNew_MissingModel(t *testing.T) {
	if _, err := New(providers.Config{Identity: providers.IDOpenAI}); err == nil {
		t.Error("Expected error for missing model")
	}
}

func TestNew_MissingCredentialIsNotAnError(t *testing.T) {
	a, err := New(providers.Config{Identity: providers.IDOpenAI, Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Without a credential the adapter exists but is never available
	if a.IsAvailable(context.Background()) {
		t.Error("Expected adapter without credential to be unavailable")
	}
}

func TestInvoke_Success(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o-mini",
			Choices: []chatChoice{
				{Message: chatMessage{Role: "assistant", Content: "water vapor condenses"}, FinishReason: "stop"},
			},
			Usage: chatUsage{PromptTokens: 8, CompletionTokens: 3, TotalTokens: 11},
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
	if inv.Content != "water vapor condenses" {
		t.Errorf("Unexpected content %q", inv.Content)
	}
	if inv.OutputTokens != 3 || !inv.Exact {
		t.Errorf("Expected exact 3 tokens, got %d exact=%t", inv.OutputTokens, inv.Exact)
	}

	// System prompt becomes a system message ahead of the user turn
	if len(captured.Messages) != 2 ||
		captured.Messages[0].Role != "system" || captured.Messages[0].Content != "be brief" ||
		captured.Messages[1].Role != "user" || captured.Messages[1].Content != "what is a cloud" {
		t.Errorf("Messages not transformed correctly: %+v", captured.Messages)
	}
}

func TestInvoke_NoSystemPrompt(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}},
		})
	}))
	defer server.Close()

	a, _ := New(testConfig(server.URL))
	if _, err := a.Invoke(context.Background(), &providers.GenerationRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("Expected a single user message, got %+v", captured.Messages)
	}
}

func TestInvoke_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	a, _ := New(testConfig(server.URL))
	_, err := a.Invoke(context.Background(), &providers.GenerationRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected auth error")
	}
	var authErr *providers.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("Expected AuthError, got %T: %v", err, err)
	}
}

func TestTransformResponse_EmptyChoices(t *testing.T) {
	if _, err := transformResponse(&chatResponse{}, providers.IDOpenAI); err == nil {
		t.Error("Expected error for empty choices")
	}
}
