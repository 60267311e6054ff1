package providers

import "testing"

func TestResponseCache_GetPut(t *testing.T) {
	c := newResponseCache()

	if _, ok := c.get("missing"); ok {
		t.Error("Expected miss on empty cache")
	}

	c.put("k", &GenerationResponse{
		Content:  "hello",
		Provider: IDOllama,
	})

	entry, ok := c.get("k")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if entry.Content != "hello" {
		t.Errorf("Expected cached content, got %q", entry.Content)
	}

	// Hits are marked, the stored entry is not mutated
	if !entry.FromCache {
		t.Error("Expected hit to be marked FromCache")
	}
	entry.Content = "mutated"
	again, _ := c.get("k")
	if again.Content != "hello" {
		t.Error("Expected cache entry to be unaffected by caller mutation")
	}

	if c.size() != 1 {
		t.Errorf("Expected size 1, got %d", c.size())
	}
}

func TestCacheKey_Discriminators(t *testing.T) {
	base := Config{Identity: IDOllama, Model: "llama3.1", Temperature: 0.7, MaxTokens: 1024}
	req := func() *GenerationRequest {
		return &GenerationRequest{Prompt: "describe a cloud"}
	}

	baseKey := cacheKey(base, req())

	tests := []struct {
		name string
		cfg  Config
		req  *GenerationRequest
	}{
		{"different provider", Config{Identity: IDOpenAI, Model: "llama3.1", Temperature: 0.7, MaxTokens: 1024}, req()},
		{"different model", Config{Identity: IDOllama, Model: "llama3.2", Temperature: 0.7, MaxTokens: 1024}, req()},
		{"different prompt", base, &GenerationRequest{Prompt: "describe a storm"}},
		{"system prompt added", base, &GenerationRequest{Prompt: "describe a cloud", System: "be terse"}},
		{"temperature override", base, &GenerationRequest{Prompt: "describe a cloud", Temperature: ptrFloat(0.2)}},
		{"max tokens override", base, &GenerationRequest{Prompt: "describe a cloud", MaxTokens: ptrInt(16)}},
		{"top_p set", base, &GenerationRequest{Prompt: "describe a cloud", TopP: ptrFloat(0.9)}},
	}
	for _, tt := range tests {
		if got := cacheKey(tt.cfg, tt.req); got == baseKey {
			t.Errorf("%s: expected a distinct cache key", tt.name)
		}
	}
}

func TestCacheKey_OverrideMatchingDefaultCollides(t *testing.T) {
	cfg := Config{Identity: IDOllama, Model: "llama3.1", Temperature: 0.7, MaxTokens: 1024}

	// An explicit override equal to the config default resolves to the
	// same effective parameters, so the keys intentionally collide.
	a := cacheKey(cfg, &GenerationRequest{Prompt: "p"})
	b := cacheKey(cfg, &GenerationRequest{Prompt: "p", Temperature: ptrFloat(0.7)})
	if a != b {
		t.Error("Expected override equal to default to produce the same key")
	}
}

func TestCacheKey_SystemPromptBoundary(t *testing.T) {
	cfg := Config{Identity: IDOllama, Model: "llama3.1"}

	// system="ab", prompt="c" must not collide with system="a", prompt="bc"
	a := cacheKey(cfg, &GenerationRequest{System: "ab", Prompt: "c"})
	b := cacheKey(cfg, &GenerationRequest{System: "a", Prompt: "bc"})
	if a == b {
		t.Error("Expected system/prompt boundary to be preserved in the key")
	}
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }
