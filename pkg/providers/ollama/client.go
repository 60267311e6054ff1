// Package ollama implements the local-inference adapter. It talks to an
// Ollama server's generate API, requires no credential, and is typically
// configured with zero cost per token.
package ollama

import (
	"context"
	"fmt"
	"log/slog"

	"skillforge-hq/anvil/pkg/providers"
)

// DefaultBaseURL is the local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Adapter is the Ollama provider adapter.
type Adapter struct {
	*providers.BaseAdapter
}

// New creates a new Ollama adapter instance.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Model == "" {
		return nil, &providers.ConfigError{
			Provider: providers.IDOllama,
			Field:    "model",
			Message:  "model is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	a := &Adapter{}
	a.BaseAdapter = providers.NewBaseAdapter(cfg, a, false)

	slog.Info("ollama adapter initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
	)

	return a, nil
}

// Invoke performs a non-streaming generate call against the local server.
func (a *Adapter) Invoke(ctx context.Context, req *providers.GenerationRequest) (*providers.Invocation, error) {
	cfg := a.Config()
	url := fmt.Sprintf("%s/api/generate", cfg.BaseURL)

	var ollamaResp generateResponse
	if err := a.DoJSON(ctx, "POST", url, a.buildRequest(req), &ollamaResp, nil); err != nil {
		return nil, err
	}

	return &providers.Invocation{
		Content:      ollamaResp.Response,
		OutputTokens: ollamaResp.EvalCount,
		Exact:        ollamaResp.EvalCount > 0,
	}, nil
}

// Probe lists the local models, which is cheap and does not load a model.
func (a *Adapter) Probe(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/tags", a.Config().BaseURL)
	return a.DoJSON(ctx, "GET", url, nil, nil, nil)
}
