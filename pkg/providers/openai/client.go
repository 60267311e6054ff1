// Package openai implements the OpenAI chat completions adapter.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	"skillforge-hq/anvil/pkg/providers"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com"

// Adapter is the OpenAI provider adapter.
type Adapter struct {
	*providers.BaseAdapter
}

// New creates a new OpenAI adapter instance. A missing API key is not a
// construction error: the adapter is built but reports unavailable, so
// the registry can still hold it behind other providers.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Model == "" {
		return nil, &providers.ConfigError{
			Provider: providers.IDOpenAI,
			Field:    "model",
			Message:  "model is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	a := &Adapter{}
	a.BaseAdapter = providers.NewBaseAdapter(cfg, a, true)

	slog.Info("openai adapter initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
		"has_credential", cfg.APIKey != "",
	)

	return a, nil
}

// Invoke performs a chat completions call.
func (a *Adapter) Invoke(ctx context.Context, req *providers.GenerationRequest) (*providers.Invocation, error) {
	cfg := a.Config()
	url := fmt.Sprintf("%s/v1/chat/completions", cfg.BaseURL)

	var openaiResp chatResponse
	if err := a.DoJSON(ctx, "POST", url, a.buildRequest(req), &openaiResp, a.headers()); err != nil {
		return nil, err
	}

	return transformResponse(&openaiResp, cfg.Identity)
}

// Probe lists models, the cheapest authenticated call OpenAI offers.
func (a *Adapter) Probe(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/models", a.Config().BaseURL)
	return a.DoJSON(ctx, "GET", url, nil, nil, a.headers())
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.Config().APIKey,
	}
}
