// Package anthropic implements the Anthropic messages adapter.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"

	"skillforge-hq/anvil/pkg/providers"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// apiVersion is the messages API version header value.
	apiVersion = "2023-06-01"
)

// Adapter is the Anthropic provider adapter.
type Adapter struct {
	*providers.BaseAdapter
}

// New creates a new Anthropic adapter instance. Like the other hosted
// vendors, a missing API key makes the adapter unavailable rather than
// failing construction.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Model == "" {
		return nil, &providers.ConfigError{
			Provider: providers.IDAnthropic,
			Field:    "model",
			Message:  "model is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	a := &Adapter{}
	a.BaseAdapter = providers.NewBaseAdapter(cfg, a, true)

	slog.Info("anthropic adapter initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
		"has_credential", cfg.APIKey != "",
	)

	return a, nil
}

// Invoke performs a messages API call.
func (a *Adapter) Invoke(ctx context.Context, req *providers.GenerationRequest) (*providers.Invocation, error) {
	cfg := a.Config()
	url := fmt.Sprintf("%s/v1/messages", cfg.BaseURL)

	var anthropicResp messagesResponse
	if err := a.DoJSON(ctx, "POST", url, a.buildRequest(req), &anthropicResp, a.headers()); err != nil {
		return nil, err
	}

	return transformResponse(&anthropicResp, cfg.Identity)
}

// Probe lists models with the short probe timeout.
func (a *Adapter) Probe(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/models", a.Config().BaseURL)
	return a.DoJSON(ctx, "GET", url, nil, nil, a.headers())
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.Config().APIKey,
		"anthropic-version": apiVersion,
	}
}
