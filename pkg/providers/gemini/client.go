// Package gemini implements the Google Gemini generateContent adapter.
// Gemini's REST shape (contents/parts, key as query parameter) differs
// substantially from the chat-message vendors, which is exactly what the
// adapter boundary exists to absorb.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"skillforge-hq/anvil/pkg/providers"
)

// DefaultBaseURL is the Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Adapter is the Gemini provider adapter.
type Adapter struct {
	*providers.BaseAdapter
}

// New creates a new Gemini adapter instance.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Model == "" {
		return nil, &providers.ConfigError{
			Provider: providers.IDGemini,
			Field:    "model",
			Message:  "model is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	a := &Adapter{}
	a.BaseAdapter = providers.NewBaseAdapter(cfg, a, true)

	slog.Info("gemini adapter initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
		"has_credential", cfg.APIKey != "",
	)

	return a, nil
}

// Invoke performs a generateContent call.
func (a *Adapter) Invoke(ctx context.Context, req *providers.GenerationRequest) (*providers.Invocation, error) {
	cfg := a.Config()
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		cfg.BaseURL, cfg.Model, url.QueryEscape(cfg.APIKey))

	var geminiResp generateContentResponse
	if err := a.DoJSON(ctx, "POST", endpoint, a.buildRequest(req), &geminiResp, nil); err != nil {
		return nil, err
	}

	return transformResponse(&geminiResp, cfg.Identity)
}

// Probe lists models; the key travels as a query parameter here too.
func (a *Adapter) Probe(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1beta/models?key=%s",
		a.Config().BaseURL, url.QueryEscape(a.Config().APIKey))
	return a.DoJSON(ctx, "GET", endpoint, nil, nil, nil)
}
