package ollama

import "skillforge-hq/anvil/pkg/providers"

// Ollama API request/response types

// generateRequest is an Ollama /api/generate request.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options,omitempty"`
}

// generateOptions carries sampling parameters in Ollama's option map form.
type generateOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

// generateResponse is an Ollama /api/generate response. EvalCount is the
// exact number of output tokens evaluated.
type generateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// buildRequest transforms a provider-agnostic request to Ollama format,
// resolving sampling overrides against the adapter's defaults.
func (a *Adapter) buildRequest(req *providers.GenerationRequest) *generateRequest {
	return &generateRequest{
		Model:  a.Config().Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: generateOptions{
			Temperature: a.EffectiveTemperature(req),
			NumPredict:  a.EffectiveMaxTokens(req),
			TopP:        req.TopP,
		},
	}
}
