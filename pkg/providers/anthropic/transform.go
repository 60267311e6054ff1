package anthropic

import (
	"errors"
	"strings"

	"skillforge-hq/anvil/pkg/providers"
)

var errNoContent = errors.New("no content blocks in response")

// Anthropic API request/response types

// messagesRequest is an Anthropic messages API request. MaxTokens is
// mandatory in this API.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        *float64  `json:"top_p,omitempty"`
}

// message is a conversation turn in Anthropic format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is an Anthropic messages API response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

// contentBlock is one block of response content; only text blocks carry
// generated prose.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// usage is Anthropic token accounting.
type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// buildRequest transforms a provider-agnostic request to Anthropic format.
func (a *Adapter) buildRequest(req *providers.GenerationRequest) *messagesRequest {
	maxTokens := a.EffectiveMaxTokens(req)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &messagesRequest{
		Model:       a.Config().Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		Temperature: a.EffectiveTemperature(req),
		TopP:        req.TopP,
	}
}

// transformResponse normalizes an Anthropic response, concatenating text
// blocks. OutputTokens is an exact count reported by the API.
func transformResponse(resp *messagesResponse, id providers.ID) (*providers.Invocation, error) {
	if len(resp.Content) == 0 {
		return nil, &providers.ParseError{Provider: id, Cause: errNoContent}
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	return &providers.Invocation{
		Content:      b.String(),
		OutputTokens: resp.Usage.OutputTokens,
		Exact:        resp.Usage.OutputTokens > 0,
	}, nil
}
