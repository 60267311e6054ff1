package openai

import (
	"errors"

	"skillforge-hq/anvil/pkg/providers"
)

var errNoChoices = errors.New("no choices in response")

// OpenAI API request/response types

// chatRequest is an OpenAI chat completions request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	N           int           `json:"n,omitempty"`
}

// chatMessage is a message in OpenAI chat format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is an OpenAI chat completions response.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// chatChoice is a completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage is OpenAI token accounting.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// buildRequest transforms a provider-agnostic request to OpenAI format.
func (a *Adapter) buildRequest(req *providers.GenerationRequest) *chatRequest {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	return &chatRequest{
		Model:       a.Config().Model,
		Messages:    messages,
		Temperature: a.EffectiveTemperature(req),
		MaxTokens:   a.EffectiveMaxTokens(req),
		TopP:        req.TopP,
		N:           1,
	}
}

// transformResponse normalizes an OpenAI response. CompletionTokens is an
// exact count reported by the API.
func transformResponse(resp *chatResponse, id providers.ID) (*providers.Invocation, error) {
	if len(resp.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: id,
			Cause:    errNoChoices,
		}
	}

	return &providers.Invocation{
		Content:      resp.Choices[0].Message.Content,
		OutputTokens: resp.Usage.CompletionTokens,
		Exact:        resp.Usage.CompletionTokens > 0,
	}, nil
}
