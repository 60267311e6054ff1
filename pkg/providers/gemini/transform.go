package gemini

import (
	"errors"
	"strings"

	"skillforge-hq/anvil/pkg/providers"
)

var errNoCandidates = errors.New("no candidates in response")

// Gemini API request/response types

// generateContentRequest is a Gemini generateContent request.
type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// content is a role-tagged list of parts.
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part is a single text fragment.
type part struct {
	Text string `json:"text"`
}

// generationConfig carries sampling parameters.
type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

// generateContentResponse is a Gemini generateContent response.
type generateContentResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

// candidate is one generated alternative.
type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// usageMetadata is Gemini token accounting.
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// buildRequest transforms a provider-agnostic request to Gemini format.
func (a *Adapter) buildRequest(req *providers.GenerationRequest) *generateContentRequest {
	geminiReq := &generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     a.EffectiveTemperature(req),
			MaxOutputTokens: a.EffectiveMaxTokens(req),
			TopP:            req.TopP,
		},
	}

	if req.System != "" {
		geminiReq.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	return geminiReq
}

// transformResponse normalizes a Gemini response, concatenating the first
// candidate's parts. CandidatesTokenCount is an exact count when present.
func transformResponse(resp *generateContentResponse, id providers.ID) (*providers.Invocation, error) {
	if len(resp.Candidates) == 0 {
		return nil, &providers.ParseError{Provider: id, Cause: errNoCandidates}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}

	inv := &providers.Invocation{Content: b.String()}
	if resp.UsageMetadata != nil && resp.UsageMetadata.CandidatesTokenCount > 0 {
		inv.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
		inv.Exact = true
	}

	return inv, nil
}
