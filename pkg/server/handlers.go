package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"skillforge-hq/anvil/pkg/providers"
)

// generateRequest is the wire form of a single-generation call.
type generateRequest struct {
	Prompt        string   `json:"prompt"`
	System        string   `json:"system,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	MaxTokens     *int     `json:"max_tokens,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	Provider      string   `json:"provider,omitempty"`
	AllowFallback *bool    `json:"allow_fallback,omitempty"`
}

// ensembleRequest is the wire form of an ensemble call.
type ensembleRequest struct {
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Providers   []string `json:"providers"`
}

// providersResponse lists configured and currently-available providers.
type providersResponse struct {
	Active []providers.ID `json:"active"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	allowFallback := req.AllowFallback == nil || *req.AllowFallback

	resp := s.manager.Generate(r.Context(), &providers.GenerationRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		RequestID:   requestIDFrom(r.Context()),
	}, providers.ID(req.Provider), allowFallback)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	var req ensembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	identities := make([]providers.ID, 0, len(req.Providers))
	for _, p := range req.Providers {
		identities = append(identities, providers.ID(p))
	}

	responses := s.manager.GenerateEnsemble(r.Context(), &providers.GenerationRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		RequestID:   requestIDFrom(r.Context()),
	}, identities)

	writeJSON(w, http.StatusOK, map[string]any{"responses": responses})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	active := s.manager.ActiveProviders(r.Context())
	if active == nil {
		active = []providers.ID{}
	}
	writeJSON(w, http.StatusOK, providersResponse{Active: active})
}

func (s *Server) handleProviderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Statistics(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
