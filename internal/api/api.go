// ABOUTME: HTTP API handler wiring for agents, sessions, and message turns
// ABOUTME: Registers JSON routes on a ServeMux and holds the shared helpers

package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/parleyhq/parley/internal/store"
)

// ChatService generates the agent reply for one text turn.
type ChatService interface {
	GenerateResponse(ctx context.Context, sessionID int64, userText string) (string, error)
}

// VoiceService runs the transcribe, chat, synthesize pipeline for one voice turn.
type VoiceService interface {
	ProcessVoiceMessage(ctx context.Context, sessionID int64, audio io.Reader) ([]byte, error)
}

// Handler serves the JSON API.
type Handler struct {
	store  store.Store
	chat   ChatService
	voice  VoiceService
	logger *slog.Logger
}

// New creates an API handler. If logger is nil, a default logger is used.
func New(st store.Store, chat ChatService, voice VoiceService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		store:  st,
		chat:   chat,
		voice:  voice,
		logger: logger.With("component", "api"),
	}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/agents", h.handleCreateAgent)
	mux.HandleFunc("GET /api/agents", h.handleListAgents)
	mux.HandleFunc("GET /api/agents/{id}", h.handleGetAgent)
	mux.HandleFunc("PUT /api/agents/{id}", h.handleUpdateAgent)
	mux.HandleFunc("DELETE /api/agents/{id}", h.handleDeleteAgent)

	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.handleListMessages)

	mux.HandleFunc("POST /api/sessions/send_message", h.handleSendMessage)
	mux.HandleFunc("POST /api/sessions/send_voice_message", h.handleSendVoiceMessage)
}

// AgentResponse is the JSON shape for an agent.
type AgentResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Prompt    string `json:"prompt"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SessionResponse is the JSON shape for a chat session.
type SessionResponse struct {
	ID        int64  `json:"id"`
	AgentID   int64  `json:"agent_id"`
	CreatedAt string `json:"created_at"`
}

// MessageResponse is the JSON shape for a message.
type MessageResponse struct {
	ID        int64  `json:"id"`
	SessionID int64  `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toAgentResponse(a *store.Agent) AgentResponse {
	return AgentResponse{
		ID:        a.ID,
		Name:      a.Name,
		Prompt:    a.Prompt,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

func toSessionResponse(s *store.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		AgentID:   s.AgentID,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

func toMessageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// pathID parses the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (h *Handler) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
