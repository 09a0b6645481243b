// ABOUTME: HTTP handlers for chat session CRUD and the session message log
// ABOUTME: Sessions bind a conversation to one agent; messages are read-only here

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/parleyhq/parley/internal/store"
)

// CreateSessionRequest is the JSON request body for POST /api/sessions.
type CreateSessionRequest struct {
	AgentID int64 `json:"agent_id"`
}

// handleCreateSession handles POST /api/sessions.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.AgentID == 0 {
		h.sendJSONError(w, http.StatusBadRequest, "agent_id is required")
		return
	}

	session, err := h.store.CreateSession(r.Context(), req.AgentID)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to create session", "error", err, "agent_id", req.AgentID)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// handleListSessions handles GET /api/sessions.
// Supports optional ?agent=N query parameter to filter by agent.
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var agentID int64
	if filter := r.URL.Query().Get("agent"); filter != "" {
		parsed, err := strconv.ParseInt(filter, 10, 64)
		if err != nil {
			h.sendJSONError(w, http.StatusBadRequest, "agent filter must be an integer")
			return
		}
		agentID = parsed
	}

	sessions, err := h.store.ListSessions(r.Context(), agentID)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		response[i] = toSessionResponse(s)
	}

	h.writeJSON(w, http.StatusOK, response)
}

// handleGetSession handles GET /api/sessions/{id}.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.store.GetSession(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "chat session not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get session", "error", err, "session_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// handleDeleteSession handles DELETE /api/sessions/{id}.
// The session's messages are removed by cascade.
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	err = h.store.DeleteSession(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "chat session not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete session", "error", err, "session_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListMessages handles GET /api/sessions/{id}/messages.
// Returns the full message log in conversation order.
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	// Verify the session exists so a missing session reads as 404,
	// not as an empty log.
	if _, err := h.store.GetSession(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendJSONError(w, http.StatusNotFound, "chat session not found")
			return
		}
		h.logger.Error("failed to get session", "error", err, "session_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	messages, err := h.store.ListSessionMessages(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err, "session_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]MessageResponse, len(messages))
	for i, m := range messages {
		response[i] = toMessageResponse(m)
	}

	h.writeJSON(w, http.StatusOK, response)
}
