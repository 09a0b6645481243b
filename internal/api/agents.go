// ABOUTME: HTTP handlers for agent CRUD
// ABOUTME: Agents are named personas defined by their system prompt

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parleyhq/parley/internal/store"
)

// CreateAgentRequest is the JSON request body for POST /api/agents.
type CreateAgentRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// UpdateAgentRequest is the JSON request body for PUT /api/agents/{id}.
// Updates are full replacements; both fields are required.
type UpdateAgentRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// handleCreateAgent handles POST /api/agents.
func (h *Handler) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" {
		h.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Prompt == "" {
		h.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	agent, err := h.store.CreateAgent(r.Context(), req.Name, req.Prompt)
	if err != nil {
		h.logger.Error("failed to create agent", "error", err)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, toAgentResponse(agent))
}

// handleListAgents handles GET /api/agents.
func (h *Handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.store.ListAgents(r.Context())
	if err != nil {
		h.logger.Error("failed to list agents", "error", err)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]AgentResponse, len(agents))
	for i, a := range agents {
		response[i] = toAgentResponse(a)
	}

	h.writeJSON(w, http.StatusOK, response)
}

// handleGetAgent handles GET /api/agents/{id}.
func (h *Handler) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.store.GetAgent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get agent", "error", err, "agent_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, toAgentResponse(agent))
}

// handleUpdateAgent handles PUT /api/agents/{id}.
func (h *Handler) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" {
		h.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Prompt == "" {
		h.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	agent, err := h.store.UpdateAgent(r.Context(), id, req.Name, req.Prompt)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update agent", "error", err, "agent_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, toAgentResponse(agent))
}

// handleDeleteAgent handles DELETE /api/agents/{id}.
// Sessions and messages under the agent are removed by cascade.
func (h *Handler) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	err = h.store.DeleteAgent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete agent", "error", err, "agent_id", id)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
