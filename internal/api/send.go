// ABOUTME: HTTP handlers for the text and voice turn endpoints
// ABOUTME: Maps turn failures onto 404/400/502 per the error contract

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/voice"
)

// maxVoiceFormMemory bounds how much of a multipart upload is held in
// memory; file parts beyond this spill to disk.
const maxVoiceFormMemory = 32 << 20

// SendMessageRequest is the JSON request body for POST /api/sessions/send_message.
// Content is a pointer so an explicitly empty message is distinguishable
// from a missing field; the empty string is a legal turn.
type SendMessageRequest struct {
	SessionID int64   `json:"session_id"`
	Content   *string `json:"content"`
}

// SendMessageResponse is the JSON response for POST /api/sessions/send_message.
type SendMessageResponse struct {
	Status        string `json:"status"`
	UserMessage   string `json:"user_message"`
	AgentResponse string `json:"agent_response"`
}

// handleSendMessage handles POST /api/sessions/send_message.
// It runs one full text turn through the chat orchestrator.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.SessionID == 0 {
		h.sendJSONError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Content == nil {
		h.sendJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, err := h.chat.GenerateResponse(r.Context(), req.SessionID, *req.Content)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "chat session not found")
		return
	}
	if errors.Is(err, chat.ErrUpstream) {
		// The user message is already persisted; only the reply is missing.
		h.logger.Error("completion failed", "error", err, "session_id", req.SessionID)
		h.sendJSONError(w, http.StatusBadGateway, "language model request failed")
		return
	}
	if err != nil {
		h.logger.Error("failed to process message", "error", err, "session_id", req.SessionID)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, SendMessageResponse{
		Status:        "success",
		UserMessage:   *req.Content,
		AgentResponse: reply,
	})
}

// handleSendVoiceMessage handles POST /api/sessions/send_voice_message.
// It accepts a multipart form with session_id and audio_file fields and
// responds with the synthesized reply as an MP3 attachment.
func (h *Handler) handleSendVoiceMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxVoiceFormMemory); err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	sessionID, err := strconv.ParseInt(r.FormValue("session_id"), 10, 64)
	if err != nil || sessionID == 0 {
		h.sendJSONError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	audio, _, err := r.FormFile("audio_file")
	if err != nil {
		h.sendJSONError(w, http.StatusBadRequest, "audio_file is required")
		return
	}
	defer audio.Close()

	mp3, err := h.voice.ProcessVoiceMessage(r.Context(), sessionID, audio)
	if errors.Is(err, store.ErrNotFound) {
		h.sendJSONError(w, http.StatusNotFound, "chat session not found")
		return
	}
	if errors.Is(err, chat.ErrUpstream) || errors.Is(err, voice.ErrUpstream) {
		h.logger.Error("voice turn failed upstream", "error", err, "session_id", sessionID)
		h.sendJSONError(w, http.StatusBadGateway, "speech or language model request failed")
		return
	}
	if err != nil {
		h.logger.Error("failed to process voice message", "error", err, "session_id", sessionID)
		h.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="agent_response.mp3"`)
	if _, err := w.Write(mp3); err != nil {
		h.logger.Error("failed to write audio response", "error", err)
	}
}
