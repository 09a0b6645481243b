// ABOUTME: Tests for the text and voice turn endpoints
// ABOUTME: Covers validation, error status mapping, and the attachment response

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/voice"
)

func strPtr(s string) *string { return &s }

func TestSendMessage(t *testing.T) {
	chatSvc := &mockChatService{reply: "hi there"}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
		SessionID: 7,
		Content:   strPtr("hello"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got SendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "hello", got.UserMessage)
	assert.Equal(t, "hi there", got.AgentResponse)

	assert.Equal(t, int64(7), chatSvc.gotSessionID)
	assert.Equal(t, "hello", chatSvc.gotText)
}

func TestSendMessage_EmptyContentIsValid(t *testing.T) {
	chatSvc := &mockChatService{reply: "still a reply"}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	// Present-but-empty content is a legal turn.
	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
		SessionID: 7,
		Content:   strPtr(""),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got SendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "", got.UserMessage)
	assert.Equal(t, "still a reply", got.AgentResponse)

	assert.Equal(t, 1, chatSvc.calls)
	assert.Equal(t, "", chatSvc.gotText)
}

func TestSendMessage_MissingContent(t *testing.T) {
	chatSvc := &mockChatService{reply: "never"}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", map[string]any{
		"session_id": 7,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", errorMessage(t, rec))
	assert.Zero(t, chatSvc.calls)
}

func TestSendMessage_MissingSessionID(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", map[string]any{
		"content": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "session_id is required", errorMessage(t, rec))
}

func TestSendMessage_SessionNotFound(t *testing.T) {
	chatSvc := &mockChatService{err: fmt.Errorf("loading session: %w", store.ErrNotFound)}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
		SessionID: 9999,
		Content:   strPtr("hello"),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "chat session not found", errorMessage(t, rec))
}

func TestSendMessage_UpstreamFailure(t *testing.T) {
	chatSvc := &mockChatService{err: fmt.Errorf("generating response: %w: boom", chat.ErrUpstream)}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
		SessionID: 7,
		Content:   strPtr("hello"),
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "language model request failed", errorMessage(t, rec))
}

func TestSendMessage_InternalError(t *testing.T) {
	chatSvc := &mockChatService{err: errors.New("database is locked")}
	mux, _ := newTestAPI(t, chatSvc, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
		SessionID: 7,
		Content:   strPtr("hello"),
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// fixedLLM lets the end-to-end test run the real chat orchestrator.
type fixedLLM struct {
	reply string
}

func (f *fixedLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return f.reply, nil
}

func TestSendMessage_EndToEndPersistsTurns(t *testing.T) {
	// Real store and real chat service; only the model is canned.
	dbPath := t.TempDir() + "/test.db"
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	chatSvc := chat.New(st, &fixedLLM{reply: "echo"}, nil, nil)
	mux := http.NewServeMux()
	New(st, chatSvc, &mockVoiceService{}, nil).Register(mux)

	ctx := context.Background()
	agent, err := st.CreateAgent(ctx, "echoer", "You echo.")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, agent.ID)
	require.NoError(t, err)

	for _, text := range []string{"one", "two"} {
		rec := doJSON(t, mux, http.MethodPost, "/api/sessions/send_message", SendMessageRequest{
			SessionID: session.ID,
			Content:   strPtr(text),
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/sessions/%d/messages", session.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var log []MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	require.Len(t, log, 4)
	assert.Equal(t, []string{"user", "agent", "user", "agent"},
		[]string{log[0].Role, log[1].Role, log[2].Role, log[3].Role})
	assert.Equal(t, "one", log[0].Content)
	assert.Equal(t, "two", log[2].Content)
}

// voiceRequest builds a multipart voice turn request. Empty sessionID or nil
// audio omits that part.
func voiceRequest(t *testing.T, sessionID string, audio []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sessionID != "" {
		require.NoError(t, mw.WriteField("session_id", sessionID))
	}
	if audio != nil {
		part, err := mw.CreateFormFile("audio_file", "clip.wav")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/send_voice_message", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSendVoiceMessage(t *testing.T) {
	voiceSvc := &mockVoiceService{audio: []byte("mp3-bytes")}
	mux, _ := newTestAPI(t, &mockChatService{}, voiceSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, voiceRequest(t, "7", []byte("wav-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="agent_response.mp3"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte("mp3-bytes"), rec.Body.Bytes())

	assert.Equal(t, int64(7), voiceSvc.gotSessionID)
	assert.Equal(t, []byte("wav-bytes"), voiceSvc.gotAudio)
}

func TestSendVoiceMessage_MissingSessionID(t *testing.T) {
	voiceSvc := &mockVoiceService{audio: []byte("mp3")}
	mux, _ := newTestAPI(t, &mockChatService{}, voiceSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, voiceRequest(t, "", []byte("wav")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "session_id is required", errorMessage(t, rec))
	assert.Zero(t, voiceSvc.calls)
}

func TestSendVoiceMessage_MissingAudio(t *testing.T) {
	voiceSvc := &mockVoiceService{audio: []byte("mp3")}
	mux, _ := newTestAPI(t, &mockChatService{}, voiceSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, voiceRequest(t, "7", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "audio_file is required", errorMessage(t, rec))
	assert.Zero(t, voiceSvc.calls)
}

func TestSendVoiceMessage_SessionNotFound(t *testing.T) {
	voiceSvc := &mockVoiceService{err: fmt.Errorf("loading session: %w", store.ErrNotFound)}
	mux, _ := newTestAPI(t, &mockChatService{}, voiceSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, voiceRequest(t, "9999", []byte("wav")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "chat session not found", errorMessage(t, rec))
}

func TestSendVoiceMessage_UpstreamFailure(t *testing.T) {
	voiceSvc := &mockVoiceService{err: fmt.Errorf("transcribing audio: %w: garbled", voice.ErrUpstream)}
	mux, _ := newTestAPI(t, &mockChatService{}, voiceSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, voiceRequest(t, "7", []byte("wav")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "speech or language model request failed", errorMessage(t, rec))
}
