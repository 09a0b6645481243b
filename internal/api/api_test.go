// ABOUTME: Tests for the agent and session CRUD handlers
// ABOUTME: Drives the registered mux with a real temp SQLite store behind it

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/store"
)

// mockChatService returns a canned reply or error for text turns.
type mockChatService struct {
	reply string
	err   error

	calls        int
	gotSessionID int64
	gotText      string
}

func (m *mockChatService) GenerateResponse(ctx context.Context, sessionID int64, userText string) (string, error) {
	m.calls++
	m.gotSessionID = sessionID
	m.gotText = userText
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// mockVoiceService returns canned MP3 bytes or an error for voice turns.
type mockVoiceService struct {
	audio []byte
	err   error

	calls        int
	gotSessionID int64
	gotAudio     []byte
}

func (m *mockVoiceService) ProcessVoiceMessage(ctx context.Context, sessionID int64, audio io.Reader) ([]byte, error) {
	m.calls++
	m.gotSessionID = sessionID
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	m.gotAudio = data
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

// newTestAPI builds a mux with all routes registered over a fresh store.
func newTestAPI(t *testing.T, chatSvc ChatService, voiceSvc VoiceService) (*http.ServeMux, store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mux := http.NewServeMux()
	New(st, chatSvc, voiceSvc, nil).Register(mux)
	return mux, st
}

// doJSON sends a JSON request through the mux and returns the recorder.
func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["error"]
}

func TestCreateAgent(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/agents", CreateAgentRequest{
		Name:   "historian",
		Prompt: "You are a meticulous historian.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotZero(t, got.ID)
	assert.Equal(t, "historian", got.Name)
	assert.Equal(t, "You are a meticulous historian.", got.Prompt)

	_, err := time.Parse(time.RFC3339, got.CreatedAt)
	assert.NoError(t, err, "created_at should be RFC3339")
	_, err = time.Parse(time.RFC3339, got.UpdatedAt)
	assert.NoError(t, err, "updated_at should be RFC3339")
}

func TestCreateAgent_Validation(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/agents", CreateAgentRequest{Prompt: "p"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", errorMessage(t, rec))

	rec = doJSON(t, mux, http.MethodPost, "/api/agents", CreateAgentRequest{Name: "n"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "prompt is required", errorMessage(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/agents", bytes.NewReader([]byte("not json")))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAgent(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	agent, err := st.CreateAgent(context.Background(), "poet", "You rhyme.")
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/agents/%d", agent.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, agent.ID, got.ID)
	assert.Equal(t, "poet", got.Name)
}

func TestGetAgent_NotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/agents/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "agent not found", errorMessage(t, rec))
}

func TestGetAgent_InvalidID(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/agents/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid agent id", errorMessage(t, rec))
}

func TestListAgents(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var empty []AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Empty(t, empty)
	assert.JSONEq(t, "[]", rec.Body.String(), "empty list should be an array, not null")

	ctx := context.Background()
	first, err := st.CreateAgent(ctx, "first", "p1")
	require.NoError(t, err)
	second, err := st.CreateAgent(ctx, "second", "p2")
	require.NoError(t, err)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestUpdateAgent(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	agent, err := st.CreateAgent(context.Background(), "old name", "old prompt")
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodPut, fmt.Sprintf("/api/agents/%d", agent.ID), UpdateAgentRequest{
		Name:   "new name",
		Prompt: "new prompt",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new name", got.Name)
	assert.Equal(t, "new prompt", got.Prompt)

	stored, err := st.GetAgent(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", stored.Name)
}

func TestUpdateAgent_NotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPut, "/api/agents/9999", UpdateAgentRequest{Name: "n", Prompt: "p"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAgent(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	agent, err := st.CreateAgent(context.Background(), "ephemeral", "p")
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/api/agents/%d", agent.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/agents/%d", agent.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAgent_NotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodDelete, "/api/agents/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSession(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	agent, err := st.CreateAgent(context.Background(), "host", "p")
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions", CreateSessionRequest{AgentID: agent.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotZero(t, got.ID)
	assert.Equal(t, agent.ID, got.AgentID)
}

func TestCreateSession_AgentNotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions", CreateSessionRequest{AgentID: 9999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "agent not found", errorMessage(t, rec))
}

func TestCreateSession_MissingAgentID(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "agent_id is required", errorMessage(t, rec))
}

func TestListSessions_FilterByAgent(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	ctx := context.Background()
	first, err := st.CreateAgent(ctx, "first", "p")
	require.NoError(t, err)
	second, err := st.CreateAgent(ctx, "second", "p")
	require.NoError(t, err)

	firstSession, err := st.CreateSession(ctx, first.ID)
	require.NoError(t, err)
	_, err = st.CreateSession(ctx, second.ID)
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/sessions?agent=%d", first.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, firstSession.ID, filtered[0].ID)
}

func TestListSessions_BadFilter(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions?agent=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "chat session not found", errorMessage(t, rec))
}

func TestDeleteSession(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	ctx := context.Background()
	agent, err := st.CreateAgent(ctx, "host", "p")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, agent.ID)
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/api/sessions/%d", session.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/sessions/%d", session.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMessages(t *testing.T) {
	mux, st := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	ctx := context.Background()
	agent, err := st.CreateAgent(ctx, "host", "p")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, agent.ID)
	require.NoError(t, err)

	_, err = st.CreateMessage(ctx, session.ID, store.RoleUser, "hello")
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, session.ID, store.RoleAgent, "hi!")
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/sessions/%d/messages", session.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "agent", got[1].Role)
	assert.Equal(t, "hi!", got[1].Content)
}

func TestListMessages_SessionNotFound(t *testing.T) {
	mux, _ := newTestAPI(t, &mockChatService{}, &mockVoiceService{})

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions/9999/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "chat session not found", errorMessage(t, rec))
}
