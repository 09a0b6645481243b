// ABOUTME: Chat orchestrator that runs the turn-taking protocol for text messages
// ABOUTME: All turns flow through here - the log is the source of truth, not a side effect

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/metrics"
	"github.com/parleyhq/parley/internal/store"
)

// ErrUpstream marks a failure of the external completion service. The
// turn's user message is already committed when this is returned.
var ErrUpstream = errors.New("completion request failed")

// ChatStore defines what the orchestrator needs from storage.
type ChatStore interface {
	GetSessionWithAgent(ctx context.Context, id int64) (*store.Session, *store.Agent, error)
	ListSessionMessages(ctx context.Context, sessionID int64) ([]*store.Message, error)
	CreateMessage(ctx context.Context, sessionID int64, role store.Role, content string) (*store.Message, error)
}

// Service runs one conversational turn at a time against a session.
//
// Key principle: record first, then act. The user's turn is committed
// before the model is consulted, so a model failure never erases what the
// user said. The user write and the agent write are two independent
// commits, not a transaction; a turn that fails between them keeps the
// user's message.
type Service struct {
	store   ChatStore
	llm     llm.Client
	builder *ContextBuilder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a chat service. metrics may be nil.
func New(store ChatStore, client llm.Client, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		llm:     client,
		builder: NewContextBuilder(store),
		logger:  logger.With("component", "chat"),
		metrics: m,
	}
}

// GenerateResponse runs a full text turn: it loads the session and its
// agent, renders the conversation context, records the user's message,
// asks the model for a reply, records that reply, and returns its text.
//
// A missing session returns store.ErrNotFound before anything is written.
// The completion call is made exactly once; on failure the user's message
// stays committed and the error is returned unretried.
//
// Concurrent requests against the same session are not serialized here:
// two in-flight turns may interleave between the history read and the two
// writes. Callers that need strict alternation must serialize externally.
func (s *Service) GenerateResponse(ctx context.Context, sessionID int64, userText string) (string, error) {
	requestID := uuid.New().String()

	// 1. Resolve the session and its agent. A missing session fails here,
	// before any side effect.
	_, agent, err := s.store.GetSessionWithAgent(ctx, sessionID)
	if err != nil {
		s.metrics.RecordChatTurn("not_found")
		return "", fmt.Errorf("loading session: %w", err)
	}

	// 2. Render history BEFORE recording the new turn, so the new text
	// enters the prompt exactly once, appended below.
	history, err := s.builder.History(ctx, sessionID)
	if err != nil {
		s.metrics.RecordChatTurn("store_error")
		return "", fmt.Errorf("building context: %w", err)
	}

	// 3. Record the user's turn FIRST.
	userMsg, err := s.store.CreateMessage(ctx, sessionID, store.RoleUser, userText)
	if err != nil {
		s.metrics.RecordChatTurn("store_error")
		return "", fmt.Errorf("recording user message: %w", err)
	}

	s.logger.Debug("user message recorded",
		"request_id", requestID,
		"session_id", sessionID,
		"message_id", userMsg.ID,
		"history_len", len(history))

	// 4. Assemble the model input and make the one completion attempt.
	prompt := BuildPrompt(agent.Prompt, history, userText)

	start := time.Now()
	reply, err := s.llm.Complete(ctx, prompt)
	s.metrics.RecordLLMRequest(time.Since(start))
	if err != nil {
		// The user message is recorded; the failed turn keeps it.
		s.metrics.RecordChatTurn("llm_error")
		return "", fmt.Errorf("generating response: %w: %v", ErrUpstream, err)
	}

	// 5. Record the agent's reply as the second, independent write.
	agentMsg, err := s.store.CreateMessage(ctx, sessionID, store.RoleAgent, reply)
	if err != nil {
		s.metrics.RecordChatTurn("store_error")
		return "", fmt.Errorf("recording agent message: %w", err)
	}

	s.logger.Debug("agent message recorded",
		"request_id", requestID,
		"session_id", sessionID,
		"message_id", agentMsg.ID,
		"elapsed", time.Since(start))

	s.metrics.RecordChatTurn("ok")
	return reply, nil
}
