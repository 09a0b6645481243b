// ABOUTME: Context builder that turns a session's stored log into model input
// ABOUTME: Maps stored roles onto the completion wire vocabulary and assembles the prompt sequence

package chat

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/store"
)

// HistoryStore defines what the context builder needs from storage.
type HistoryStore interface {
	ListSessionMessages(ctx context.Context, sessionID int64) ([]*store.Message, error)
}

// ContextBuilder renders a session's conversation log as the role-tagged
// message sequence a completion API expects. It is eager and deterministic:
// the same log always renders to the same sequence, and the whole log is
// loaded every time.
type ContextBuilder struct {
	store HistoryStore
}

// NewContextBuilder creates a context builder backed by the given store.
func NewContextBuilder(store HistoryStore) *ContextBuilder {
	return &ContextBuilder{store: store}
}

// History loads the session's full log in canonical order and maps each
// turn onto the wire vocabulary. Content is carried verbatim, empty
// strings included.
func (b *ContextBuilder) History(ctx context.Context, sessionID int64) ([]llm.Message, error) {
	stored, err := b.store.ListSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session messages: %w", err)
	}

	history := make([]llm.Message, 0, len(stored))
	for _, msg := range stored {
		history = append(history, llm.Message{
			Role:    wireRole(msg.Role),
			Content: msg.Content,
		})
	}

	return history, nil
}

// wireRole maps a stored conversation role onto the completion API's
// vocabulary: user stays user, agent becomes assistant.
func wireRole(r store.Role) llm.Role {
	if r == store.RoleAgent {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}

// BuildPrompt assembles the full model input: the agent's system prompt
// first, the prior turns in order, and the new user text appended as the
// final message. The new turn rides in the sequence itself; it is never
// read back from storage. For a history of N turns the result always has
// N+2 messages.
func BuildPrompt(systemPrompt string, history []llm.Message, userText string) []llm.Message {
	prompt := make([]llm.Message, 0, len(history)+2)
	prompt = append(prompt, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	prompt = append(prompt, history...)
	prompt = append(prompt, llm.Message{Role: llm.RoleUser, Content: userText})
	return prompt
}
