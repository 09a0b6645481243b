// ABOUTME: Client interface and message types for chat completion models
// ABOUTME: Defines the role-tagged wire vocabulary shared by the context builder and HTTP client

package llm

import "context"

// Role tags a message with its author in the completion API's vocabulary.
// This is the wire vocabulary (system/user/assistant), distinct from the
// two stored conversation roles; the context builder maps between them.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client produces a completion for an ordered sequence of messages.
// Implementations make exactly one attempt; retries are the caller's
// decision and nothing here makes one.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
