// ABOUTME: Store interface and data types for parley persistence
// ABOUTME: Defines Agent, Session, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidRole is returned when a message carries a role outside the
// two-value enum. The check happens before anything is written.
var ErrInvalidRole = errors.New("invalid message role")

// Role identifies the author of a message. Exactly two values exist;
// anything else is rejected at the storage boundary.
type Role string

const (
	RoleUser  Role = "user"  // the human participant
	RoleAgent Role = "agent" // the agent's reply
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAgent
}

// Agent is a named persona defined by its system prompt.
type Agent struct {
	ID        int64
	Name      string
	Prompt    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is a conversation bound to a single agent. Deleting a session
// removes its messages; deleting an agent removes its sessions.
type Session struct {
	ID        int64
	AgentID   int64
	CreatedAt time.Time
}

// Message is a single turn in a session's append-only log.
type Message struct {
	ID        int64
	SessionID int64
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Store defines the interface for agent, session, and message persistence
type Store interface {
	// Agents
	CreateAgent(ctx context.Context, name, prompt string) (*Agent, error)
	GetAgent(ctx context.Context, id int64) (*Agent, error)
	ListAgents(ctx context.Context) ([]*Agent, error)
	UpdateAgent(ctx context.Context, id int64, name, prompt string) (*Agent, error)
	DeleteAgent(ctx context.Context, id int64) error

	// Sessions
	CreateSession(ctx context.Context, agentID int64) (*Session, error)
	GetSession(ctx context.Context, id int64) (*Session, error)
	GetSessionWithAgent(ctx context.Context, id int64) (*Session, *Agent, error)
	ListSessions(ctx context.Context, agentID int64) ([]*Session, error)
	DeleteSession(ctx context.Context, id int64) error

	// Messages (append-only conversation log)
	CreateMessage(ctx context.Context, sessionID int64, role Role, content string) (*Message, error)
	ListSessionMessages(ctx context.Context, sessionID int64) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}
