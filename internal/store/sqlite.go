// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides agent/session/message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys so cascade deletes work
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// AUTOINCREMENT keeps row ids monotonic, which is what makes id a valid
// insertion-order tie-break when two messages share a created_at.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS agents (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			prompt     TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_id   INTEGER NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_agent ON sessions(agent_id);

		CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			role       TEXT NOT NULL CHECK (role IN ('user', 'agent')),
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session_created
			ON messages(session_id, created_at, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isForeignKeyViolation checks if the error is a SQLite foreign key violation,
// which is how a missing parent row surfaces on insert.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// CreateAgent creates a new agent and returns it with its assigned id.
func (s *SQLiteStore) CreateAgent(ctx context.Context, name, prompt string) (*Agent, error) {
	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO agents (name, prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		name,
		prompt,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting agent: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading agent id: %w", err)
	}

	s.logger.Debug("created agent", "id", id, "name", name)
	return &Agent{ID: id, Name: name, Prompt: prompt, CreatedAt: now, UpdatedAt: now}, nil
}

// GetAgent retrieves an agent by ID.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) GetAgent(ctx context.Context, id int64) (*Agent, error) {
	query := `
		SELECT id, name, prompt, created_at, updated_at
		FROM agents
		WHERE id = ?
	`

	var agent Agent
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Prompt,
		&createdAtStr,
		&updatedAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying agent: %w", err)
	}

	agent.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	agent.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &agent, nil
}

// ListAgents returns all agents in creation order.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]*Agent, error) {
	query := `
		SELECT id, name, prompt, created_at, updated_at
		FROM agents
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		var agent Agent
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Prompt, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}

		agent.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		agent.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		agents = append(agents, &agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agent rows: %w", err)
	}

	return agents, nil
}

// UpdateAgent replaces an agent's name and prompt and bumps updated_at.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) UpdateAgent(ctx context.Context, id int64, name, prompt string) (*Agent, error) {
	now := time.Now().UTC().Truncate(time.Second)
	query := `
		UPDATE agents
		SET name = ?, prompt = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, name, prompt, now.Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("updating agent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("updated agent", "id", id)
	return s.GetAgent(ctx, id)
}

// DeleteAgent removes an agent. Its sessions and their messages cascade away.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted agent", "id", id)
	return nil
}

// CreateSession creates a new session for the given agent.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) CreateSession(ctx context.Context, agentID int64) (*Session, error) {
	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO sessions (agent_id, created_at)
		VALUES (?, ?)
	`

	result, err := s.db.ExecContext(ctx, query, agentID, now.Format(time.RFC3339))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading session id: %w", err)
	}

	s.logger.Debug("created session", "id", id, "agent_id", agentID)
	return &Session{ID: id, AgentID: agentID, CreatedAt: now}, nil
}

// GetSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id int64) (*Session, error) {
	query := `
		SELECT id, agent_id, created_at
		FROM sessions
		WHERE id = ?
	`

	var session Session
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.AgentID,
		&createdAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &session, nil
}

// GetSessionWithAgent retrieves a session together with its owning agent
// in a single query. Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSessionWithAgent(ctx context.Context, id int64) (*Session, *Agent, error) {
	query := `
		SELECT s.id, s.agent_id, s.created_at,
		       a.id, a.name, a.prompt, a.created_at, a.updated_at
		FROM sessions s
		JOIN agents a ON a.id = s.agent_id
		WHERE s.id = ?
	`

	var session Session
	var agent Agent
	var sessionCreatedStr, agentCreatedStr, agentUpdatedStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.AgentID,
		&sessionCreatedStr,
		&agent.ID,
		&agent.Name,
		&agent.Prompt,
		&agentCreatedStr,
		&agentUpdatedStr,
	)

	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying session with agent: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, sessionCreatedStr)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing session created_at: %w", err)
	}

	agent.CreatedAt, err = time.Parse(time.RFC3339, agentCreatedStr)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing agent created_at: %w", err)
	}

	agent.UpdatedAt, err = time.Parse(time.RFC3339, agentUpdatedStr)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing agent updated_at: %w", err)
	}

	return &session, &agent, nil
}

// ListSessions returns sessions newest first. A positive agentID filters
// to that agent's sessions; zero returns all sessions.
func (s *SQLiteStore) ListSessions(ctx context.Context, agentID int64) ([]*Session, error) {
	query := `
		SELECT id, agent_id, created_at
		FROM sessions
		ORDER BY created_at DESC, id DESC
	`
	var args []any

	if agentID > 0 {
		query = `
			SELECT id, agent_id, created_at
			FROM sessions
			WHERE agent_id = ?
			ORDER BY created_at DESC, id DESC
		`
		args = []any{agentID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var session Session
		var createdAtStr string

		if err := rows.Scan(&session.ID, &session.AgentID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes a session and, via cascade, its messages.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted session", "id", id)
	return nil
}

// CreateMessage appends a message to a session's log.
// The role is validated before anything touches the database; an unknown
// role returns ErrInvalidRole. Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) CreateMessage(ctx context.Context, sessionID int64, role Role, content string) (*Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO messages (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query, sessionID, string(role), content, now.Format(time.RFC3339))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading message id: %w", err)
	}

	s.logger.Debug("created message", "id", id, "session_id", sessionID, "role", role)
	return &Message{ID: id, SessionID: sessionID, Role: role, Content: content, CreatedAt: now}, nil
}

// ListSessionMessages returns the full message log for a session in
// chronological order. Ties on created_at fall back to id, which is
// insertion order. The log is returned whole; conversation context is
// always built from every turn.
func (s *SQLiteStore) ListSessionMessages(ctx context.Context, sessionID int64) ([]*Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var roleStr, createdAtStr string

		if err := rows.Scan(&msg.ID, &msg.SessionID, &roleStr, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.Role = Role(roleStr)

		msg.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
