// Package store provides persistent storage for parley using SQLite.
//
// # Data Model
//
// Three entities form a strict ownership chain:
//
//   - Agent: a named persona defined by its system prompt
//   - Session: a conversation belonging to exactly one agent
//   - Message: one turn in a session's append-only log
//
// Deletes cascade down the chain: removing an agent removes its sessions
// and their messages; removing a session removes its messages. Cascades
// are enforced by SQLite foreign keys (PRAGMA foreign_keys=ON).
//
// # Message Roles
//
// Message.Role is a closed two-value enum, RoleUser and RoleAgent. The
// enum is validated in CreateMessage before any write and backed by a
// CHECK constraint, so no other value can reach the log.
//
// # Ordering
//
// The conversation log is append-only and never reordered. The canonical
// order is (created_at, id): timestamps are stored as UTC RFC3339 text,
// and the AUTOINCREMENT id breaks same-second ties in insertion order.
// ListSessionMessages always returns the complete log in this order.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on open. Use NewSQLiteStore(":memory:")
// for tests that want a throwaway database.
//
// # Error Handling
//
//   - ErrNotFound: the requested row does not exist (also returned when an
//     insert references a missing parent)
//   - ErrInvalidRole: a message role outside the two-value enum
//
// All methods accept context.Context for cancellation support.
package store
