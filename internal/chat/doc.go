// Package chat implements the conversational core: context assembly and
// the turn-taking protocol.
//
// # Context Assembly
//
// ContextBuilder renders a session's append-only log as the role-tagged
// sequence a completion API expects. The agent's system prompt always
// leads, stored turns follow in canonical (created_at, id) order with
// user→user and agent→assistant role mapping, and the new user text is
// appended as the final message. The new turn travels inline; it is never
// written first and read back. Rendering is eager, deterministic, and
// unbounded: every stored turn is included every time.
//
// # Turn Protocol
//
// Service.GenerateResponse runs the protocol in a fixed order:
//
//  1. Load the session with its agent (missing session: ErrNotFound,
//     nothing written)
//  2. Render history from the log as it stands
//  3. Commit the user's message
//  4. Call the completion API once, synchronously
//  5. Commit the agent's reply
//  6. Return the reply text
//
// The two commits are independent writes. If the completion call fails,
// the user's message remains; the caller sees the error and decides what
// to do next. Nothing here retries.
//
// # Concurrency
//
// A single request is processed start to finish by its own goroutine.
// Requests hitting different sessions are fully independent. Requests
// hitting the same session concurrently are not serialized and may
// interleave between the history read and the writes.
package chat
