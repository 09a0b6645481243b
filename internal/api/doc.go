// Package api exposes the parley HTTP JSON surface.
//
// # Routes
//
// Agent management:
//
//   - POST /api/agents - Create an agent (name + prompt)
//   - GET /api/agents - List agents
//   - GET /api/agents/{id} - Retrieve one agent
//   - PUT /api/agents/{id} - Replace name and prompt
//   - DELETE /api/agents/{id} - Delete (cascades sessions and messages)
//
// Sessions and messages:
//
//   - POST /api/sessions - Create a session for an agent
//   - GET /api/sessions - List sessions, optional ?agent=N filter
//   - GET /api/sessions/{id} - Retrieve one session
//   - DELETE /api/sessions/{id} - Delete (cascades messages)
//   - GET /api/sessions/{id}/messages - Full log in conversation order
//
// Turns:
//
//   - POST /api/sessions/send_message - One text turn; JSON body
//     {session_id, content}; responds {status, user_message, agent_response}
//   - POST /api/sessions/send_voice_message - One voice turn; multipart
//     session_id + audio_file; responds with an audio/mpeg attachment
//
// # Error Mapping
//
// Errors are JSON objects {"error": "..."}:
//
//   - 400 - malformed JSON, missing fields, non-integer ids
//   - 404 - store.ErrNotFound (nothing was written)
//   - 502 - chat.ErrUpstream / voice.ErrUpstream; for a text turn the
//     user message is already persisted when this is returned
//   - 500 - anything else
//
// The send_message content field is deliberately a pointer: an empty
// string is a valid turn and must not be confused with an absent field.
package api
