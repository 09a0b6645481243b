// Package llm provides the chat completion client used to generate agent
// replies.
//
// The package defines a small wire vocabulary (RoleSystem, RoleUser,
// RoleAssistant) and a single-method Client interface. HTTPClient
// implements it against any OpenAI-compatible /chat/completions endpoint;
// the shipped defaults target Groq with temperature 0 for reproducible
// replies.
//
// Completion calls are synchronous and made exactly once. Error handling
// policy (what to persist, whether to retry) lives with the caller.
package llm
