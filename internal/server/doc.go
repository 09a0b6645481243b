// Package server assembles the parley-server components and runs them.
//
// # Overview
//
// The server package is the composition root. New builds every component
// from a loaded configuration and wires them onto one HTTP mux:
//
//	store      -> SQLite persistence (agents, sessions, messages)
//	llm        -> chat completion client
//	speech     -> transcription and synthesis client
//	chat       -> text turn orchestrator
//	voice      -> voice turn pipeline
//	api        -> JSON API handlers under /api/
//	web        -> embedded chat page at /
//
// # Routes
//
// Beyond the API routes registered by the api package, the server adds:
//
//   - GET /health - liveness check, returns {"status":"ok"}
//   - GET /metrics - Prometheus metrics (only when metrics.enabled)
//   - /            - embedded single-page chat UI
//
// # Lifecycle
//
// Start the server:
//
//	srv, err := server.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	err = srv.Run(ctx)
//
// Run blocks until the context is canceled or the listener fails, then
// performs a graceful shutdown with a 5 second timeout and closes the
// store.
//
// # Environment
//
// PARLEY_DB_PATH overrides database.path from the configuration, which is
// convenient for tests and one-off runs against a scratch database.
package server
