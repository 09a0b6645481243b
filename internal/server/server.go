// ABOUTME: Server orchestrator that wires the store, model clients, and services
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/metrics"
	"github.com/parleyhq/parley/internal/speech"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/voice"
	"github.com/parleyhq/parley/internal/web"
)

// Server assembles the parley components and runs the HTTP server.
type Server struct {
	config     *config.Config
	store      store.Store
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore creates a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("PARLEY_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a Server with every component wired from the configuration:
// store, completion and speech clients, chat and voice services, the JSON
// API, the embedded chat page, and the health and metrics endpoints.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	// Metrics register with the default Prometheus registry, so this must
	// happen at most once per process.
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	llmClient := llm.NewHTTPClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	speechClient := speech.NewHTTPClient(speech.Config{
		BaseURL:  cfg.Speech.BaseURL,
		APIKey:   cfg.Speech.APIKey,
		STTModel: cfg.Speech.STTModel,
		TTSModel: cfg.Speech.TTSModel,
		TTSVoice: cfg.Speech.TTSVoice,
		Timeout:  cfg.Speech.Timeout,
	}, logger)

	chatService := chat.New(st, llmClient, logger, m)
	voiceService := voice.New(speechClient, chatService, logger, m)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)

	if cfg.Metrics.Enabled {
		metricsPath := cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle(metricsPath, promhttp.Handler())
		logger.Info("metrics endpoint enabled", "path", metricsPath)
	}

	api.New(st, chatService, voiceService, logger).Register(mux)

	// The chat page sits at the root; more specific patterns above win.
	mux.Handle("/", web.Handler())

	return &Server{
		config: cfg,
		store:  st,
		logger: logger.With("component", "server"),
		httpServer: &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the server's HTTP handler, for tests that drive it
// without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and releases the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK with a JSON body if the server is alive.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
