// Package config handles configuration loading for parley-server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package validates required fields; optional fields fall back to the
// defaults of the packages that consume them.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PARLEY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/parley/config.yaml
//  3. ~/.config/parley/config.yaml
//
// # Dotenv Preload
//
// Before expansion, a .env file is loaded into the process environment:
// the file named by PARLEY_ENV_FILE, or .env next to the config file.
// A missing file is ignored. Variables already set in the real environment
// always win over .env values.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	llm:
//	  api_key: "${GROQ_API_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	llm:
//	  timeout: "60s"
//	speech:
//	  timeout: "120s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "localhost:8080"   # API, web page, health, metrics
//
// Database:
//
//	database:
//	  path: "~/.local/share/parley/parley.db"
//
// Chat completion API:
//
//	llm:
//	  base_url: "https://api.groq.com/openai/v1"
//	  api_key: "${GROQ_API_KEY}"    # required
//	  model: "openai/gpt-oss-20b"
//	  temperature: 0
//	  timeout: "60s"
//
// Speech APIs:
//
//	speech:
//	  base_url: "https://api.openai.com/v1"
//	  api_key: "${OPENAI_API_KEY}"  # required
//	  stt_model: "whisper-1"
//	  tts_model: "tts-1"
//	  tts_voice: "alloy"
//	  timeout: "120s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Metrics:
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Validation
//
// Load() validates:
//
//   - server.http_addr is set
//   - database.path is set
//   - llm.api_key is set (falls back to GROQ_API_KEY, then OPENAI_API_KEY)
//   - speech.api_key is set (falls back to OPENAI_API_KEY)
//   - Duration format validity
//
// Both API keys are checked at startup, so a voice call never fails hours
// into a run because a key was missing.
//
// # Usage
//
// Load from a path:
//
//	cfg, err := config.Load("/etc/parley/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
