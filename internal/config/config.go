// ABOUTME: Configuration loading and parsing for parley-server
// ABOUTME: Supports YAML files with environment variable expansion, .env preload, and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete parley-server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Speech   SpeechConfig   `yaml:"speech"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig holds chat completion API configuration.
// Empty optional fields fall back to the llm package defaults.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`

	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// SpeechConfig holds transcription and synthesis API configuration.
// Empty optional fields fall back to the speech package defaults.
type SpeechConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	STTModel string `yaml:"stt_model"`
	TTSModel string `yaml:"tts_model"`
	TTSVoice string `yaml:"tts_voice"`

	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file next to the config (or named by PARLEY_ENV_FILE) is loaded first,
// then environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Fall back to conventional environment variables for API keys so
	// secrets never have to live in the config file itself.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = firstEnv("GROQ_API_KEY", "OPENAI_API_KEY")
	}
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads a .env file into the process environment before expansion.
// PARLEY_ENV_FILE names the file explicitly; otherwise it is looked up next to
// the config file. A missing file is not an error. Variables already set in
// the environment win, because godotenv.Load never overrides them.
func loadDotEnv(configPath string) error {
	envPath := os.Getenv("PARLEY_ENV_FILE")
	if envPath == "" {
		envPath = filepath.Join(filepath.Dir(configPath), ".env")
	}

	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", envPath, err)
	}

	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// firstEnv returns the value of the first environment variable that is set
// to a non-empty string.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (or set GROQ_API_KEY)")
	}

	if c.Speech.APIKey == "" {
		return fmt.Errorf("speech.api_key is required (or set OPENAI_API_KEY)")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.LLM.TimeoutRaw != "" {
		cfg.LLM.Timeout, err = time.ParseDuration(cfg.LLM.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing llm.timeout %q: %w", cfg.LLM.TimeoutRaw, err)
		}
	}

	if cfg.Speech.TimeoutRaw != "" {
		cfg.Speech.Timeout, err = time.ParseDuration(cfg.Speech.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing speech.timeout %q: %w", cfg.Speech.TimeoutRaw, err)
		}
	}

	return nil
}
