// Package config loads luminary's runtime settings. Values are layered:
// built-in defaults, then an optional YAML file, then a .env file, then
// LUMINARY_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/luminary/internal/journey"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config holds all runtime settings.
type Config struct {
	// Addr is the HTTP listen address for serve.
	Addr string `yaml:"addr"`
	// DBPath is the journey database file. Empty means the platform default.
	DBPath string `yaml:"db"`
	// Store selects the journey record backend: "sqlite" or "bolt".
	Store string `yaml:"store"`
	// Assessment is "conversation" or "quiz".
	Assessment string `yaml:"assessment"`

	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`

	// LLMTimeout bounds one tutor reply, retries included.
	LLMTimeout time.Duration `yaml:"llmTimeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig bounds chat requests per client.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       ":8080",
		Store:      BackendSQLite,
		Assessment: string(journey.MethodConversation),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Requests: 20,
			Window:   time.Minute,
		},
		LLMTimeout: 60 * time.Second,
	}
}

// DotEnvFile is the file Load reads extra environment variables from.
// Variables already set in the process environment win.
var DotEnvFile = ".env"

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), DotEnvFile if present, and LUMINARY_* variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("LUMINARY_ADDR", &cfg.Addr)
	setString("LUMINARY_DB", &cfg.DBPath)
	setString("LUMINARY_STORE", &cfg.Store)
	setString("LUMINARY_ASSESSMENT", &cfg.Assessment)
	setString("LUMINARY_LOG_LEVEL", &cfg.Log.Level)
	setString("LUMINARY_LOG_FORMAT", &cfg.Log.Format)

	if v := os.Getenv("LUMINARY_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LUMINARY_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.Requests = n
	}
	for key, dst := range map[string]*time.Duration{
		"LUMINARY_RATE_WINDOW": &cfg.RateLimit.Window,
		"LUMINARY_LLM_TIMEOUT": &cfg.LLMTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store {
	case BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store, BackendSQLite, BackendBolt)
	}
	if _, err := journey.ParseMethod(c.Assessment); err != nil {
		return err
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d per %s", c.RateLimit.Requests, c.RateLimit.Window)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.LLMTimeout)
	}
	return nil
}

// Method returns the configured assessment method. Call after Validate.
func (c Config) Method() journey.Method {
	m, _ := journey.ParseMethod(c.Assessment)
	return m
}
