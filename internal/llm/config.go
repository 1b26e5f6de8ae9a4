package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the vendor: "openai", "anthropic", "gemini",
	// "openrouter" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one chat turn, retries included.
	Timeout time.Duration

	// MockResponder answers requests for the "mock" provider. Without it
	// every mock request fails as unavailable.
	MockResponder Responder
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig holds configuration for OpenAI and compatible endpoints.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // vendor/model
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultTimeout bounds one chat turn including retries.
const DefaultTimeout = 60 * time.Second

// vendor describes how one provider is configured from the environment.
// The order of vendors is the discovery priority.
type vendor struct {
	name string
	// keyVars are checked in order; the first is the LUMINARY_ variable,
	// the second the vendor's own.
	keyVars []string
	prefix  string
	// settings returns pointers to the key, model and base URL fields.
	settings func(*Config) (key, model, baseURL *string)
}

var vendors = []vendor{
	{
		name: "openai", prefix: "LUMINARY_OPENAI_",
		keyVars: []string{"LUMINARY_OPENAI_API_KEY", "OPENAI_API_KEY"},
		settings: func(c *Config) (*string, *string, *string) {
			return &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL
		},
	},
	{
		name: "anthropic", prefix: "LUMINARY_ANTHROPIC_",
		keyVars: []string{"LUMINARY_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		settings: func(c *Config) (*string, *string, *string) {
			return &c.Anthropic.APIKey, &c.Anthropic.Model, &c.Anthropic.BaseURL
		},
	},
	{
		name: "gemini", prefix: "LUMINARY_GEMINI_",
		keyVars: []string{"LUMINARY_GEMINI_API_KEY", "GEMINI_API_KEY"},
		settings: func(c *Config) (*string, *string, *string) {
			return &c.Gemini.APIKey, &c.Gemini.Model, &c.Gemini.BaseURL
		},
	},
	{
		name: "openrouter", prefix: "LUMINARY_OPENROUTER_",
		keyVars: []string{"LUMINARY_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		settings: func(c *Config) (*string, *string, *string) {
			return &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL
		},
	},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// DefaultConfig returns the settings used when nothing is configured:
// OpenAI's gpt-4o-mini, three attempts with exponential backoff.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: DefaultTimeout,
	}
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// ConfigFromEnv reads LUMINARY_LLM_PROVIDER, LUMINARY_LLM_TIMEOUT and, for
// every vendor, LUMINARY_<VENDOR>_{API_KEY,MODEL,BASE_URL}. Keys fall back
// to the vendor's standard variable (OPENAI_API_KEY and so on). Unset
// values keep their defaults; a malformed timeout is ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LUMINARY_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if t := os.Getenv("LUMINARY_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	for _, v := range vendors {
		key, model, baseURL := v.settings(&cfg)
		*key = firstEnv(v.keyVars...)
		if m := os.Getenv(v.prefix + "MODEL"); m != "" {
			*model = m
		}
		*baseURL = os.Getenv(v.prefix + "BASE_URL")
	}
	return cfg
}

// DiscoverConfig picks the first vendor, in priority order OpenAI,
// Anthropic, Gemini, OpenRouter, whose standard key variable is set.
// It reports false when none is.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		std := v.keyVars[len(v.keyVars)-1]
		k := os.Getenv(std)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		key, _, _ := v.settings(&cfg)
		*key = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key, _, _ := v.settings(&c); *key == "" {
		return fmt.Errorf("%w: set %s for the %s provider", ErrNotConfigured, v.keyVars[0], v.name)
	}
	return nil
}
