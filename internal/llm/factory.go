package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/store"
)

// ConfigOption adjusts a Config after it is read from the environment.
type ConfigOption func(*Config)

// WithRequestTimeout overrides the per-turn timeout. Non-positive values
// are ignored.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithMockResponder makes the "mock" provider answer through fn instead
// of failing every request.
func WithMockResponder(fn Responder) ConfigOption {
	return func(c *Config) { c.MockResponder = fn }
}

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → logging → vendor.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewScriptedProvider(cfg.MockResponder)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	retryLog := log.Named("llm")
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry, OnRetry(func(attempt int, wait time.Duration, err error) {
		retryLog.Info("retrying llm request",
			zap.String("provider", cfg.Provider),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}))

	return WithTimeout(retried, cfg.Timeout), nil
}

// NewProviderFromEnv builds a provider from LUMINARY_* variables when a
// provider is selected explicitly, and otherwise from whichever standard
// vendor key is set. It returns an error wrapping ErrNotConfigured when no
// credentials are found.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log *zap.Logger, opts ...ConfigOption) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		discovered.Timeout = cfg.Timeout
		cfg = discovered
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewProvider(ctx, cfg, eventRepo, log)
}

// TimeoutProvider bounds every Generate call, retries included.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so each call is cancelled after d. A zero or
// negative d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}

func (t *TimeoutProvider) Name() string {
	return ProviderName(t.inner)
}
