package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// App attribution OpenRouter shows on its usage dashboards.
const (
	openRouterReferer = "https://github.com/abhisek/luminary"
	openRouterTitle   = "Luminary"
)

// NewOpenRouterProvider creates a provider for the OpenRouter gateway.
// OpenRouter speaks the chat completions protocol, so it is an
// OpenAIProvider with attribution headers and pass-through model ids
// ("vendor/model").
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := &http.Client{Transport: attributionTransport{base: http.DefaultTransport}}
	return newChatCompletionsProvider("openrouter", OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, client, nil), nil
}

// attributionTransport stamps OpenRouter's app attribution headers on
// every request.
type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(req)
}
