package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func writeAnthropicReply(w http.ResponseWriter, usage map[string]any, texts ...string) {
	content := make([]map[string]any, len(texts))
	for i, s := range texts {
		content[i] = map[string]any{"type": "text", "text": s}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"usage":       usage,
	})
}

func writeAnthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

// anthropicBody is the subset of the Messages request the tests inspect.
type anthropicBody struct {
	System []struct {
		Text         string `json:"text"`
		CacheControl *struct {
			Type string `json:"type"`
		} `json:"cache_control"`
	} `json:"system"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func TestAnthropicProvider_TutorTurn(t *testing.T) {
	var got anthropicBody
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeAnthropicReply(w, map[string]any{
			"input_tokens":                10,
			"cache_read_input_tokens":     900,
			"cache_creation_input_tokens": 0,
			"output_tokens":               30,
		}, "History is a story. ", "Where shall we begin?")
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "You are Cleopatra, a passionate history tutor.",
		Messages: []Message{
			{Role: RoleAssistant, Content: "Welcome! I'm your history tutor."},
			{Role: RoleUser, Content: "Teach me about Egypt."},
		},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "History is a story. Where shall we begin?" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.StopReason != StopEnd {
		t.Fatalf("stop reason = %q, want %q", resp.StopReason, StopEnd)
	}
	if resp.Usage.InputTokens != 910 || resp.Usage.CachedInputTokens != 900 || resp.Usage.TotalTokens != 940 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}

	if len(got.System) != 1 || got.System[0].CacheControl == nil || got.System[0].CacheControl.Type != "ephemeral" {
		t.Fatalf("system prompt not marked cacheable: %+v", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("leading greeting should be dropped, got %+v", got.Messages)
	}
}

func TestAnthropicProvider_OnlyGreeting(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleAssistant, Content: "Welcome!"}},
		MaxTokens: 100,
	})
	if !errors.Is(err, ErrNoLearnerTurn) {
		t.Fatalf("expected ErrNoLearnerTurn, got %v", err)
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, "api_error", func(err error) bool {
			var unavail *ErrProviderUnavailable
			return errors.As(err, &unavail)
		}},
		{"bad key", http.StatusUnauthorized, "authentication_error", func(err error) bool {
			return errors.Is(err, ErrNotConfigured)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeAnthropicError(w, tt.status, tt.kind)
			})
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-3-5-haiku-latest", "claude-3-5-haiku-latest"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	p := &AnthropicProvider{model: "claude-haiku-4-5-20251001"}
	if p.Name() != "anthropic" || p.ModelID() != "claude-haiku-4-5-20251001" {
		t.Fatalf("unexpected identity %q/%q", p.Name(), p.ModelID())
	}
}
