package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Tutor chat uses free-form text; callers that need structured output set
// Request.Schema and decode Response.Content as JSON.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its reply.
	// The request's Schema field, when set, instructs the provider to return
	// JSON conforming to that schema. The response Content is then the
	// validated JSON document.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Named is implemented by providers that report which vendor they talk to.
type Named interface {
	Name() string
}

// ProviderName returns p's vendor name, or its model id when p does not
// implement Named.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return p.ModelID()
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the tutor persona and the current
	// assessment instructions.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is the raw text reply.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a chat role name onto a Role. Anything that is not an
// assistant turn is treated as the learner speaking.
func ParseRole(s string) Role {
	if Role(s) == RoleAssistant {
		return RoleAssistant
	}
	return RoleUser
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as tool name for Anthropic,
	// schema name for OpenAI). Kebab-case, e.g. "level-summary".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: the reply text, or the validated
	// JSON document when a Schema was provided.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped, as one of the Stop
	// constants.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	// StopBlocked means the vendor's safety filter cut the reply short.
	StopBlocked = "blocked"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int

	// CachedInputTokens is the part of InputTokens served from the
	// provider's prompt cache. The tutor system prompt repeats on every
	// turn of a journey, so this is usually most of the input.
	CachedInputTokens int
}
