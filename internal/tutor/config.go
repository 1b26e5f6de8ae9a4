package tutor

import "github.com/abhisek/luminary/internal/journey"

// Config holds chat generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Method decides what the first learner message of a fresh journey does.
	// With MethodConversation it starts the diagnosis.
	Method journey.Method
}

// DefaultConfig returns the settings the web tutor has always used.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1000,
		Temperature: 0.7,
		Method:      journey.MethodConversation,
	}
}
