package llm

import (
	"errors"
	"testing"
)

func assessmentSchema() *Schema {
	return &Schema{
		Name:        "test-assessment",
		Description: "A learner assessment",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"level":      map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
				"topics": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"confidence", "level"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr bool
	}{
		{"valid", assessmentSchema(), `{"confidence":0.8,"level":"advanced","topics":["optics"]}`, false},
		{"valid without optional", assessmentSchema(), `{"confidence":0.2,"level":"beginner"}`, false},
		{"missing required", assessmentSchema(), `{"level":"beginner"}`, true},
		{"wrong type", assessmentSchema(), `{"confidence":"high","level":"beginner"}`, true},
		{"out of range", assessmentSchema(), `{"confidence":1.5,"level":"beginner"}`, true},
		{"invalid enum", assessmentSchema(), `{"confidence":0.5,"level":"expert"}`, true},
		{"wrong item type", assessmentSchema(), `{"confidence":0.5,"level":"expert","topics":[1,2]}`, true},
		{"malformed json", assessmentSchema(), `{not json}`, true},
		{"empty response", assessmentSchema(), ``, true},
		{"nil schema", nil, `anything goes`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if invErr.Content != tt.raw {
				t.Errorf("Content = %q, want %q", invErr.Content, tt.raw)
			}
		})
	}
}

func TestCompiledSchemaIsCached(t *testing.T) {
	s := assessmentSchema()
	s.Name = "test-cache"
	first, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile again: %v", err)
	}
	if first != second {
		t.Error("expected the cached schema on the second call")
	}
}

func TestFinishReply(t *testing.T) {
	t.Run("blocked and empty", func(t *testing.T) {
		var invErr *ErrInvalidResponse
		if err := finishReply(nil, "  ", StopBlocked); !errors.As(err, &invErr) {
			t.Fatalf("expected ErrInvalidResponse, got %v", err)
		}
	})
	t.Run("blocked with text is kept", func(t *testing.T) {
		if err := finishReply(nil, "Let's talk about something else.", StopBlocked); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("truncated structured reply", func(t *testing.T) {
		var maxErr *ErrMaxTokensExceeded
		if err := finishReply(assessmentSchema(), `{"confidence":0.`, StopMaxTokens); !errors.As(err, &maxErr) {
			t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
		}
	})
	t.Run("truncated chat reply passes", func(t *testing.T) {
		if err := finishReply(nil, "Newton's first law says", StopMaxTokens); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
