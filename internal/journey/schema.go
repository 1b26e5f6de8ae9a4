package journey

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// metadataSchemaURL names the trailer schema inside the compiler.
const metadataSchemaURL = "schema://diagnostic-metadata.json"

// MetadataSchema is the JSON Schema the trailer payload must satisfy.
var MetadataSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"confidence": map[string]any{
			"type":        "number",
			"description": "How sure the tutor is of the suggested level, 0.0-1.0",
		},
		"suggestedLevel": map[string]any{
			"type": "string",
			"enum": []any{string(LevelBeginner), string(LevelIntermediate), string(LevelAdvanced)},
		},
		"topicsAssessed": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []any{"confidence", "suggestedLevel"},
}

var (
	metadataSchemaOnce sync.Once
	metadataSchema     *jsonschema.Schema
	metadataSchemaErr  error
)

func compiledMetadataSchema() (*jsonschema.Schema, error) {
	metadataSchemaOnce.Do(func() {
		// The compiler wants a decoded JSON document, not arbitrary Go values.
		raw, err := json.Marshal(MetadataSchema)
		if err != nil {
			metadataSchemaErr = fmt.Errorf("marshal metadata schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			metadataSchemaErr = fmt.Errorf("parse metadata schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(metadataSchemaURL, doc); err != nil {
			metadataSchemaErr = fmt.Errorf("add metadata schema: %w", err)
			return
		}
		metadataSchema, metadataSchemaErr = c.Compile(metadataSchemaURL)
	})
	return metadataSchema, metadataSchemaErr
}
