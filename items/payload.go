package items

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// KindSchema returns the JSON schema describing the payload shape expected
// for a content kind. The lifecycle itself stores payloads verbatim; these
// schemas exist for ingestion pipelines and command handlers that want to
// reject malformed input before it reaches storage.
func KindSchema(kind Kind) map[string]any {
	switch kind {
	case KindDocument:
		return map[string]any{
			"type":     "object",
			"required": []any{"title", "body"},
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "minLength": 1},
				"head":  map[string]any{"type": []any{"string", "null"}},
				"body":  map[string]any{"type": "string", "minLength": 1},
			},
			"additionalProperties": false,
		}
	case KindFragment:
		return map[string]any{
			"type":     "object",
			"required": []any{"body"},
			"properties": map[string]any{
				"body": map[string]any{"type": "string", "minLength": 1},
			},
			"additionalProperties": false,
		}
	case KindPage:
		return map[string]any{
			"type":     "object",
			"required": []any{"title", "body"},
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "minLength": 1},
				"head":  map[string]any{"type": []any{"string", "null"}},
				"body":  map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		}
	case KindNews:
		return map[string]any{
			"type":     "object",
			"required": []any{"title", "body"},
			"properties": map[string]any{
				"title":      map[string]any{"type": "string", "minLength": 1},
				"body":       map[string]any{"type": "string", "minLength": 1},
				"image_path": map[string]any{"type": []any{"string", "null"}},
			},
			"additionalProperties": false,
		}
	}
	return nil
}

// ValidatePayload checks the payload against the kind's schema. Kinds
// without a schema are unknown and rejected with ErrKindInvalid.
func ValidatePayload(kind Kind, payload VersionPayload) error {
	schema := KindSchema(kind)
	if schema == nil {
		return ErrKindInvalid
	}
	compiled, err := compileKindSchema(schema)
	if err != nil {
		return fmt.Errorf("items: compile %s payload schema: %w", kind, err)
	}
	if err := compiled.Validate(payloadToMap(kind, payload)); err != nil {
		return fmt.Errorf("items: %s payload invalid: %w", kind, err)
	}
	return nil
}

func payloadToMap(kind Kind, payload VersionPayload) map[string]any {
	out := map[string]any{}
	switch kind {
	case KindFragment:
		out["body"] = payload.Body
	case KindNews:
		out["title"] = payload.Title
		out["body"] = payload.Body
		if payload.ImagePath != nil {
			out["image_path"] = *payload.ImagePath
		}
	default:
		out["title"] = payload.Title
		out["body"] = payload.Body
		if payload.Head != nil {
			out["head"] = *payload.Head
		}
	}
	return out
}

func compileKindSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("payload.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("payload.json")
}
