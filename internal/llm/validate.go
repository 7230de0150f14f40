package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled schemas keyed by Schema.Name
var schemaCache sync.Map

// validateResponse checks raw against schema and returns it with any
// markdown code fence removed. A nil schema accepts anything; every failure
// is an *ErrInvalidResponse.
func validateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}
	raw = stripCodeFences(raw)
	if len(raw) == 0 {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("empty response")}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}
	return raw, nil
}

// stripCodeFences removes a ```json ... ``` wrapper some models emit even
// in JSON mode.
func stripCodeFences(raw json.RawMessage) json.RawMessage {
	s := bytes.TrimSpace(raw)
	if bytes.HasPrefix(s, []byte("```json")) {
		s = bytes.TrimSpace(bytes.TrimPrefix(s, []byte("```json")))
	} else if bytes.HasPrefix(s, []byte("```")) {
		s = bytes.TrimSpace(bytes.TrimPrefix(s, []byte("```")))
	}
	if bytes.HasSuffix(s, []byte("```")) {
		s = bytes.TrimSpace(bytes.TrimSuffix(s, []byte("```")))
	}
	return json.RawMessage(s)
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants the generic decoding of the document, not Go maps
	// with typed slices, so round-trip through JSON.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
