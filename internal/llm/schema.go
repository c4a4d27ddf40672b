package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema for structured replies.
type Schema struct {
	// Name is sent as the schema or tool name, e.g. "interview-question".
	Name        string
	Description string
	Definition  map[string]any

	compiled *jsonschema.Schema
}

// NewSchema compiles def.
func NewSchema(name, description string, def map[string]any) (*Schema, error) {
	// The compiler wants a decoded JSON document, not Go maps with typed
	// slices, so round-trip the definition.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", name, err)
	}

	url := "mem://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	return &Schema{
		Name:        name,
		Description: description,
		Definition:  def,
		compiled:    compiled,
	}, nil
}

// MustSchema is NewSchema for package-level schemas. It panics on error.
func MustSchema(name, description string, def map[string]any) *Schema {
	s, err := NewSchema(name, description, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw against the schema and returns a KindInvalid *Error
// on failure.
func (s *Schema) Validate(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Invalid(raw, fmt.Errorf("reply is not JSON: %w", err))
	}
	if err := s.compiled.Validate(doc); err != nil {
		return Invalid(raw, err)
	}
	return nil
}

// extractJSON trims model chatter around a JSON object: markdown fences
// and any text before the first brace or after the last one.
func extractJSON(text string) json.RawMessage {
	b := bytes.TrimSpace([]byte(text))
	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end < start {
		return json.RawMessage(b)
	}
	return json.RawMessage(b[start : end+1])
}

// finish turns provider text into a Completion, enforcing the prompt's
// schema.
func finish(provider, model string, p Prompt, text string, usage Usage, hitLimit bool) (*Completion, error) {
	body := json.RawMessage(text)
	if p.Schema != nil {
		body = extractJSON(text)
	}
	if hitLimit {
		return nil, truncated(provider, body)
	}
	if p.Schema != nil {
		if err := p.Schema.Validate(body); err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Provider = provider
			}
			return nil, err
		}
	}
	return &Completion{JSON: body, Usage: usage, Model: model}, nil
}
