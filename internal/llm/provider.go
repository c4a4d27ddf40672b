// Package llm asks hosted language models for structured JSON. Providers
// are wrapped by decorators for timeouts, circuit breaking, retries and
// request journaling.
package llm

import (
	"context"
	"encoding/json"
)

// Provider completes a prompt. Implementations must be safe for concurrent
// use.
type Provider interface {
	// Complete sends p and returns the model output. When p.Schema is set
	// the output has been checked against it.
	Complete(ctx context.Context, p Prompt) (*Completion, error)

	// Name is the provider family, e.g. "anthropic".
	Name() string

	// Model is the resolved model ID requests are sent to.
	Model() string
}

// Prompt is a single request to a model.
type Prompt struct {
	System string
	Turns  []Turn

	// Schema, when set, asks the provider for JSON output and validates
	// the reply against it.
	Schema *Schema

	MaxTokens int

	// Temperature is sent only when positive.
	Temperature float64
}

// Turn is one message of the conversation sent to the model.
type Turn struct {
	Role Role
	Text string
}

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// User is shorthand for a user turn.
func User(text string) Turn { return Turn{Role: RoleUser, Text: text} }

// Completion is a successful model reply.
type Completion struct {
	// JSON is the reply body. With a schema it is the validated object,
	// otherwise the raw text.
	JSON  json.RawMessage
	Usage Usage
	Model string
}

// Usage is the token count reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// Decode unmarshals the completion body into v.
func (c *Completion) Decode(v any) error {
	if err := json.Unmarshal(c.JSON, v); err != nil {
		return Invalid(c.JSON, err)
	}
	return nil
}
