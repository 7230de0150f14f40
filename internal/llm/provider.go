package llm

import (
	"context"
	"encoding/json"
)

// Provider is the transport to a structured-output language model.
// The answer oracle talks to it; nothing else in skipera needs a model.
type Provider interface {
	// Generate sends one request and returns the model output. When the
	// request carries a Schema the output has already been checked against
	// it before Generate returns.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the resolved model identifier.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	// System holds the fixed instructions for the model.
	System string

	// Messages carries the user turn(s). Oracle calls send exactly one.
	Messages []Message

	// Schema constrains the reply to a JSON document. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name doubles as the OpenAI schema name and the compile cache key.
	Name        string
	Description string

	// Definition is the schema itself. Nullable fields are written as
	// "type": ["string", "null"]; each provider adapter translates that
	// into its native representation.
	Definition map[string]any
}

// Response is the model output plus accounting.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
