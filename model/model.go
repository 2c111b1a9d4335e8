package model

import (
	"context"
	"fmt"
)

// Request captures the normalized model input produced by capabilities.
type Request struct {
	// Instructions is the system-level steering text, may be empty.
	Instructions string `json:"instructions"`

	// Prompt is the user-level input.
	Prompt string `json:"prompt"`

	// MaxTokens caps the completion length. Zero uses the adapter default.
	MaxTokens int64 `json:"max_tokens,omitempty"`

	// Temperature overrides the adapter default when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`
}

// TokenUsage reports the provider-metered token counts for one generation.
// When a provider returns usage the cost pipeline prefers it over the
// character heuristic.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the final output of one generation.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface capabilities need to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string

	// Err, when set, is returned by every Generate call.
	Err error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model. Unregistered prompts echo a generic completion
// so examples work without per-prompt setup.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := m.responses[req.Prompt]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{
		Text: text,
		Usage: &TokenUsage{
			InputTokens:  (len(req.Instructions) + len(req.Prompt)) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
