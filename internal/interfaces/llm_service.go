package interfaces

import (
	"context"
)

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// StreamFunc receives one token of a streamed completion. Returning an
// error aborts the stream.
type StreamFunc func(token string) error

// LLMService defines the interface for language model operations: embedding
// generation, chat completions, and streamed completions. Implementations
// use cloud APIs (Gemini, Claude); the orchestration core treats them as
// black boxes with string contracts.
type LLMService interface {
	// Embed generates a fixed-dimension embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat generates a completion response from the conversation history.
	// The messages slice should contain the full context in chronological
	// order, including system prompts.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatStream generates a completion, delivering tokens through fn in
	// emission order, and returns the full concatenated response.
	ChatStream(ctx context.Context, messages []Message, fn StreamFunc) (string, error)

	// HealthCheck verifies the service can handle requests.
	HealthCheck(ctx context.Context) error

	// GetMode returns the current operational mode of the service.
	GetMode() LLMMode

	// Close releases resources.
	Close() error
}
