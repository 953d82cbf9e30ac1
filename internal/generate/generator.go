// Package generate defines the external text-generation boundary. The core
// supplies prompts and parses responses; transport, auth, and retry live in
// the client implementation.
package generate

import "context"

// Message is one turn of a generator conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a generation call needs.
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Generator is the black-box text generation function. Implementations own
// their timeout and retry policy; callers only see text or an error.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
