package llm

import (
	"context"
	"errors"
)

// Provider is a chat-completion backend. Complete sends the messages and
// returns the assistant's full text response. Implementations must honor
// ctx cancellation and request-level overrides in Options.
type Provider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	Model() string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are per-request overrides. Zero values fall back to the provider's
// configured defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ErrNotConfigured is returned by NewProvider when the provider or model
// name is empty.
var ErrNotConfigured = errors.New("llm provider not configured")
