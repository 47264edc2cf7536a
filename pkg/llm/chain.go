package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrChainExhausted is returned when every provider in a fallback chain
// failed for a request.
var ErrChainExhausted = errors.New("all providers in fallback chain failed")

// Chain tries providers in order with the identical request, returning the
// first successful completion together with the model that produced it.
// A chain with no providers always fails.
type Chain struct {
	providers []Provider
	onFailure func(model string, err error)
}

type ChainOption func(*Chain)

// WithFailureHook registers a callback invoked once per failed provider
// attempt, before the chain moves on to the next provider.
func WithFailureHook(hook func(model string, err error)) ChainOption {
	return func(c *Chain) { c.onFailure = hook }
}

func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	chain := &Chain{providers: providers}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// Providers returns the chain's providers in fallback order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// Complete runs the request against each provider until one succeeds.
// The returned model identifies which provider produced the text.
func (c *Chain) Complete(ctx context.Context, messages []Message, opts Options) (text, model string, err error) {
	return c.CompleteChecked(ctx, messages, opts, nil)
}

// CompleteChecked is Complete with an acceptance check: a provider's text
// must also pass validate before it counts as a success. A validation
// failure is treated like a transport failure — the identical request moves
// on to the next provider. A nil validate accepts any completion.
func (c *Chain) CompleteChecked(ctx context.Context, messages []Message, opts Options, validate func(text string) error) (text, model string, err error) {
	if len(c.providers) == 0 {
		return "", "", ErrChainExhausted
	}
	var lastErr error
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		text, attemptErr := p.Complete(ctx, messages, opts)
		if attemptErr == nil && validate != nil {
			attemptErr = validate(text)
		}
		if attemptErr == nil {
			return text, p.Model(), nil
		}
		lastErr = attemptErr
		if c.onFailure != nil {
			c.onFailure(p.Model(), attemptErr)
		}
	}
	return "", "", fmt.Errorf("%w: %v", ErrChainExhausted, lastErr)
}
