package llm

import (
	"context"
	"errors"
	"testing"
)

type scriptedProvider struct {
	model string
	text  string
	err   error
	calls int
}

func (p *scriptedProvider) Model() string { return p.model }

func (p *scriptedProvider) Complete(_ context.Context, _ []Message, _ Options) (string, error) {
	p.calls++
	return p.text, p.err
}

func TestChainFallbackOrder(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{model: "primary", err: errors.New("boom")}
	secondary := &scriptedProvider{model: "secondary", err: errors.New("also boom")}
	tertiary := &scriptedProvider{model: "tertiary", text: "ok"}

	var failed []string
	chain := NewChain([]Provider{primary, secondary, tertiary}, WithFailureHook(func(model string, _ error) {
		failed = append(failed, model)
	}))

	text, model, err := chain.Complete(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "ok" || model != "tertiary" {
		t.Fatalf("expected tertiary success, got %q from %q", text, model)
	}
	if primary.calls != 1 || secondary.calls != 1 || tertiary.calls != 1 {
		t.Fatalf("expected each provider tried once, got %d/%d/%d", primary.calls, secondary.calls, tertiary.calls)
	}
	if len(failed) != 2 || failed[0] != "primary" || failed[1] != "secondary" {
		t.Fatalf("unexpected failure hook sequence %v", failed)
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{model: "primary", text: "first"}
	secondary := &scriptedProvider{model: "secondary", text: "second"}
	chain := NewChain([]Provider{primary, secondary})

	text, model, err := chain.Complete(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "first" || model != "primary" {
		t.Fatalf("expected primary result, got %q from %q", text, model)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary should not have been called")
	}
}

func TestChainValidationFailureFallsThrough(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{model: "primary", text: "not acceptable"}
	secondary := &scriptedProvider{model: "secondary", text: "acceptable"}

	var failed []string
	chain := NewChain([]Provider{primary, secondary}, WithFailureHook(func(model string, _ error) {
		failed = append(failed, model)
	}))

	text, model, err := chain.CompleteChecked(context.Background(), nil, Options{}, func(text string) error {
		if text != "acceptable" {
			return errors.New("rejected")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "acceptable" || model != "secondary" {
		t.Fatalf("expected secondary to pass validation, got %q from %q", text, model)
	}
	if len(failed) != 1 || failed[0] != "primary" {
		t.Fatalf("validation failure should hit the failure hook, got %v", failed)
	}
}

func TestChainValidationExhaustion(t *testing.T) {
	t.Parallel()

	chain := NewChain([]Provider{
		&scriptedProvider{model: "a", text: "junk"},
		&scriptedProvider{model: "b", text: "junk"},
	})
	_, _, err := chain.CompleteChecked(context.Background(), nil, Options{}, func(string) error {
		return errors.New("rejected")
	})
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
}

func TestChainExhaustion(t *testing.T) {
	t.Parallel()

	chain := NewChain([]Provider{
		&scriptedProvider{model: "a", err: errors.New("x")},
		&scriptedProvider{model: "b", err: errors.New("y")},
	})
	_, _, err := chain.Complete(context.Background(), nil, Options{})
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
}

func TestEmptyChain(t *testing.T) {
	t.Parallel()

	chain := NewChain(nil)
	if _, _, err := chain.Complete(context.Background(), nil, Options{}); !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("expected ErrChainExhausted, got %v", err)
	}
}
