package llm

import (
	"errors"
	"testing"
)

type verdict struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

func TestDecodeJSONStrict(t *testing.T) {
	t.Parallel()

	var v verdict
	if err := DecodeJSON(`{"score": 8, "reason": "relevant"}`, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Score != 8 || v.Reason != "relevant" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestDecodeJSONWithProse(t *testing.T) {
	t.Parallel()

	raw := "Sure! Here is my assessment:\n\n{\"score\": 6, \"reason\": \"niche topic\"}\n\nLet me know if you need more."
	var v verdict
	if err := DecodeJSON(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Score != 6 {
		t.Fatalf("expected score 6, got %d", v.Score)
	}
}

func TestDecodeJSONMarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"score\": 9, \"reason\": \"big launch\"}\n```"
	var v verdict
	if err := DecodeJSON(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Score != 9 {
		t.Fatalf("expected score 9, got %d", v.Score)
	}
}

func TestDecodeJSONBracesInsideStrings(t *testing.T) {
	t.Parallel()

	raw := `prefix {"score": 4, "reason": "mentions {curly} braces"} suffix`
	var v verdict
	if err := DecodeJSON(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Reason != "mentions {curly} braces" {
		t.Fatalf("unexpected reason %q", v.Reason)
	}
}

func TestDecodeJSONNoObject(t *testing.T) {
	t.Parallel()

	var v verdict
	if err := DecodeJSON("I could not produce a rating for this item.", &v); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if err := DecodeJSON("", &v); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for empty input, got %v", err)
	}
	if err := DecodeJSON("{not valid json", &v); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for unbalanced input, got %v", err)
	}
}

func TestNewProviderSelection(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(Config{Provider: ""}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewProvider(Config{Provider: "openai"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for empty model, got %v", err)
	}
	if _, err := NewProvider(Config{Provider: "openai", Model: "m"}); err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "ollama", Model: "m"}); err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "anthropic", Model: "m"}); err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "carrier-pigeon", Model: "m"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
