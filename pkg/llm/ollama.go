package llm

import (
	"context"
	"strings"
)

// OllamaProvider runs completions against a local model runner. Ollama exposes
// an OpenAI-compatible endpoint, so this is a thin wrapper with a localhost
// default.
type OllamaProvider struct {
	openai *OpenAIProvider
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	cfgCopy := cfg
	if strings.TrimSpace(cfgCopy.APIURL) == "" {
		cfgCopy.APIURL = "http://localhost:11434/v1"
	}
	return &OllamaProvider{
		openai: NewOpenAIProvider(cfgCopy),
	}
}

func (p *OllamaProvider) Model() string { return p.openai.Model() }

func (p *OllamaProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	return p.openai.Complete(ctx, messages, opts)
}
