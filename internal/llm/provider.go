package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the Generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case ProviderAnthropic:
		c := NewClaudeClient(opts.APIKey, opts.Model, opts.Timeout)
		if opts.BaseURL != "" {
			c.WithURL(opts.BaseURL)
		}
		return c, nil
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderGemini:
		return NewGemini(ctx, opts.APIKey, opts.Model)
	}
	return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
}
