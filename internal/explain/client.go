// Package explain turns a simulation result and its computation trace into
// a plain-language explanation via a hosted language model. This is the one
// pipeline stage with a deliberate recovery policy: a failed service call
// degrades into a displayable fallback string instead of aborting the
// submission.
package explain

import (
	"context"
	"fmt"
	"time"
)

// LLMClient defines the interface for explanation service providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig holds the provider-independent client settings. Credentials
// are injected here at construction; nothing in this package reads the
// environment.
type ClientConfig struct {
	Provider  string // anthropic, gemini
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// NewClient selects and builds a provider client from config.
func NewClient(cfg ClientConfig) (LLMClient, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return NewAnthropicClientWithConfig(cfg), nil
	case "gemini":
		return NewGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Provider)
	}
}
