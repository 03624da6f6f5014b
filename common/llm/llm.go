package llm

import (
	"context"
	"fmt"
)

// Provider constants for completion provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message roles understood by the completion providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds completion client configuration.
type Config struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string // Required: API key for the provider
	BaseURL   string // Optional: custom API endpoint
	Model     string // Model name (e.g. "gpt-4o-mini")
	MaxTokens int    // Completion token cap; provider default if 0
}

// Message is a single conversation turn sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Choice is one candidate completion returned by the provider.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
	Index        int64   `json:"index"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Completion is the provider response, normalized across providers so the
// caller can be handed the payload unmodified.
type Completion struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Client performs a single stateless chat completion.
type Client interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
	Model() string
}

// NewClient creates a Client for the configured provider.
// Defaults to OpenAI if no provider is specified.
func NewClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", provider)
	}
}
