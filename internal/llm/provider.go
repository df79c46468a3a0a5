package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/swarm/internal/model"
	"github.com/ppiankov/swarm/internal/util"
)

// Provider defines the interface for LLM scoring backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Score sends one system/user exchange and returns the JSON object the
	// model answered with. Unparseable output is reported as model.ErrSchema,
	// everything else as model.ErrTransport.
	Score(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool

	// Usage returns the token totals accumulated so far
	Usage() Usage
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for a single scoring call
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   30 * time.Second,
		MaxTokens: 500,
	}
}

// ConfigFromModel converts the LLM and proxy sections of model.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		HTTPProxy:   cfg.Proxy.HTTP,
		HTTPSProxy:  cfg.Proxy.HTTPS,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 500
}

func newHTTPClient(config Config, fallback time.Duration) *http.Client {
	return util.NewHTTPClient(config.timeout(fallback), config.HTTPProxy, config.HTTPSProxy)
}

func transportErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrTransport, provider, err)
}
