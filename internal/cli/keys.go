package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/swarm/internal/model"
)

// providerKeyEnv names the conventional variable holding each provider's key
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"claude":    "ANTHROPIC_API_KEY",
	"serper":    "SERPER_API_KEY",
	"brave":     "BRAVE_API_KEY",
	"tavily":    "TAVILY_API_KEY",
}

// resolveSearchKey fills the search API key from the environment when the
// config does not set one
func resolveSearchKey(cfg *model.Config) error {
	provider := strings.ToLower(cfg.Search.Provider)
	if provider == "" {
		provider = "serper"
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv(providerKeyEnv[provider])
	}
	if cfg.Search.APIKey == "" {
		env, ok := providerKeyEnv[provider]
		if !ok {
			return fmt.Errorf("unknown search provider: %s (supported: serper, brave, tavily)", cfg.Search.Provider)
		}
		return fmt.Errorf("%s environment variable not set", env)
	}
	return nil
}

// resolveLLMKey fills the LLM API key (or Ollama base URL) from the environment
func resolveLLMKey(cfg *model.Config) error {
	provider := strings.ToLower(cfg.LLM.Provider)
	if provider == "" {
		provider = "openai"
	}

	// The stock model name belongs to OpenAI; let other providers pick their own
	if provider != "openai" && cfg.LLM.Model == model.DefaultConfig().LLM.Model {
		cfg.LLM.Model = ""
	}

	if provider == "ollama" {
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
		return nil
	}

	env, ok := providerKeyEnv[provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", cfg.LLM.Provider)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(env)
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("%s environment variable not set", env)
	}
	return nil
}

// maskKey hides all but the last four characters of a secret
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
