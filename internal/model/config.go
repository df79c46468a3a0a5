package model

import "time"

// Config is the complete swarm configuration.
// Field tags serve both the YAML config file and viper's decoder.
type Config struct {
	Swarm  SwarmConfig  `yaml:"swarm" mapstructure:"swarm"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Proxy  ProxyConfig  `yaml:"proxy,omitempty" mapstructure:"proxy"`
}

// SwarmConfig controls the dispatcher
type SwarmConfig struct {
	Workers           int           `yaml:"workers" mapstructure:"workers"`                         // Max concurrent entity tasks
	RequestsPerWindow int           `yaml:"requests_per_window" mapstructure:"requests_per_window"` // Admissions allowed per window
	Window            time.Duration `yaml:"window" mapstructure:"window"`                           // Sliding window length
	Strategy          string        `yaml:"strategy" mapstructure:"strategy"`                       // "eval" or "answer"
	Threshold         int           `yaml:"threshold" mapstructure:"threshold"`                     // Caller-side display cut-off
}

// SearchConfig selects and configures the search backend
type SearchConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // serper, brave, tavily
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Limit       int           `yaml:"limit" mapstructure:"limit"` // Top-K results per query
	IncludeURLs bool          `yaml:"include_urls" mapstructure:"include_urls"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"` // Batch search fan-out
}

// LLMConfig selects and configures the scoring backend
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
}

// ScrapeConfig configures the single-page scraper
type ScrapeConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxContentChars   int           `yaml:"max_content_chars" mapstructure:"max_content_chars"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // Per host
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ProxyConfig routes LLM and scrape traffic; search APIs use the environment
type ProxyConfig struct {
	HTTP  string `yaml:"http,omitempty" mapstructure:"http"`
	HTTPS string `yaml:"https,omitempty" mapstructure:"https"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	JSON    string `yaml:"json,omitempty" mapstructure:"json"` // Write ranked JSON lines here instead of stdout
	All     bool   `yaml:"all" mapstructure:"all"`             // Show results at or below the threshold too
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Swarm: SwarmConfig{
			Workers:           50,
			RequestsPerWindow: 50,
			Window:            time.Second,
			Strategy:          "eval",
			Threshold:         DefaultThreshold,
		},
		Search: SearchConfig{
			Provider:    "serper",
			Limit:       5,
			Timeout:     30 * time.Second,
			Concurrency: 10,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     30 * time.Second,
			MaxTokens:   500,
			Temperature: 0,
		},
		Scrape: ScrapeConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Swarm/0.1 (+https://github.com/ppiankov/swarm)",
			MaxBodyBytes:      2_000_000,
			MaxContentChars:   32 * 1024,
			RequestsPerSecond: 1,
			Burst:             2,
			RespectRobots:     true,
		},
	}
}
