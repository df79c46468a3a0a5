package llm

import (
	"errors"
	"math"
	"testing"

	"github.com/ppiankov/swarm/internal/model"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "fenced", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "prose around", in: `Sure! {"a": {"b": 2}} Hope that helps.`, want: `{"a": {"b": 2}}`},
		{name: "no object", in: `no json here`, wantErr: true},
		{name: "broken", in: `{"a": 1`, wantErr: true},
		{name: "invalid", in: `{a: 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.in)
			if tt.wantErr {
				if !errors.Is(err, model.ErrSchema) {
					t.Errorf("expected schema error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUsage_Cost(t *testing.T) {
	u := Usage{InputTokens: 1_000_000, OutputTokens: 500_000}
	if got := u.Cost(); math.Abs(got-0.90) > 1e-9 {
		t.Errorf("expected $0.90, got %f", got)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai", APIKey: "k"}); err != nil {
		t.Errorf("openai: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "claude", APIKey: "k"}); err != nil {
		t.Errorf("claude alias: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "ollama", Model: "mistral"}); err != nil {
		t.Errorf("ollama: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "palm"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestConfigFromModel(t *testing.T) {
	base := model.DefaultConfig()
	base.Proxy.HTTPS = "http://proxy:3128"

	cfg := ConfigFromModel(base)
	if cfg.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("expected proxy to carry over, got %q", cfg.HTTPSProxy)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" || cfg.MaxTokens != 500 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
