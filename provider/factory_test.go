package provider

import (
	"testing"

	"tkta/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "ollama provider with defaults",
			config: Config{
				Type: ProviderTypeOllama,
			},
			expectError: false,
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				Model:  "gpt-4o-mini",
				APIKey: "test-key",
			},
			expectError: false,
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:   ProviderTypeOpenRouter,
				APIKey: "test-key",
			},
			expectError: false,
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   ProviderTypeAnthropic,
				Model:  "claude-sonnet-4-5-20250929",
				APIKey: "test-key",
			},
			expectError: false,
		},
		{
			name: "anthropic without api key",
			config: Config{
				Type: ProviderTypeAnthropic,
			},
			expectError: true,
		},
		{
			name: "unknown provider type",
			config: Config{
				Type: ProviderType("unknown"),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected non-nil provider")
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openrouter", ProviderTypeOpenRouter},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"something-else", ProviderType("something-else")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// Compile-time checks that every backend satisfies the interface.
var (
	_ model.Provider = (*OllamaProvider)(nil)
	_ model.Provider = (*OpenAIProvider)(nil)
	_ model.Provider = (*OpenRouterProvider)(nil)
	_ model.Provider = (*AnthropicProvider)(nil)
)
