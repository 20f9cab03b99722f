// Package provider implements the LLM provider backends.
//
// The assistant talks to one primary provider for the chat stream and tool
// rounds, and can reuse the same provider (or a secondary one) for the
// non-streaming Complete calls that back the TIMATIC lookup and the
// structured extraction endpoints. All implementations satisfy
// model.Provider; the interface lives in the model package to avoid import
// cycles.
//
// Supported backends:
//   - provider.AnthropicProvider for the Anthropic API
//   - provider.OpenAIProvider for the OpenAI API
//   - provider.OpenRouterProvider for OpenRouter (OpenAI-compatible)
//   - provider.OllamaProvider for a local Ollama server
//
// Use the NewProvider factory to construct one from config:
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeAnthropic,
//	    APIKey: key,
//	    Model:  "claude-sonnet-4-5",
//	})
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For cloud providers (unused for Ollama)
}
