package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/tkta",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DefaultProvider: "anthropic",
		Providers: []ProviderConfig{
			{ID: "anthropic", Name: "Anthropic", Enabled: true, BaseURL: "https://api.anthropic.com", DefaultModel: "claude-sonnet-4-5"},
			{ID: "openai", Name: "OpenAI", Enabled: false, BaseURL: "https://api.openai.com/v1", DefaultModel: "gpt-4o"},
			{ID: "openrouter", Name: "OpenRouter", Enabled: false, BaseURL: "https://openrouter.ai/api/v1"},
			{ID: "ollama", Name: "Ollama", Enabled: false, BaseURL: "http://localhost:11434", DefaultModel: "llama3.1:latest"},
		},
		HTTP: HTTPConfig{
			ListenAddr: ":3001",
		},
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# TKTA System Configuration
# Location: ~/.config/tkta/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, credentials and user config are stored
data_directory = "~/.local/share/tkta"
`
}

func GenerateUserConfigTemplate() string {
	return `# TKTA User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Provider used for chat turns and the TIMATIC sub-lookup
default_provider = "anthropic"

# Model override; empty means the provider's default_model below
default_model = ""

[http]
# Listen address for the HTTP relay (tkta -serve)
listen_addr = ":3001"

[storage]
# Session repository backend: "file" (sessions.json) or "sqlite"
backend = "file"

[[providers]]
id = "anthropic"
name = "Anthropic"
enabled = true
base_url = "https://api.anthropic.com"
default_model = "claude-sonnet-4-5"

[[providers]]
id = "openai"
name = "OpenAI"
enabled = false
base_url = "https://api.openai.com/v1"
default_model = "gpt-4o"

[[providers]]
id = "openrouter"
name = "OpenRouter"
enabled = false
base_url = "https://openrouter.ai/api/v1"

[[providers]]
id = "ollama"
name = "Ollama"
enabled = false
base_url = "http://localhost:11434"
default_model = "llama3.1:latest"
`
}
