package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

// ProviderConfig describes one configured LLM provider.
type ProviderConfig struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url,omitempty"`
	DefaultModel string `toml:"default_model,omitempty"`
}

type HTTPConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type StorageConfig struct {
	// Backend selects the session repository: "file" or "sqlite".
	Backend string `toml:"backend"`
}

type UserConfig struct {
	DefaultProvider string           `toml:"default_provider"`
	DefaultModel    string           `toml:"default_model"`
	Providers       []ProviderConfig `toml:"providers"`
	HTTP            HTTPConfig       `toml:"http"`
	Storage         StorageConfig    `toml:"storage"`
}

// Config is the fully resolved runtime configuration.
type Config struct {
	DataDirectory   string
	DefaultProvider string
	DefaultModel    string
	BaseURL         string
	HTTPAddr        string
	StorageBackend  string
	Providers       []ProviderConfig
	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ProviderByID returns the configured entry for a provider, or nil.
func (c *Config) ProviderByID(id string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			return &c.Providers[i]
		}
	}
	return nil
}

// APIKeyFor resolves a provider credential. Environment variables such as
// ANTHROPIC_API_KEY or OPENAI_API_KEY always win over the credential store.
func (c *Config) APIKeyFor(providerID string) string {
	envKey := strings.ToUpper(providerID) + "_API_KEY"
	if key := os.Getenv(envKey); key != "" {
		return key
	}
	if c.CredentialStore != nil {
		return c.CredentialStore.Get(providerID)
	}
	return ""
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("TKTA_PROVIDER"); p != "" {
		c.DefaultProvider = p
	}
	if m := os.Getenv("TKTA_MODEL"); m != "" {
		c.DefaultModel = m
	}
	if u := os.Getenv("TKTA_API_URL"); u != "" {
		c.BaseURL = u
	}
	if d := os.Getenv("TKTA_DATA_DIR"); d != "" {
		c.DataDirectory = d
	}
	if a := os.Getenv("TKTA_HTTP_ADDR"); a != "" {
		c.HTTPAddr = a
	}
	if s := os.Getenv("TKTA_STORAGE"); s != "" {
		c.StorageBackend = s
	}
}

func CheckDebug() bool {
	debug := os.Getenv("TKTA_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log can contain prompt and session fragments
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	Debug = true

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (TKTA_DEBUG=%s) ===", os.Getenv("TKTA_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/tkta",
		DefaultProvider: "anthropic",
		HTTPAddr:        ":3001",
		StorageBackend:  "file",
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg.DefaultProvider != "" {
		cfg.DefaultProvider = userCfg.DefaultProvider
	}
	cfg.DefaultModel = userCfg.DefaultModel
	cfg.Providers = userCfg.Providers
	if userCfg.HTTP.ListenAddr != "" {
		cfg.HTTPAddr = userCfg.HTTP.ListenAddr
	}
	if userCfg.Storage.Backend != "" {
		cfg.StorageBackend = userCfg.Storage.Backend
	}

	// env wins over both config layers
	cfg.applyEnvOverrides()

	if pc := cfg.ProviderByID(cfg.DefaultProvider); pc != nil {
		if cfg.DefaultModel == "" {
			cfg.DefaultModel = pc.DefaultModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = pc.BaseURL
		}
	}

	store := NewCredentialStore()
	if err := store.Load(dataDir); err != nil {
		if DebugLog != nil {
			DebugLog.Printf("[Config] credential load failed: %v", err)
		}
	}
	cfg.CredentialStore = store

	return cfg, nil
}
