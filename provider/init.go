package provider

import (
	"fmt"

	"tkta/config"
	"tkta/model"
)

// InitializeProviders creates provider instances for every enabled entry in
// the configuration.
//
// This function is the single entry point for provider initialization. It
// loads API keys through the config layer (environment first, credential
// store second), maps provider IDs to factory types, and degrades
// gracefully: a provider that fails to initialize is logged and skipped so
// the rest of the application can start.
//
// Returns a map of provider ID to provider instance.
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}

		baseURL := providerCfg.BaseURL
		modelName := providerCfg.DefaultModel
		if providerCfg.ID == cfg.DefaultProvider {
			if cfg.BaseURL != "" {
				baseURL = cfg.BaseURL
			}
			if cfg.DefaultModel != "" {
				modelName = cfg.DefaultModel
			}
		}

		p, err := NewProvider(Config{
			Type:    MapProviderIDToType(providerCfg.ID),
			BaseURL: baseURL,
			APIKey:  cfg.APIKeyFor(providerCfg.ID),
			Model:   modelName,
		})

		if err != nil {
			// Log and skip so the app can still start
			if config.Debug {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", providerCfg.ID, err)
			}
			continue
		}

		providers[providerCfg.ID] = p
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized provider: %s", providerCfg.ID)
		}
	}

	return providers
}

// ActiveProvider picks the configured default provider from an initialized
// map, falling back to any available provider when the default is missing.
func ActiveProvider(cfg *config.Config, providers map[string]model.Provider) (model.Provider, error) {
	if p, ok := providers[cfg.DefaultProvider]; ok {
		return p, nil
	}
	for id, p := range providers {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Default provider %s unavailable, using %s", cfg.DefaultProvider, id)
		}
		return p, nil
	}
	return nil, fmt.Errorf("no provider could be initialized; configure an API key for %s", cfg.DefaultProvider)
}
