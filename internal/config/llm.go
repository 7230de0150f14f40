package config

import "github.com/skipera/skipera/internal/llm"

// Resolve builds the provider config for the oracle. An explicit api_key
// wins; otherwise the vendor key variables are checked. The boolean reports
// whether a usable key was found.
func (c LLMConfig) Resolve() (llm.Config, bool) {
	cfg := llm.DefaultConfig()
	cfg.Provider = c.Provider

	if c.APIKey != "" || c.Provider == "mock" {
		cfg = cfg.WithKey(c.APIKey).WithModel(c.Model)
		return cfg, true
	}

	if found, ok := llm.DiscoverConfig(); ok {
		if found.Provider == c.Provider {
			found = found.WithModel(c.Model)
		}
		return found, true
	}

	return cfg.WithModel(c.Model), false
}
