package main

import (
	"fmt"

	"github.com/jonathan/worker-profile-wizard/internal/config"
	"github.com/jonathan/worker-profile-wizard/internal/schemas"
)

// loadConfig builds the effective configuration: the optional JSON file,
// then defaults for unset fields, then environment overrides.
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}

	// The schema path is repository-relative; resolve it from the working directory.
	if resolved := schemas.ResolveSchemaPath(cfg.ProfileSchema); resolved != "" {
		cfg.ProfileSchema = resolved
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
