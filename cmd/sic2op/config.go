package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig holds defaults read from the environment. Flags always win
// over environment values.
type envConfig struct {
	// Vault is the default 1Password vault name or ID.
	Vault string `env:"SIC2OP_VAULT"`

	// Category is the default item category.
	Category string `env:"SIC2OP_CATEGORY"`

	// AttachmentsDir is the default attachments directory.
	AttachmentsDir string `env:"SIC2OP_ATTACHMENTS_DIR"`

	// OpPath overrides the op binary path.
	OpPath string `env:"SIC2OP_OP_PATH"`
}

// loadEnvConfig populates an envConfig from environment variables.
func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("failed to read environment config: %w", err)
	}
	return cfg, nil
}
