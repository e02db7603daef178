package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"netrender/networkd"
)

// Config represents the application configuration
type Config struct {
	Render RenderConfig `toml:"render"`
	Ledger LedgerConfig `toml:"ledger"`
}

// RenderConfig contains the renderer and writer settings
type RenderConfig struct {
	NetworkDir  string `toml:"network_dir"`  // Where unit files are written
	FileOwner   string `toml:"file_owner"`   // User/group owning written files
	ResolveConf string `toml:"resolve_conf"` // systemd-resolved config path
}

// LedgerConfig contains settings for the optional render ledger
type LedgerConfig struct {
	Database string `toml:"database"` // SQLite database path; empty disables the ledger
}

// Default returns the configuration used when no config file is present
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			NetworkDir:  networkd.DefaultNetworkDir,
			FileOwner:   networkd.DefaultFileOwner,
			ResolveConf: networkd.DefaultResolveConfPath,
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Set defaults
	if config.Render.NetworkDir == "" {
		config.Render.NetworkDir = networkd.DefaultNetworkDir
	}
	if config.Render.FileOwner == "" {
		config.Render.FileOwner = networkd.DefaultFileOwner
	}
	if config.Render.ResolveConf == "" {
		config.Render.ResolveConf = networkd.DefaultResolveConfPath
	}

	return &config, nil
}

// GenerateDefaultConfig creates a default configuration file
func GenerateDefaultConfig(path string) error {
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
