package config

import (
	"os"
	"path/filepath"

	"github.com/veldtlabs/websnap/internal/infra/confloader"
)

// CLIConfig is the configuration for the websnap CLI.
type CLIConfig struct {
	Store struct {
		Dir            string `koanf:"dir"`
		RetentionCount int    `koanf:"retention_count"`
		RetentionDays  int    `koanf:"retention_days"`
		Algorithm      string `koanf:"algorithm"`
	} `koanf:"store"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	Output string `koanf:"output"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	cfg := &CLIConfig{}
	cfg.Store.Dir = defaultStoreDir()
	cfg.Store.RetentionCount = 5
	cfg.Store.RetentionDays = 7
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Output = "table"
	return cfg
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".websnap", "config.yaml")
}

func defaultStoreDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".websnap", "snapshots")
}

// Load loads configuration from the file at path (when it exists) and
// the environment, on top of the defaults.
func Load(path string) (*CLIConfig, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}
	opts := []confloader.Option{}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
