package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	DBPath        string `yaml:"db_path,omitempty"`
	Dev           bool   `yaml:"dev,omitempty"`
	UserCacheSize int    `yaml:"user_cache_size,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pt", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// loadEnv reads a .env file from the working directory, if there is one.
// Variables already set in the environment win.
func loadEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// loadSettings merges the config file, the environment and the global
// flags, in increasing order of precedence.
func loadSettings(devFlagSet bool) (CLIConfig, error) {
	if err := loadEnv(); err != nil {
		return CLIConfig{}, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return CLIConfig{}, err
	}

	if v := os.Getenv("PT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PT_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return CLIConfig{}, fmt.Errorf("invalid PT_DEV %q: %w", v, err)
		}
		cfg.Dev = dev
	}

	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if devFlagSet {
		cfg.Dev = flagDev
	}

	return cfg, nil
}
