// Package config loads and persists the application configuration:
// backend endpoint, active theme, and default training parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appDirName = "neurasect"

// Config is the persisted application configuration. The theme field is
// written back on every change; everything else is read at startup.
type Config struct {
	ServerURL string         `yaml:"server_url"`
	Theme     string         `yaml:"theme"`
	DBPath    string         `yaml:"db_path"`
	Training  TrainingConfig `yaml:"training"`
}

// TrainingConfig holds the form's initial parameter values.
type TrainingConfig struct {
	NumLayers          int     `yaml:"num_layers"`
	NumNeurons         int     `yaml:"num_neurons"`
	LearningRate       float64 `yaml:"learning_rate"`
	RegularizationRate float64 `yaml:"regularization_rate"`
	TrainTestSplit     float64 `yaml:"train_test_split"`
	Epochs             int     `yaml:"epochs"`
	BatchSize          int     `yaml:"batch_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerURL: "http://127.0.0.1:8000",
		Theme:     "sky",
		DBPath:    defaultDBPath(),
		Training: TrainingConfig{
			NumLayers:          2,
			NumNeurons:         8,
			LearningRate:       0.01,
			RegularizationRate: 0.001,
			TrainTestSplit:     0.8,
			Epochs:             100,
			BatchSize:          32,
		},
	}
}

// Load reads the config file at path, applying defaults for absent
// fields. A missing file yields the defaults. A NEURASECT_SERVER_URL
// environment variable (optionally via a .env file in the working
// directory) overrides the configured endpoint.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	if url := os.Getenv("NEURASECT_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DefaultPath returns the per-user config file location, respecting
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appDirName, "config.yaml")
	}
	return filepath.Join(home, ".config", appDirName, "config.yaml")
}

// defaultDBPath returns the per-user asset database location, respecting
// XDG_DATA_HOME.
func defaultDBPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDirName, "assets.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appDirName, "assets.db")
	}
	return filepath.Join(home, ".local", "share", appDirName, "assets.db")
}
