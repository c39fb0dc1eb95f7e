package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all omnitrace configuration.
type Config struct {
	DataDir string `toml:"data_dir"`

	CognitiveMode    string `toml:"cognitive_mode"`
	IntelligenceMode string `toml:"intelligence_mode"`
	Scope            string `toml:"scope"`

	IdleTimeoutSeconds int `toml:"idle_timeout_seconds"`

	Export  ExportConfig  `toml:"export"`
	Logging LoggingConfig `toml:"logging"`
}

type ExportConfig struct {
	Compress bool `toml:"compress"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:            "~/.local/share/omnitrace",
		CognitiveMode:      "focus",
		IntelligenceMode:   "explain",
		Scope:              "today",
		IdleTimeoutSeconds: 60,
		Export: ExportConfig{
			Compress: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "omnitrace", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "omnitrace", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
