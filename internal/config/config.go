// Package config loads client configuration.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. BACKOFFICE_CONFIG;
//  3. ./backoffice.yaml;
//  4. env only.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	API API `yaml:"api"`
	UI  UI  `yaml:"ui"`
}

// API describes the backend the console talks to.
type API struct {
	BaseURL string        `yaml:"base_url" env:"BACKOFFICE_API_URL" env-default:"http://localhost:5000/api/v1"`
	Timeout time.Duration `yaml:"timeout" env:"BACKOFFICE_API_TIMEOUT" env-default:"15s"`
}

// UI holds list/search defaults shared by the TUI and the CLI.
type UI struct {
	PageSize       int           `yaml:"page_size" env:"BACKOFFICE_PAGE_SIZE" env-default:"10"`
	SearchDebounce time.Duration `yaml:"search_debounce" env:"BACKOFFICE_SEARCH_DEBOUNCE" env-default:"500ms"`
}

// MustLoad panics on load failure; intended for main().
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}
	if envPath := os.Getenv("BACKOFFICE_CONFIG"); envPath != "" {
		return tryRead(envPath)
	}
	if _, err := os.Stat("backoffice.yaml"); err == nil {
		return tryRead("backoffice.yaml")
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config from env failed: %w", err)
	}
	return &cfg, nil
}
