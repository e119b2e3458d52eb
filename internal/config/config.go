// ABOUTME: Configuration loading and parsing for the bot
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete bot configuration
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

// TelegramConfig holds the bot credential
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// OpenRouterConfig holds completion-endpoint settings
type OpenRouterConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	// Pointer so an explicit 0 is distinguishable from "not set".
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CatalogConfig carries the seed catalogs for the model registry and the
// persona list. Both tables are read-mostly reference data administered
// here rather than through bot commands.
type CatalogConfig struct {
	Models     []ModelSeed     `yaml:"models"`
	Characters []CharacterSeed `yaml:"characters"`
}

// ModelSeed is one model registry entry
type ModelSeed struct {
	ID    int64  `yaml:"id"`
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// CharacterSeed is one persona catalog entry
type CharacterSeed struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter.api_key is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.OpenRouter.TimeoutRaw != "" {
		var err error
		cfg.OpenRouter.Timeout, err = time.ParseDuration(cfg.OpenRouter.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing openrouter timeout %q: %w", cfg.OpenRouter.TimeoutRaw, err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.OpenRouter.Timeout == 0 {
		cfg.OpenRouter.Timeout = 30 * time.Second
	}
	if cfg.OpenRouter.Temperature == nil {
		temp := 0.2
		cfg.OpenRouter.Temperature = &temp
	}
	if cfg.OpenRouter.MaxTokens == 0 {
		cfg.OpenRouter.MaxTokens = 400
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
