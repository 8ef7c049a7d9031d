package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"github.com/CTAG07/Cadenza/pkg/chord"
	"github.com/CTAG07/Cadenza/pkg/markov"
	"github.com/CTAG07/Cadenza/pkg/templating"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
)

// Environment variables read after the optional .env file is loaded.
const (
	envConfigPath  = "CADENZA_CONFIG"
	envDatabase    = "CADENZA_DB"
	envLogLevel    = "CADENZA_LOG_LEVEL"
	envTemperature = "CADENZA_TEMPERATURE"
)

const defaultConfigPath = "./cadenza.json"

// CLIConfig holds settings for the command line tool itself.
type CLIConfig struct {
	LogLevel     string `json:"log_level"`
	DatabasePath string `json:"database_path"`
}

// GenerationConfig holds the defaults for the generation commands.
type GenerationConfig struct {
	Temperature   float64 `json:"temperature"`
	ZeroThreshold float64 `json:"zero_threshold"`
	Seed          uint64  `json:"seed"` // 0 picks a new seed for every run
}

// TokenizerConfig controls how progression text is split into chords.
type TokenizerConfig struct {
	Separator    string `json:"separator"`
	SplitRegex   string `json:"split_regex"`
	CommentRegex string `json:"comment_regex"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	CLI        *CLIConfig                 `json:"cli_config"`
	Generation *GenerationConfig          `json:"generation_config"`
	Tokenizer  *TokenizerConfig           `json:"tokenizer_config"`
	Templates  *templating.TemplateConfig `json:"template_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	templates := templating.DefaultConfig()
	return &Config{
		CLI: &CLIConfig{
			LogLevel:     "warn",
			DatabasePath: "./cadenza.db",
		},
		Generation: &GenerationConfig{
			Temperature:   1.0,
			ZeroThreshold: markov.DefaultZeroThreshold,
			Seed:          0,
		},
		Tokenizer: &TokenizerConfig{
			Separator:    " ",
			SplitRegex:   `[^,|\s]+`,
			CommentRegex: `^\s*#`,
		},
		Templates: &templates,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err = SaveConfig(path, config); err != nil {
				// The defaults are still usable, so only warn.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.fillDefaults()
	return config, nil
}

// fillDefaults replaces sections set to null in the file with their defaults.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.CLI == nil {
		c.CLI = defaults.CLI
	}
	if c.Generation == nil {
		c.Generation = defaults.Generation
	}
	if c.Tokenizer == nil {
		c.Tokenizer = defaults.Tokenizer
	}
	if c.Templates == nil {
		c.Templates = defaults.Templates
	}
}

// SaveConfig writes the configuration to path, replacing the file atomically.
func SaveConfig(path string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// loadEnv loads a .env file from the working directory if there is one.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// configPath resolves the config file location: flag, then environment, then default.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return defaultConfigPath
}

// applyEnv overrides config values with the CADENZA_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv(envDatabase); v != "" {
		c.CLI.DatabasePath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.CLI.LogLevel = v
	}
	if v := os.Getenv(envTemperature); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envTemperature, err)
		}
		c.Generation.Temperature = t
	}
	return nil
}

// newTokenizer builds the chord tokenizer described by the config.
func (c *Config) newTokenizer() (*chord.Tokenizer, error) {
	var opts []chord.Option
	if c.Tokenizer.Separator != "" {
		opts = append(opts, chord.WithSeparator(c.Tokenizer.Separator))
	}
	for _, r := range []struct {
		key, expr string
		opt       func(string) chord.Option
	}{
		{"split_regex", c.Tokenizer.SplitRegex, chord.WithSplitRegex},
		{"comment_regex", c.Tokenizer.CommentRegex, chord.WithCommentRegex},
	} {
		if r.expr == "" {
			continue
		}
		if _, err := regexp.Compile(r.expr); err != nil {
			return nil, fmt.Errorf("invalid tokenizer %s: %w", r.key, err)
		}
		opts = append(opts, r.opt(r.expr))
	}
	return chord.NewTokenizer(opts...), nil
}
