// Package config loads config.yaml with viper and secrets from the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/devotional/internal/generate"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

// FileName is the configuration file inside the config directory.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides of config keys, for example
// DEVOTIONAL_LISTEN_ADDR or DEVOTIONAL_GENERATION_MODEL.
const EnvPrefix = "DEVOTIONAL"

// Generation configures the text and image generators.
type Generation struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	Model       string `mapstructure:"model" yaml:"model"`
	MaxTokens   int64  `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxRetries  int    `mapstructure:"max_retries" yaml:"max_retries"`
	ImageURL    string `mapstructure:"image_url" yaml:"image_url,omitempty"`
	ImageWidth  int    `mapstructure:"image_width" yaml:"image_width"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height"`
}

// Schedule configures where verse schedules are imported from.
type Schedule struct {
	CSVURL string `mapstructure:"csv_url" yaml:"csv_url,omitempty"`
}

// Secrets are read from the environment only and never written to disk.
type Secrets struct {
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	ImportSecret     string `env:"DEVOTIONAL_IMPORT_SECRET"`
	OTelEndpoint     string `env:"DEVOTIONAL_OTEL_ENDPOINT"`
	Environment      string `env:"DEVOTIONAL_ENV" envDefault:"development"`
}

// Config is the resolved service configuration.
type Config struct {
	Backend        string     `mapstructure:"backend" yaml:"backend"`
	DataDir        string     `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Timezone       string     `mapstructure:"timezone" yaml:"timezone"`
	ListenAddr     string     `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel       string     `mapstructure:"log_level" yaml:"log_level"`
	DedupeInflight bool       `mapstructure:"dedupe_inflight" yaml:"dedupe_inflight"`
	Generation     Generation `mapstructure:"generation" yaml:"generation"`
	Schedule       Schedule   `mapstructure:"schedule" yaml:"schedule,omitempty"`

	Secrets Secrets `mapstructure:"-" yaml:"-"`
}

// Default returns the configuration used when config.yaml sets nothing.
func Default() Config {
	return Config{
		Backend:    types.BackendSQLite,
		Timezone:   "UTC",
		ListenAddr: ":8080",
		LogLevel:   "info",
		Generation: Generation{
			BaseURL:     generate.DefaultBaseURL,
			Model:       generate.DefaultModel,
			MaxTokens:   generate.DefaultMaxTokens,
			MaxRetries:  2,
			ImageWidth:  generate.DefaultImageWidth,
			ImageHeight: generate.DefaultImageHeight,
		},
	}
}

// Load reads configDir/config.yaml, writing a default file on first run, then
// applies DEVOTIONAL_* overrides and reads secrets from the environment.
func Load(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := WriteIfMissing(filepath.Join(configDir, FileName), Default()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(filepath.Join(configDir, FileName))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := ParseEnv(&cfg.Secrets); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("backend", d.Backend)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("dedupe_inflight", d.DedupeInflight)
	v.SetDefault("generation.base_url", d.Generation.BaseURL)
	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	v.SetDefault("generation.max_retries", d.Generation.MaxRetries)
	v.SetDefault("generation.image_url", d.Generation.ImageURL)
	v.SetDefault("generation.image_width", d.Generation.ImageWidth)
	v.SetDefault("generation.image_height", d.Generation.ImageHeight)
	v.SetDefault("schedule.csv_url", d.Schedule.CSVURL)
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// WriteIfMissing writes cfg to path as YAML unless the file already exists.
func WriteIfMissing(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte("# devotional service configuration\n"), data...), 0o644)
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if err := c.StoreConfig(c.DataDir).Validate(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("generation.max_tokens must not be negative")
	}
	return nil
}

// StoreConfig returns the storage configuration rooted at dataDir.
func (c Config) StoreConfig(dataDir string) types.Config {
	return types.Config{Backend: c.Backend, DataDir: dataDir}
}

// Location returns the time zone that decides the schedule date.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Production reports whether DEVOTIONAL_ENV selects production behavior.
func (c Config) Production() bool {
	return strings.EqualFold(c.Secrets.Environment, "production")
}
