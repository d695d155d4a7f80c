package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Data     DataConfig     `yaml:"data"`
	Classify ClassifyConfig `yaml:"classify"`
	Recap    RecapConfig    `yaml:"recap"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DataConfig locates the JSON table files exchanged between pipeline
// stages.
type DataConfig struct {
	ItemsPath        string `yaml:"items_path"`
	UsersPath        string `yaml:"users_path"`
	ConsumptionsPath string `yaml:"consumptions_path"`
	CachePath        string `yaml:"cache_path"`
	GlobalRecapPath  string `yaml:"global_recap_path"`
	UserRecapsPath   string `yaml:"user_recaps_path"`
}

// ClassifyConfig configures the live item classifier. It stays disabled
// until an API key is provided; cached classifications are always used.
type ClassifyConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Provider   string `yaml:"provider"` // "gemini" or "openai"
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	RateDelay  string `yaml:"rate_delay"`
	MaxRetries int    `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
}

// ParseRateDelay returns the inter-call delay as time.Duration.
func (c ClassifyConfig) ParseRateDelay() time.Duration {
	d, err := time.ParseDuration(c.RateDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// ParseRetryDelay returns the delay between retry attempts.
func (c ClassifyConfig) ParseRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// RecapConfig configures recap generation.
type RecapConfig struct {
	TopItems      int    `yaml:"top_items"`
	TopCategories int    `yaml:"top_categories"`
	WeekAnchor    string `yaml:"week_anchor"`
}

// ParseWeekAnchor returns the week anchor as a weekday, defaulting to
// Monday on unknown values.
func (r RecapConfig) ParseWeekAnchor() time.Weekday {
	switch strings.ToLower(r.WeekAnchor) {
	case "sunday":
		return time.Sunday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	}
	return time.Monday
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./boozer.db"},
		Data: DataConfig{
			ItemsPath:        "items.json",
			UsersPath:        "users.json",
			ConsumptionsPath: "consumptions.json",
			CachePath:        "items_classified.json",
			GlobalRecapPath:  "global.json",
			UserRecapsPath:   "recaps.json",
		},
		Classify: ClassifyConfig{
			Provider:   "gemini",
			Model:      "gemini-2.0-flash",
			RateDelay:  "1s",
			MaxRetries: 3,
			RetryDelay: "1s",
		},
		Recap: RecapConfig{
			TopItems:      5,
			TopCategories: 1000,
			WeekAnchor:    "Monday",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RECAP_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Classify.APIKey = v
		cfg.Classify.Enabled = true
		cfg.Classify.Provider = "gemini"
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Classify.APIKey = v
		cfg.Classify.Enabled = true
		cfg.Classify.Provider = "openai"
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
