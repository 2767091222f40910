// Package config loads process-level settings for the fittrack CLI and server.
// User state (subscription, test mode) lives in the database, not here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel      string              `yaml:"log_level"`
	OpenFoodFacts OpenFoodFactsConfig `yaml:"openfoodfacts"`
	USDA          USDAConfig          `yaml:"usda"`
	Server        ServerConfig        `yaml:"server"`
}

type OpenFoodFactsConfig struct {
	BaseURL           string `yaml:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// USDAConfig enables FoodData Central as a fallback source. It stays off
// until an API key is configured.
type USDAConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() *Config {
	return &Config{
		LogLevel: "warn",
		OpenFoodFacts: OpenFoodFactsConfig{
			BaseURL:           "https://world.openfoodfacts.org",
			RequestsPerMinute: 10,
			TimeoutSeconds:    12,
		},
		USDA: USDAConfig{
			BaseURL:           "https://api.nal.usda.gov",
			RequestsPerMinute: 30,
			TimeoutSeconds:    12,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// FITTRACK_* environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv("FITTRACK_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_OFF_BASE_URL")); v != "" {
		c.OpenFoodFacts.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_OFF_RPM")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FITTRACK_OFF_RPM %q", v)
		}
		c.OpenFoodFacts.RequestsPerMinute = n
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_USDA_API_KEY")); v != "" {
		c.USDA.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_USDA_BASE_URL")); v != "" {
		c.USDA.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_SERVER_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("FITTRACK_ALLOWED_ORIGINS")); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	if c.OpenFoodFacts.RequestsPerMinute <= 0 {
		return fmt.Errorf("openfoodfacts.requests_per_minute must be > 0")
	}
	if c.OpenFoodFacts.TimeoutSeconds <= 0 {
		return fmt.Errorf("openfoodfacts.timeout_seconds must be > 0")
	}
	if c.USDA.RequestsPerMinute <= 0 {
		return fmt.Errorf("usda.requests_per_minute must be > 0")
	}
	if c.USDA.TimeoutSeconds <= 0 {
		return fmt.Errorf("usda.timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// WriteDefault writes the default config to path unless a file already
// exists there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config %s: %w", path, err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config %s: %w", path, err)
	}
	return true, nil
}
