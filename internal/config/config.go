package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

type Config struct {
	Source struct {
		Kind            string        `yaml:"kind"`
		Locator         string        `yaml:"locator"`
		Tab             string        `yaml:"tab"`
		CredentialsFile string        `yaml:"credentials_file"`
		Credentials     string        `yaml:"credentials"` // inline service-account JSON
		BaseURL         string        `yaml:"base_url"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"source"`
	Server struct {
		Port            string        `yaml:"port"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		RefreshBurst    int           `yaml:"refresh_burst"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load layers configuration: embedded defaults, then the YAML file at path
// (optional), then environment variables. A .env file in the working
// directory is loaded first and never overrides variables already set.
// References like ${VAR} inside YAML are expanded from the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(defaultsYAML))), cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DEAL_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("GOOGLE_SHEET_URL"); v != "" {
		cfg.Source.Locator = v
	}
	if v := os.Getenv("GOOGLE_SHEET_TAB"); v != "" {
		cfg.Source.Tab = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		cfg.Source.CredentialsFile = v
	}
	if v := os.Getenv("GCP_SERVICE_ACCOUNT"); v != "" {
		cfg.Source.Credentials = v
	}
	if v := os.Getenv("SHEETS_API_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SOURCE_TIMEOUT: %w", err)
		}
		cfg.Source.Timeout = d
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		cfg.Server.RefreshInterval = d
	}
	if v := os.Getenv("REFRESH_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_BURST: %w", err)
		}
		cfg.Server.RefreshBurst = n
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	cfg.Source.Locator = strings.TrimSpace(cfg.Source.Locator)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would break startup. A missing locator is
// allowed here; it is reported when deals are first fetched.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "sheets", "published", "csv":
	default:
		return fmt.Errorf("source.kind must be sheets, published or csv, got %q", c.Source.Kind)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	if c.Server.RefreshBurst < 1 {
		return fmt.Errorf("server.refresh_burst must be at least 1")
	}
	if c.Server.RefreshInterval < 0 {
		return fmt.Errorf("server.refresh_interval must not be negative")
	}
	return nil
}

// Credentials returns the service-account key, preferring inline JSON over
// the credentials file. It returns nil when neither is configured; the bytes
// are passed on untouched.
func (c *Config) Credentials() ([]byte, error) {
	if inline := strings.TrimSpace(c.Source.Credentials); inline != "" {
		return []byte(inline), nil
	}
	if c.Source.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Source.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return data, nil
}

// splitCSV splits a comma-separated value into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
