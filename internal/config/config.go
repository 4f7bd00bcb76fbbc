package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the proxy and the viewer need.
type Config struct {
	Astra   AstraConfig   `yaml:"astra"`
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
}

// AstraConfig describes the upstream REST interface.
// None of these are validated; a bad value surfaces on the first request.
type AstraConfig struct {
	DatabaseID string `yaml:"database_id"`
	Region     string `yaml:"region"`
	Token      string `yaml:"application_token"`
	Keyspace   string `yaml:"keyspace"`

	// BaseURL replaces the https://{id}-{region}.apps.astra.datastax.com host,
	// e.g. for a self-hosted Stargate.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each outbound call. Zero means no deadline.
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP proxy.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// StrictErrors turns upstream failures into 502 + JSON instead of
	// 200 + "Exception: ..." text.
	StrictErrors bool `yaml:"strict_errors"`

	// AllowOrigin is echoed in Access-Control-Allow-Origin. Empty disables CORS.
	AllowOrigin string `yaml:"allow_origin"`
}

// DisplayConfig configures the terminal viewer.
type DisplayConfig struct {
	URL string `yaml:"url"`
}

const (
	DefaultAddr       = ":9000"
	DefaultDisplayURL = "http://localhost:9000/getTodos"
	DefaultDotEnv     = ".env"
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			AllowOrigin: "*",
		},
		Display: DisplayConfig{
			URL: DefaultDisplayURL,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, the .env file in
// the working directory and finally the process environment.
// A missing file at path is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := loadDotEnv(DefaultDotEnv); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ASTRA_DB_ID"); v != "" {
		c.Astra.DatabaseID = v
	}
	if v := os.Getenv("ASTRA_DB_REGION"); v != "" {
		c.Astra.Region = v
	}
	if v := os.Getenv("ASTRA_DB_APPLICATION_TOKEN"); v != "" {
		c.Astra.Token = v
	}
	if v := os.Getenv("ASTRA_DB_KEYSPACE"); v != "" {
		c.Astra.Keyspace = v
	}
	if v := os.Getenv("ASTRA_BASE_URL"); v != "" {
		c.Astra.BaseURL = v
	}
	if v := os.Getenv("TODO_LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	c.Astra.Token = stripBearer(strings.TrimSpace(c.Astra.Token))
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
