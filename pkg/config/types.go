package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds listen and storage settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	DBPath  string `yaml:"db_path"`
}

// GatewayConfig holds the model-gateway relay settings. The API key is
// usually supplied via the GOOGLE_API_KEY environment variable instead of
// the config file.
type GatewayConfig struct {
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"api_key"`
	Model    string   `yaml:"model"`
	Timeout  Duration `yaml:"timeout"`
}

// SecurityConfig holds CORS and rate-limit settings for the relay.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RetentionConfig configures the automatic archive runner for old chats.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Period  string `yaml:"period"`
}

// Addr returns the effective listen address, defaulting to :8080.
func (c *Config) Addr() string {
	if c.Server.Address != "" {
		return c.Server.Address
	}
	return ":8080"
}

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
