package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Control   ControlConfig   `yaml:"control"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains remote backend settings
type ServerConfig struct {
	Origin         string `yaml:"origin"`     // e.g. https://api.example.com
	Token          string `yaml:"token"`      // bearer credential, opaque
	TokenFile      string `yaml:"token_file"` // read instead when token is empty
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DatabaseConfig contains local sqlite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ControlConfig contains the local control API settings
type ControlConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	FullSync          string `yaml:"full_sync"`
	EvaluateReminders string `yaml:"evaluate_reminders"`
	RetryPushes       string `yaml:"retry_pushes"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("SERVER_ORIGIN"); val != "" {
		c.Server.Origin = val
	}
	if val := os.Getenv("SERVER_TOKEN"); val != "" {
		c.Server.Token = val
	}
	if val := os.Getenv("SERVER_TOKEN_FILE"); val != "" {
		c.Server.TokenFile = val
	}
	if val := os.Getenv("SERVER_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.TimeoutSeconds)
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("CONTROL_HOST"); val != "" {
		c.Control.Host = val
	}
	if val := os.Getenv("CONTROL_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Control.Port)
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid and applies defaults
func (c *Config) Validate() error {
	if c.Server.Origin == "" {
		return fmt.Errorf("server origin is required")
	}
	if !strings.HasPrefix(c.Server.Origin, "http://") && !strings.HasPrefix(c.Server.Origin, "https://") {
		return fmt.Errorf("server origin must be an http(s) URL: %s", c.Server.Origin)
	}
	if c.Server.Token == "" && c.Server.TokenFile == "" {
		return fmt.Errorf("server token (or token file) is required")
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Server.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid server timeout: %d", c.Server.TimeoutSeconds)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Control.Host == "" {
		c.Control.Host = "127.0.0.1"
	}
	if c.Control.Port == 0 {
		c.Control.Port = 7410
	}
	if c.Control.Port < 0 || c.Control.Port > 65535 {
		return fmt.Errorf("invalid control port: %d", c.Control.Port)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.FullSync == "" {
		c.Scheduler.FullSync = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.EvaluateReminders == "" {
		c.Scheduler.EvaluateReminders = "0 * * * * *" // every minute
	}
	if c.Scheduler.RetryPushes == "" {
		c.Scheduler.RetryPushes = "0 */5 * * * *" // every 5 minutes
	}

	return nil
}

// BearerToken resolves the bearer credential, reading the token file when
// no inline token is configured.
func (c *Config) BearerToken() (string, error) {
	if c.Server.Token != "" {
		return c.Server.Token, nil
	}
	data, err := os.ReadFile(c.Server.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// GetControlAddress returns the control API listen address
func (c *Config) GetControlAddress() string {
	return fmt.Sprintf("%s:%d", c.Control.Host, c.Control.Port)
}
