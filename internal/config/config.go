// =============================================================================
// Order Report Bot - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Defaults
//   2. YAML file (config.yaml, optional)
//   3. Environment variables
//
// ENVIRONMENT VARIABLES:
//   TELEGRAM_TOKEN  - bot credential (required by serve)
//   WEBHOOK_URL     - public base URL the chat platform calls (required by serve)
//   PORT            - listen port
//   WORK_DIR        - working area for artifacts and reports
//   LOG_LEVEL       - debug, info, warn, error
//   LOG_FORMAT      - json or console
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingToken is returned when no bot credential is configured.
	ErrMissingToken = errors.New("TELEGRAM_TOKEN is missing")

	// ErrMissingWebhookURL is returned when no public callback URL is configured.
	ErrMissingWebhookURL = errors.New("WEBHOOK_URL must be defined")
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Bot holds the chat transport settings.
	Bot BotConfig `yaml:"bot"`

	// WorkDir is the working area for uploaded artifacts and generated reports.
	// Default: "temp_orders"
	WorkDir string `yaml:"work_dir"`

	// ReportNameFormat is the name of generated reports.
	// Placeholders: {timestamp}, {date}, {time}, {uuid}, {user}
	// Default: "Report_{timestamp}_{user}.xlsx"
	ReportNameFormat string `yaml:"report_name_format"`

	// MaxConcurrentDownloads bounds parallel artifact downloads.
	// Default: 4
	MaxConcurrentDownloads int `yaml:"max_concurrent_downloads"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "json" or "console".
	// Default: "json"
	LogFormat string `yaml:"log_format"`
}

// BotConfig holds the chat transport settings.
type BotConfig struct {
	// Token is the bot credential. It is also the secret webhook path.
	Token string `yaml:"token"`

	// WebhookURL is the public base URL; updates arrive at {WebhookURL}/{Token}.
	WebhookURL string `yaml:"webhook_url"`

	// ListenHost is the interface to bind to.
	// Default: "0.0.0.0"
	ListenHost string `yaml:"listen_host"`

	// Port is the port to listen on.
	// Default: 8443
	Port int `yaml:"port"`

	// RequestTimeout bounds calls to the chat platform API.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address in host:port format.
func (b BotConfig) Addr() string {
	return b.ListenHost + ":" + strconv.Itoa(b.Port)
}

// WebhookPath returns the secret URL path updates are posted to.
func (b BotConfig) WebhookPath() string {
	return "/" + b.Token
}

// WebhookEndpoint returns the full URL registered with the chat platform.
func (b BotConfig) WebhookEndpoint() string {
	return strings.TrimRight(b.WebhookURL, "/") + b.WebhookPath()
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load builds the configuration from defaults, the YAML file at path and the
// environment.
//
// PARAMETERS:
//   - path: The YAML file. An empty path or a missing file is skipped.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read or parsed, or an environment value
//     is malformed.
//
// Bot credentials are not checked here; call ValidateBot before serving.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Environment-only deployments have no file.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("TELEGRAM_TOKEN"); ok && v != "" {
		cfg.Bot.Token = v
	}
	if v, ok := lookup("WEBHOOK_URL"); ok && v != "" {
		cfg.Bot.WebhookURL = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Bot.Port = port
	}
	if v, ok := lookup("WORK_DIR"); ok && v != "" {
		cfg.WorkDir = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Bot.ListenHost == "" {
		cfg.Bot.ListenHost = "0.0.0.0"
	}
	if cfg.Bot.Port == 0 {
		cfg.Bot.Port = 8443
	}
	if cfg.Bot.RequestTimeout == 0 {
		cfg.Bot.RequestTimeout = 30 * time.Second
	}
	if cfg.Bot.ShutdownTimeout == 0 {
		cfg.Bot.ShutdownTimeout = 10 * time.Second
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "temp_orders"
	}
	if cfg.ReportNameFormat == "" {
		cfg.ReportNameFormat = "Report_{timestamp}_{user}.xlsx"
	}
	if cfg.MaxConcurrentDownloads == 0 {
		cfg.MaxConcurrentDownloads = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
}

// ValidateBot checks the settings the webhook bot cannot start without.
func (c *Config) ValidateBot() error {
	var errs []error
	if strings.TrimSpace(c.Bot.Token) == "" {
		errs = append(errs, ErrMissingToken)
	}
	if strings.TrimSpace(c.Bot.WebhookURL) == "" {
		errs = append(errs, ErrMissingWebhookURL)
	}
	if c.Bot.Port <= 0 || c.Bot.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Bot.Port))
	}
	return errors.Join(errs...)
}
