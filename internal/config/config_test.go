package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8443", cfg.Bot.Addr())
	assert.Equal(t, 30*time.Second, cfg.Bot.RequestTimeout)
	assert.Equal(t, "temp_orders", cfg.WorkDir)
	assert.Equal(t, "Report_{timestamp}_{user}.xlsx", cfg.ReportNameFormat)
	assert.Equal(t, 4, cfg.MaxConcurrentDownloads)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_MissingFileIsSkipped(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "config.yaml"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, "temp_orders", cfg.WorkDir)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bot:
  token: file-token
  webhook_url: https://file.example.com
  port: 9000
  request_timeout: 45s
work_dir: /var/orders
log_level: debug
`), 0644))

	cfg, err := load(path, env(map[string]string{
		"TELEGRAM_TOKEN": "env-token",
		"PORT":           "8080",
	}))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "https://file.example.com", cfg.Bot.WebhookURL)
	assert.Equal(t, 8080, cfg.Bot.Port)
	assert.Equal(t, 45*time.Second, cfg.Bot.RequestTimeout)
	assert.Equal(t, "/var/orders", cfg.WorkDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://file.example.com/env-token", cfg.Bot.WebhookEndpoint())
}

func TestLoad_MalformedInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bot: [unclosed"), 0644))

	_, err := load(path, env(nil))
	assert.Error(t, err)

	_, err = load("", env(map[string]string{"PORT": "eighty"}))
	assert.Error(t, err)
}

func TestValidateBot(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)

	err = cfg.ValidateBot()
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.ErrorIs(t, err, ErrMissingWebhookURL)

	cfg.Bot.Token = "123:abc"
	err = cfg.ValidateBot()
	assert.NotErrorIs(t, err, ErrMissingToken)
	assert.ErrorIs(t, err, ErrMissingWebhookURL)

	cfg.Bot.WebhookURL = "https://bot.example.com/"
	assert.NoError(t, cfg.ValidateBot())
	assert.Equal(t, "https://bot.example.com/123:abc", cfg.Bot.WebhookEndpoint())
}
