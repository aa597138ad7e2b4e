// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath    = "config.toml"
	DefaultHTTPAddr      = ":8080"
	DefaultAvitoBaseURL  = "https://api.avito.ru"
	DefaultAvitoTokenURL = "https://api.avito.ru/token"
	DefaultDedupTTL      = "10m"
	DefaultReplyCooldown = "12h"
	DefaultReplyText     = "Здравствуйте! Я увидел ваше сообщение и отвечу в ближайшее время."
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Avito    AvitoConfig    `toml:"avito"`
	Telegram TelegramConfig `toml:"telegram"`
	Slack    SlackConfig    `toml:"slack"`
	Relay    RelayConfig    `toml:"relay"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AvitoConfig holds upstream API credentials and endpoints.
// A zero AccountID means the account is resolved via the API on first use.
type AvitoConfig struct {
	ClientID      string `toml:"client_id"`
	ClientSecret  string `toml:"client_secret"`
	BaseURL       string `toml:"base_url"`
	TokenURL      string `toml:"token_url"`
	AccountID     int64  `toml:"account_id"`
	WebhookSecret string `toml:"webhook_secret"`
}

// TelegramConfig holds the operator notification bot credentials.
// Telegram notifications are disabled when BotToken is empty.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
}

// SlackConfig holds the optional Slack notification credentials.
// Slack notifications are disabled when Token is empty.
type SlackConfig struct {
	Token   string `toml:"token"`
	Channel string `toml:"channel"`
}

// RelayConfig holds the event pipeline tuning knobs.
type RelayConfig struct {
	DedupTTL      string `toml:"dedup_ttl"`
	ReplyCooldown string `toml:"reply_cooldown"`
	ReplyText     string `toml:"reply_text"`
	ForwardRaw    bool   `toml:"forward_raw"`
	ForceReply    bool   `toml:"force_reply"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
// A missing file is not an error; defaults plus environment overrides still apply.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Avito: AvitoConfig{
			BaseURL:  DefaultAvitoBaseURL,
			TokenURL: DefaultAvitoTokenURL,
		},
		Relay: RelayConfig{
			DedupTTL:      DefaultDedupTTL,
			ReplyCooldown: DefaultReplyCooldown,
			ReplyText:     DefaultReplyText,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
