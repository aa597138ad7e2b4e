// Package boot provides runtime configuration and dependency wiring for the relay.
package boot

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sellerping/sellerping/internal/config"
)

// RuntimeConfig holds parsed runtime settings built from the TOML config.
// Secrets and toggles may be overridden by environment variables, so the
// service can run without a config file at all (the original deployment
// target was a PaaS with env-only configuration).
type RuntimeConfig struct {
	ServerAddr string

	AvitoClientID     string
	AvitoClientSecret string
	AvitoBaseURL      string
	AvitoTokenURL     string
	AvitoAccountID    int64
	WebhookSecret     string

	TelegramBotToken string
	TelegramChatID   int64
	SlackToken       string
	SlackChannel     string

	DedupTTL      time.Duration
	ReplyCooldown time.Duration
	ReplyText     string
	ForwardRaw    bool
	ForceReply    bool
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	dedupTTL, err := time.ParseDuration(cfg.Relay.DedupTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid dedup ttl: %w", err)
	}
	replyCooldown, err := time.ParseDuration(cfg.Relay.ReplyCooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid reply cooldown: %w", err)
	}

	ret := &RuntimeConfig{
		ServerAddr:        cfg.Server.Addr,
		AvitoClientID:     cfg.Avito.ClientID,
		AvitoClientSecret: cfg.Avito.ClientSecret,
		AvitoBaseURL:      cfg.Avito.BaseURL,
		AvitoTokenURL:     cfg.Avito.TokenURL,
		AvitoAccountID:    cfg.Avito.AccountID,
		WebhookSecret:     cfg.Avito.WebhookSecret,
		TelegramBotToken:  cfg.Telegram.BotToken,
		TelegramChatID:    cfg.Telegram.ChatID,
		SlackToken:        cfg.Slack.Token,
		SlackChannel:      cfg.Slack.Channel,
		DedupTTL:          dedupTTL,
		ReplyCooldown:     replyCooldown,
		ReplyText:         cfg.Relay.ReplyText,
		ForwardRaw:        cfg.Relay.ForwardRaw,
		ForceReply:        cfg.Relay.ForceReply,
	}

	applyString := func(name string, dst *string) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			*dst = value
		}
	}
	applyString("HTTP_ADDR", &ret.ServerAddr)
	applyString("AVITO_CLIENT_ID", &ret.AvitoClientID)
	applyString("AVITO_CLIENT_SECRET", &ret.AvitoClientSecret)
	applyString("AVITO_BASE_URL", &ret.AvitoBaseURL)
	applyString("AVITO_TOKEN_URL", &ret.AvitoTokenURL)
	applyString("WEBHOOK_SECRET", &ret.WebhookSecret)
	applyString("TELEGRAM_BOT_TOKEN", &ret.TelegramBotToken)
	applyString("SLACK_TOKEN", &ret.SlackToken)
	applyString("SLACK_CHANNEL", &ret.SlackChannel)
	applyString("REPLY_TEXT", &ret.ReplyText)

	if value := strings.TrimSpace(os.Getenv("AVITO_ACCOUNT_ID")); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid AVITO_ACCOUNT_ID: %w", err)
		}
		ret.AvitoAccountID = id
	}
	if value := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		ret.TelegramChatID = id
	}
	if value := strings.TrimSpace(os.Getenv("FORWARD_RAW")); value != "" {
		ret.ForwardRaw = isTruthy(value)
	}
	if value := strings.TrimSpace(os.Getenv("FORCE_REPLY")); value != "" {
		ret.ForceReply = isTruthy(value)
	}

	return ret, nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
