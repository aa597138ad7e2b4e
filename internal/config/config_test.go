package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultAvitoBaseURL, cfg.Avito.BaseURL)
	assert.Equal(t, DefaultAvitoTokenURL, cfg.Avito.TokenURL)
	assert.Equal(t, DefaultDedupTTL, cfg.Relay.DedupTTL)
	assert.Equal(t, DefaultReplyCooldown, cfg.Relay.ReplyCooldown)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Relay.ForceReply)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"

[server]
addr = ":9090"

[avito]
client_id = "cid"
client_secret = "csec"
account_id = 31337
webhook_secret = "hush"

[telegram]
bot_token = "123:abc"
chat_id = -100200300

[relay]
reply_cooldown = "24h"
forward_raw = true
reply_text = "brb"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "cid", cfg.Avito.ClientID)
	assert.Equal(t, int64(31337), cfg.Avito.AccountID)
	assert.Equal(t, "hush", cfg.Avito.WebhookSecret)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, int64(-100200300), cfg.Telegram.ChatID)
	assert.Equal(t, "24h", cfg.Relay.ReplyCooldown)
	assert.True(t, cfg.Relay.ForwardRaw)
	assert.Equal(t, "brb", cfg.Relay.ReplyText)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultDedupTTL, cfg.Relay.DedupTTL)
	assert.Equal(t, DefaultAvitoBaseURL, cfg.Avito.BaseURL)
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[server`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
