package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram sends operator notifications through a Telegram bot. Sends are
// throttled because Telegram rejects more than roughly one message per
// second per chat.
type Telegram struct {
	logger  *slog.Logger
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegram creates the sink and verifies the token against the Bot API.
func NewTelegram(log *slog.Logger, botToken string, chatID int64) (*Telegram, error) {
	if log == nil {
		log = slog.Default()
	}
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{
		logger:  log.With(slog.String("notifier", "telegram")),
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}, nil
}

// Notify sends text as a plain message to the operator chat.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("send failed", slog.Any("error", err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
