package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// Slack sends operator notifications to a Slack channel. It is an optional
// second sink next to Telegram.
type Slack struct {
	logger  *slog.Logger
	client  *slack.Client
	channel string
}

// NewSlack creates the sink for the given bot token and channel id.
func NewSlack(log *slog.Logger, token, channel string) (*Slack, error) {
	if log == nil {
		log = slog.Default()
	}
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}
	return &Slack{
		logger:  log.With(slog.String("notifier", "slack")),
		client:  slack.New(token),
		channel: channel,
	}, nil
}

// Notify posts text to the configured channel.
func (s *Slack) Notify(ctx context.Context, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		s.logger.Warn("send failed", slog.Any("error", err))
		return fmt.Errorf("slack send: %w", err)
	}
	return nil
}
