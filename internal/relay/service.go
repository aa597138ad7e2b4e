// Package relay runs the webhook ingestion and auto-reply pipeline:
// duplicate filtering, normalization, operator notification, reply
// eligibility, and dispatch.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sellerping/sellerping/internal/avito"
	"github.com/sellerping/sellerping/internal/expiry"
	"github.com/sellerping/sellerping/internal/notify"
)

// rawForwardLimit caps the raw payload passthrough sent to the operator.
const rawForwardLimit = 1500

// Dispatcher sends the automated reply upstream.
type Dispatcher interface {
	SendReply(ctx context.Context, conversationID, counterpartyUserID, text string) avito.DispatchReport
}

// AccountLookup resolves the id of the account owning the credentials.
type AccountLookup interface {
	AccountID(ctx context.Context) (int64, error)
}

// Options are the pipeline toggles taken from configuration.
type Options struct {
	ReplyText  string
	ForwardRaw bool
	ForceReply bool
}

// Service is the event pipeline. Shared state lives in the two expiry
// stores; everything else is immutable after construction.
type Service struct {
	logger     *slog.Logger
	notifier   notify.Notifier
	dispatcher Dispatcher
	accounts   AccountLookup
	dedup      *expiry.Store
	cooldowns  *expiry.Store
	opts       Options
}

// NewService creates the pipeline over the given collaborators.
func NewService(
	log *slog.Logger,
	notifier notify.Notifier,
	dispatcher Dispatcher,
	accounts AccountLookup,
	dedup *expiry.Store,
	cooldowns *expiry.Store,
	opts Options,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		logger:     log.With(slog.String("component", "relay")),
		notifier:   notifier,
		dispatcher: dispatcher,
		accounts:   accounts,
		dedup:      dedup,
		cooldowns:  cooldowns,
		opts:       opts,
	}
}

// HandleEvent runs one webhook delivery through the pipeline. It never
// returns an error: once an event is past deduplication every downstream
// failure is reported to the operator channel instead of the webhook caller.
func (s *Service) HandleEvent(ctx context.Context, raw []byte) {
	log := s.logger.With(slog.String("delivery", uuid.NewString()[:8]))

	msg := avito.Normalize(raw)
	if s.isDuplicate(msg.EventID) {
		log.Debug("duplicate event suppressed", slog.String("event_id", msg.EventID))
		return
	}
	log.Info("event accepted",
		slog.String("event_id", msg.EventID),
		slog.String("chat_id", msg.ConversationID),
		slog.String("user_id", msg.CounterpartyUserID),
	)

	s.notify(ctx, log, formatInbound(msg))
	if s.opts.ForwardRaw {
		s.notify(ctx, log, "raw event:\n"+truncateRaw(raw))
	}

	if !s.shouldAutoReply(ctx, log, msg) {
		return
	}

	report := s.dispatcher.SendReply(ctx, msg.ConversationID, msg.CounterpartyUserID, s.opts.ReplyText)
	if !report.Sent {
		log.Warn("auto-reply not sent", slog.Int("attempts", len(report.Attempts)))
	}
	s.notify(ctx, log, report.Summary())
}

// isDuplicate consults the dedup table. Events without an id are always
// processed; reprocessing beats a silent drop.
func (s *Service) isDuplicate(eventID string) bool {
	if eventID == "" {
		return false
	}
	return s.dedup.Remember(eventID)
}

// shouldAutoReply decides whether a reply is owed. When it returns true the
// conversation's cooldown has already been armed; Remember performs the
// check and the write under one lock with no I/O in between.
func (s *Service) shouldAutoReply(ctx context.Context, log *slog.Logger, msg avito.InboundMessage) bool {
	if msg.ConversationID == "" {
		log.Info("auto-reply skipped: no conversation id")
		return false
	}

	// Self-authorship is decided before the cooldown table is touched so the
	// account's own messages never consume or extend a cooldown window.
	if s.selfAuthored(ctx, msg) {
		log.Info("auto-reply skipped: self-authored", slog.String("chat_id", msg.ConversationID))
		return false
	}

	if s.opts.ForceReply {
		s.cooldowns.Arm(msg.ConversationID)
		return true
	}

	if s.cooldowns.Remember(msg.ConversationID) {
		log.Info("auto-reply skipped: conversation in cooldown", slog.String("chat_id", msg.ConversationID))
		return false
	}
	return true
}

// selfAuthored reports whether the triggering message came from the account
// owner. Upstream versions disagree on whether user_id or author_id names
// the sender, so author_id is preferred and the counterparty id is the
// fallback. Unknown authorship reads as not-self.
func (s *Service) selfAuthored(ctx context.Context, msg avito.InboundMessage) bool {
	if s.accounts == nil {
		return false
	}
	sender := msg.AuthorID
	if sender == "" {
		sender = msg.CounterpartyUserID
	}
	if sender == "" {
		return false
	}
	accountID, err := s.accounts.AccountID(ctx)
	if err != nil {
		return false
	}
	return sender == strconv.FormatInt(accountID, 10)
}

func (s *Service) notify(ctx context.Context, log *slog.Logger, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		log.Warn("operator notification failed", slog.Any("error", err))
	}
}

func formatInbound(msg avito.InboundMessage) string {
	var b strings.Builder
	b.WriteString("📨 New Avito message\n")
	fmt.Fprintf(&b, "Chat: %s", valueOr(msg.ConversationID, "—"))
	if msg.ConversationKind != "" {
		fmt.Fprintf(&b, " (%s)", msg.ConversationKind)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "From: %s", valueOr(msg.CounterpartyUserID, "—"))
	if msg.AuthorID != "" && msg.AuthorID != msg.CounterpartyUserID {
		fmt.Fprintf(&b, " (author %s)", msg.AuthorID)
	}
	b.WriteString("\n")
	if msg.ListingID != "" {
		fmt.Fprintf(&b, "Item: https://www.avito.ru/items/%s\n", msg.ListingID)
	}
	fmt.Fprintf(&b, "Text: %s\n", msg.BodyText)
	fmt.Fprintf(&b, "At: %s", msg.PublishedAt.Format(time.RFC3339))
	return b.String()
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func truncateRaw(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > rawForwardLimit {
		return s[:rawForwardLimit] + "…"
	}
	return s
}
