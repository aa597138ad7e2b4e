package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// maxWebhookBody caps how much of an inbound event body is read.
const maxWebhookBody = 1 << 20

// webhookSecretHeader carries the optional shared secret for inbound verification.
const webhookSecretHeader = "X-Webhook-Secret"

// EventPipeline consumes one raw webhook delivery.
type EventPipeline interface {
	HandleEvent(ctx context.Context, raw []byte)
}

// WebhookHandler ingests upstream messenger events. After the shared-secret
// check it always answers 200: a retry storm from the upstream is worse than
// a swallowed internal failure, which the pipeline reports to the operator.
type WebhookHandler struct {
	logger   *slog.Logger
	pipeline EventPipeline
	secret   string
}

// NewWebhookHandler creates the webhook handler. An empty secret disables
// inbound verification.
func NewWebhookHandler(log *slog.Logger, pipeline EventPipeline, secret string) *WebhookHandler {
	return &WebhookHandler{
		logger:   log.With(slog.String("handler", "webhook")),
		pipeline: pipeline,
		secret:   secret,
	}
}

// Register mounts POST /webhook/message on the Echo instance.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook/message", h.Receive)
}

// Receive accepts one event delivery and hands it to the pipeline.
func (h *WebhookHandler) Receive(c echo.Context) error {
	if h.secret != "" && c.Request().Header.Get(webhookSecretHeader) != h.secret {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "bad webhook secret"})
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("read body failed", slog.Any("error", err))
		raw = nil
	}

	// The upstream only needs the acknowledgement; processing continues
	// detached from the request lifetime.
	go h.pipeline.HandleEvent(context.WithoutCancel(c.Request().Context()), raw)

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
