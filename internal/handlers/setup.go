package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sellerping/sellerping/internal/avito"
	"github.com/sellerping/sellerping/internal/notify"
)

// Registrar registers the relay's callback URL with the upstream.
type Registrar interface {
	RegisterWebhook(ctx context.Context, callbackURL string) (avito.RegistrationReport, error)
}

// SetupHandler serves the one-shot administrative routes: webhook
// registration and a manual notification test.
type SetupHandler struct {
	logger    *slog.Logger
	registrar Registrar
	notifier  notify.Notifier
}

// NewSetupHandler creates the setup handler.
func NewSetupHandler(log *slog.Logger, registrar Registrar, notifier notify.Notifier) *SetupHandler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &SetupHandler{
		logger:    log.With(slog.String("handler", "setup")),
		registrar: registrar,
		notifier:  notifier,
	}
}

// Register mounts GET /setup/register and GET /test/notify on the Echo instance.
func (h *SetupHandler) Register(e *echo.Echo) {
	e.GET("/setup/register", h.RegisterWebhook)
	e.GET("/test/notify", h.TestNotify)
}

// RegisterWebhook registers this host's callback URL upstream and returns
// the attempt trail as plain text. This is the only route allowed to answer
// with a server error, since it is invoked by hand.
func (h *SetupHandler) RegisterWebhook(c echo.Context) error {
	callbackURL := "https://" + c.Request().Host + "/webhook/message"

	report, err := h.registrar.RegisterWebhook(c.Request().Context(), callbackURL)
	if err != nil {
		h.logger.Error("registration failed", slog.Any("error", err))
		if nerr := h.notifier.Notify(c.Request().Context(), "⚙️ webhook registration failed: "+err.Error()); nerr != nil {
			h.logger.Warn("operator notification failed", slog.Any("error", nerr))
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	summary := report.Summary()
	if nerr := h.notifier.Notify(c.Request().Context(), "⚙️ "+summary); nerr != nil {
		h.logger.Warn("operator notification failed", slog.Any("error", nerr))
	}
	return c.String(http.StatusOK, summary+"\n")
}

// TestNotify forwards arbitrary text to the operator channel.
func (h *SetupHandler) TestNotify(c echo.Context) error {
	text := strings.TrimSpace(c.QueryParam("text"))
	if text == "" {
		text = "ping from sellerping"
	}
	if err := h.notifier.Notify(c.Request().Context(), text); err != nil {
		h.logger.Warn("operator notification failed", slog.Any("error", err))
		return c.String(http.StatusOK, "notifier unavailable: "+err.Error()+"\n")
	}
	return c.String(http.StatusOK, "sent\n")
}
