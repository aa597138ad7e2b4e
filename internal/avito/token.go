package avito

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrCredentials marks a failed or impossible bearer-token exchange: missing
// client id/secret, a rejected grant, or an empty token in the response.
var ErrCredentials = errors.New("avito credentials missing or rejected")

// TokenSource issues bearer tokens for the upstream messenger API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials obtains tokens via the client-credentials grant against
// the upstream token endpoint. Each call performs a fresh exchange; the
// upstream token lifetime is not tracked here.
type ClientCredentials struct {
	logger *slog.Logger
	conf   *clientcredentials.Config
	http   *http.Client
}

// NewClientCredentials creates a token source for the given client id/secret.
func NewClientCredentials(log *slog.Logger, clientID, clientSecret, tokenURL string, httpClient *http.Client) *ClientCredentials {
	if log == nil {
		log = slog.Default()
	}
	return &ClientCredentials{
		logger: log.With(slog.String("component", "avito_token")),
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			// The upstream expects client id/secret as form fields, not basic auth.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		http: httpClient,
	}
}

// Token performs the exchange. All failure modes map onto ErrCredentials so
// callers can branch on the kind without inspecting the message.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	if c.conf.ClientID == "" || c.conf.ClientSecret == "" {
		return "", fmt.Errorf("%w: client id/secret not configured", ErrCredentials)
	}
	if c.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	}
	tok, err := c.conf.Token(ctx)
	if err != nil {
		c.logger.Warn("token exchange failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: token exchange: %v", ErrCredentials, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrCredentials)
	}
	return tok.AccessToken, nil
}
