package avito

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// AccountResolver resolves the id of the account owning the upstream
// credentials. The first successful lookup is cached for the process
// lifetime; failures are never cached and retried on next use. A non-zero
// override skips the API entirely.
type AccountResolver struct {
	logger   *slog.Logger
	tokens   TokenSource
	http     *http.Client
	baseURL  string
	override int64

	mu     sync.Mutex
	cached int64
}

// NewAccountResolver creates a resolver over the given token source.
func NewAccountResolver(log *slog.Logger, tokens TokenSource, httpClient *http.Client, baseURL string, override int64) *AccountResolver {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &AccountResolver{
		logger:   log.With(slog.String("component", "avito_account")),
		tokens:   tokens,
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		override: override,
	}
}

// AccountID returns the owning account id.
func (r *AccountResolver) AccountID(ctx context.Context) (int64, error) {
	if r.override != 0 {
		return r.override, nil
	}

	r.mu.Lock()
	if r.cached != 0 {
		id := r.cached
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/core/v1/accounts/self", nil)
	if err != nil {
		return 0, fmt.Errorf("account lookup: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("account lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("account lookup: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("account lookup: decode: %w", err)
	}
	if payload.ID == 0 {
		return 0, fmt.Errorf("account lookup: response carried no id")
	}

	r.mu.Lock()
	r.cached = payload.ID
	r.mu.Unlock()
	r.logger.Info("account id resolved", slog.Int64("account_id", payload.ID))
	return payload.ID, nil
}
