// Package avito implements the upstream messenger API surface the relay
// depends on: token exchange, account lookup, event normalization, reply
// dispatch, and webhook registration.
package avito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.avito.ru"

// attemptBodyLimit caps the response body carried in an Attempt. The trail is
// for the operator's eyes, not for machines.
const attemptBodyLimit = 200

// Attempt records one outbound call made by the fallback driver.
type Attempt struct {
	Endpoint string
	Variant  string
	Status   int    // 0 when the call failed before a response
	Body     string // truncated response body
	Err      string
	Accepted bool
}

// attemptSpec is one (endpoint, payload shape) pair in priority order.
type attemptSpec struct {
	url     string
	variant string
	payload any
}

// Client talks to the upstream messenger API. The API's request shapes have
// changed across provider versions, so outbound operations enumerate
// candidate endpoint/payload combinations instead of assuming one.
type Client struct {
	logger   *slog.Logger
	http     *http.Client
	baseURL  string
	tokens   TokenSource
	accounts *AccountResolver
}

// NewClient creates an upstream client. accounts may be nil when no
// account-scoped endpoints should be attempted.
func NewClient(log *slog.Logger, baseURL string, tokens TokenSource, accounts *AccountResolver, httpClient *http.Client) *Client {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		logger:   log.With(slog.String("component", "avito")),
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		accounts: accounts,
	}
}

// tryCandidates walks specs in order and stops at the first accepted
// response. Every attempt, accepted or not, lands in the returned trail.
func (c *Client) tryCandidates(ctx context.Context, token string, specs []attemptSpec) (bool, []Attempt) {
	attempts := make([]Attempt, 0, len(specs))
	for _, spec := range specs {
		att := c.post(ctx, token, spec)
		attempts = append(attempts, att)
		if att.Accepted {
			return true, attempts
		}
	}
	return false, attempts
}

func (c *Client) post(ctx context.Context, token string, spec attemptSpec) Attempt {
	att := Attempt{Endpoint: spec.url, Variant: spec.variant}

	body, err := json.Marshal(spec.payload)
	if err != nil {
		att.Err = err.Error()
		return att
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.url, bytes.NewReader(body))
	if err != nil {
		att.Err = err.Error()
		return att
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		att.Err = err.Error()
		return att
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	att.Status = resp.StatusCode
	att.Body = truncate(strings.TrimSpace(string(respBody)), attemptBodyLimit)
	att.Accepted = accepted(resp.StatusCode, respBody)

	c.logger.Debug("upstream attempt",
		slog.String("endpoint", spec.url),
		slog.String("variant", spec.variant),
		slog.Int("status", att.Status),
		slog.Bool("accepted", att.Accepted),
	)
	return att
}

// accepted reports whether a response counts as logical success. A 200 whose
// body carries an error envelope is still a failure.
func accepted(status int, body []byte) bool {
	switch status {
	case http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	case http.StatusOK:
		return !bodyRejects(body)
	}
	return false
}

func bodyRejects(body []byte) bool {
	var envelope struct {
		Error  json.RawMessage `json:"error"`
		Result *bool           `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	switch strings.TrimSpace(string(envelope.Error)) {
	case "", "null", `""`, "{}":
	default:
		return true
	}
	return envelope.Result != nil && !*envelope.Result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// formatAttempts renders a trail the way the operator sees it, one line of
// status and endpoint per attempt followed by the truncated body.
func formatAttempts(attempts []Attempt) string {
	var b strings.Builder
	for i, att := range attempts {
		if i > 0 {
			b.WriteString("\n")
		}
		status := fmt.Sprintf("%d", att.Status)
		if att.Err != "" {
			status = "ERR"
		}
		mark := ""
		if att.Accepted {
			mark = " [accepted]"
		}
		fmt.Fprintf(&b, "%s — %s (%s)%s", status, att.Endpoint, att.Variant, mark)
		if att.Body != "" {
			fmt.Fprintf(&b, "\n  %s", att.Body)
		}
		if att.Err != "" {
			fmt.Fprintf(&b, "\n  %s", att.Err)
		}
	}
	return b.String()
}
