package avito

import (
	"context"
	"fmt"
	"log/slog"
)

// DispatchReport is the trail of one auto-reply dispatch.
type DispatchReport struct {
	Sent     bool
	Attempts []Attempt
}

// Summary renders the report for the operator channel.
func (r DispatchReport) Summary() string {
	head := "auto-reply failed: all candidates rejected"
	if r.Sent {
		head = "auto-reply sent"
	}
	if len(r.Attempts) == 0 {
		return head
	}
	return head + "\n" + formatAttempts(r.Attempts)
}

// replyVariants are the historically-observed request body shapes, newest
// first. userID rides along where a shape carried it; it may be empty.
var replyVariants = []struct {
	name  string
	build func(text, userID string) any
}{
	{"message-object", func(text, _ string) any {
		return map[string]any{"message": map[string]any{"text": text}, "type": "text"}
	}},
	{"flat-text", func(text, _ string) any {
		return map[string]any{"text": text}
	}},
	{"message-string", func(text, userID string) any {
		body := map[string]any{"message": text, "type": "text"}
		if userID != "" {
			body["user_id"] = userID
		}
		return body
	}},
}

// SendReply posts an automated reply into conversationID, walking the
// endpoint × payload-shape candidates in fixed priority order until one is
// accepted. Exhausting the list is not an error: the report says Sent=false
// and the next eligible event for the conversation is the only retry path.
func (c *Client) SendReply(ctx context.Context, conversationID, counterpartyUserID, text string) DispatchReport {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return DispatchReport{Attempts: []Attempt{{Variant: "token", Err: err.Error()}}}
	}

	var endpoints []string
	if c.accounts != nil {
		if accountID, err := c.accounts.AccountID(ctx); err == nil {
			endpoints = append(endpoints,
				fmt.Sprintf("%s/messenger/v1/accounts/%d/chats/%s/messages", c.baseURL, accountID, conversationID),
				fmt.Sprintf("%s/messenger/v2/accounts/%d/chats/%s/messages", c.baseURL, accountID, conversationID),
			)
		} else {
			c.logger.Warn("account id unresolved, trying account-less endpoints only", slog.Any("error", err))
		}
	}
	endpoints = append(endpoints,
		fmt.Sprintf("%s/messenger/v1/chats/%s/messages", c.baseURL, conversationID),
		fmt.Sprintf("%s/messenger/v2/chats/%s/messages", c.baseURL, conversationID),
	)

	specs := make([]attemptSpec, 0, len(endpoints)*len(replyVariants))
	for _, url := range endpoints {
		for _, variant := range replyVariants {
			specs = append(specs, attemptSpec{
				url:     url,
				variant: variant.name,
				payload: variant.build(text, counterpartyUserID),
			})
		}
	}

	sent, attempts := c.tryCandidates(ctx, token, specs)
	return DispatchReport{Sent: sent, Attempts: attempts}
}
