package avito

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// NoTextPlaceholder substitutes for a message body the event did not carry.
const NoTextPlaceholder = "(no text)"

// InboundMessage is the canonical form of one webhook event. It is built once
// per event and never mutated afterwards. Every field degrades to a safe
// default instead of failing construction.
type InboundMessage struct {
	EventID            string
	ConversationID     string
	ConversationKind   string
	CounterpartyUserID string
	AuthorID           string
	ListingID          string
	BodyText           string
	PublishedAt        time.Time
}

type rawEvent map[string]any

// extractor probes one known location of a logical field in the raw event.
type extractor func(ev rawEvent) string

// path returns an extractor that walks nested objects along keys and
// stringifies the scalar at the end.
func path(keys ...string) extractor {
	return func(ev rawEvent) string {
		var cur any = map[string]any(ev)
		for _, key := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return ""
			}
			if cur, ok = obj[key]; !ok {
				return ""
			}
		}
		return stringify(cur)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// first evaluates a chain in priority order; the first non-empty value wins.
func first(ev rawEvent, chain []extractor) string {
	for _, ex := range chain {
		if v := ex(ev); v != "" {
			return v
		}
	}
	return ""
}

// One chain per logical field, newest envelope location first. Supporting a
// new upstream schema version means appending an extractor to the affected
// chains; existing entries are never edited.
var (
	eventIDChain = []extractor{
		path("id"),
		path("payload", "value", "id"),
		path("event_id"),
		path("payload", "id"),
	}
	conversationIDChain = []extractor{
		path("payload", "value", "chat_id"),
		path("payload", "value", "chat", "id"),
		path("payload", "chat_id"),
		path("message", "chat_id"),
		path("chat_id"),
	}
	conversationKindChain = []extractor{
		path("payload", "value", "chat_type"),
		path("payload", "chat_type"),
		path("chat_type"),
	}
	counterpartyChain = []extractor{
		path("payload", "value", "user_id"),
		path("payload", "user_id"),
		path("message", "user_id"),
		path("user_id"),
	}
	authorChain = []extractor{
		path("payload", "value", "author_id"),
		path("payload", "author_id"),
		path("message", "author_id"),
		path("author_id"),
	}
	listingChain = []extractor{
		path("payload", "value", "item_id"),
		path("payload", "value", "item", "id"),
		path("payload", "item_id"),
		path("item_id"),
	}
	bodyTextChain = []extractor{
		path("payload", "value", "content", "text"),
		path("payload", "value", "text"),
		path("payload", "content", "text"),
		path("message", "text"),
		path("content", "text"),
		path("text"),
	}
	publishedChain = []extractor{
		path("payload", "value", "created"),
		path("payload", "value", "published_at"),
		path("payload", "timestamp"),
		path("timestamp"),
		path("created"),
	}
)

// Normalize maps a raw webhook body onto InboundMessage. It never fails:
// malformed JSON yields an event with every field at its default.
func Normalize(raw []byte) InboundMessage {
	var ev rawEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev == nil {
		ev = rawEvent{}
	}

	msg := InboundMessage{
		EventID:            first(ev, eventIDChain),
		ConversationID:     first(ev, conversationIDChain),
		ConversationKind:   first(ev, conversationKindChain),
		CounterpartyUserID: first(ev, counterpartyChain),
		AuthorID:           first(ev, authorChain),
		ListingID:          first(ev, listingChain),
		BodyText:           first(ev, bodyTextChain),
		PublishedAt:        parseTimestamp(first(ev, publishedChain)),
	}
	if msg.BodyText == "" {
		msg.BodyText = NoTextPlaceholder
	}
	if msg.PublishedAt.IsZero() {
		msg.PublishedAt = time.Now().UTC()
	}
	return msg
}

// parseTimestamp accepts unix seconds or RFC3339; anything else reads as absent.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
