package avito

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersionedEnvelope(t *testing.T) {
	raw := []byte(`{
		"id": "m1",
		"payload": {
			"value": {
				"chat_id": "c1",
				"chat_type": "u2i",
				"user_id": "u1",
				"author_id": "u2",
				"content": {"text": "hi"},
				"item_id": "42",
				"created": 1748779200
			}
		}
	}`)

	msg := Normalize(raw)

	assert.Equal(t, "m1", msg.EventID)
	assert.Equal(t, "c1", msg.ConversationID)
	assert.Equal(t, "u2i", msg.ConversationKind)
	assert.Equal(t, "u1", msg.CounterpartyUserID)
	assert.Equal(t, "u2", msg.AuthorID)
	assert.Equal(t, "42", msg.ListingID)
	assert.Equal(t, "hi", msg.BodyText)
	assert.Equal(t, time.Unix(1748779200, 0).UTC(), msg.PublishedAt)
}

func TestNormalizeTopLevelShape(t *testing.T) {
	raw := []byte(`{
		"event_id": "m2",
		"chat_id": "c7",
		"user_id": 99,
		"author_id": 12,
		"item_id": 4242,
		"text": "still interested?"
	}`)

	msg := Normalize(raw)

	assert.Equal(t, "m2", msg.EventID)
	assert.Equal(t, "c7", msg.ConversationID)
	assert.Equal(t, "99", msg.CounterpartyUserID)
	assert.Equal(t, "12", msg.AuthorID)
	assert.Equal(t, "4242", msg.ListingID)
	assert.Equal(t, "still interested?", msg.BodyText)
}

func TestNormalizeMessageContainerShape(t *testing.T) {
	raw := []byte(`{
		"id": "m3",
		"message": {"chat_id": "c9", "user_id": "u5", "text": "ping"}
	}`)

	msg := Normalize(raw)

	assert.Equal(t, "c9", msg.ConversationID)
	assert.Equal(t, "u5", msg.CounterpartyUserID)
	assert.Equal(t, "ping", msg.BodyText)
}

func TestNormalizePriorityFirstNonEmptyWins(t *testing.T) {
	// Both locations populated: the versioned envelope outranks the top level.
	raw := []byte(`{
		"chat_id": "outer",
		"payload": {"value": {"chat_id": "inner"}}
	}`)

	assert.Equal(t, "inner", Normalize(raw).ConversationID)
}

func TestNormalizeDefaults(t *testing.T) {
	before := time.Now().UTC()
	msg := Normalize([]byte(`{}`))

	assert.Empty(t, msg.EventID)
	assert.Empty(t, msg.ConversationID)
	assert.Equal(t, NoTextPlaceholder, msg.BodyText)
	require.False(t, msg.PublishedAt.IsZero())
	assert.False(t, msg.PublishedAt.Before(before.Add(-time.Second)))
}

func TestNormalizeNeverFails(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json at all`),
		[]byte(`[1,2,3]`),
		[]byte(`"just a string"`),
		[]byte(`{"payload": "not an object"}`),
		[]byte(`{"payload": {"value": 17}}`),
		[]byte(`{"payload": {"value": {"content": []}}}`),
		[]byte(`{"id": {"nested": "object"}}`),
	}

	for _, raw := range inputs {
		msg := Normalize(raw)
		assert.Equal(t, NoTextPlaceholder, msg.BodyText, "input %q", raw)
		assert.False(t, msg.PublishedAt.IsZero(), "input %q", raw)
	}
}

func TestNormalizeRFC3339Timestamp(t *testing.T) {
	raw := []byte(`{"payload": {"value": {"published_at": "2025-06-01T12:00:00Z"}}}`)
	msg := Normalize(raw)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), msg.PublishedAt)
}

func TestNormalizeNumericScalars(t *testing.T) {
	raw := []byte(`{"payload": {"value": {"chat_id": 314159, "item_id": 2.5}}}`)
	msg := Normalize(raw)
	assert.Equal(t, "314159", msg.ConversationID)
	assert.Equal(t, "2.5", msg.ListingID)
}
