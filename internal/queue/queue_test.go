package queue

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandleWritesLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsumer("", &buf, nil)

	body := []byte(`{"type":"invite.accepted","user_id":"u2","fridge_id":"f1","fridge_name":"Family","occurred_at":"2026-03-01T10:00:00Z"}`)
	require.NoError(t, c.Handle(body))
	assert.Equal(t, "[2026-03-01T10:00:00Z] invite.accepted | user_id=\"u2\" | fridge_id=\"f1\" | fridge=\"Family\"\n", buf.String())
}

func TestConsumerHandleRejectsMalformed(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsumer("", &buf, nil)
	assert.Error(t, c.Handle([]byte("not json")))
	assert.Error(t, c.Handle([]byte(`{"user_id":"x"}`)))
	assert.Zero(t, buf.Len())
}

func TestFormatLineSkipsEmptyFields(t *testing.T) {
	line := FormatLine(Event{Type: EventAccountCreated, UserID: "u1", OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	assert.Equal(t, "[2026-01-02T03:04:05Z] account.created | user_id=\"u1\"\n", line)
}
