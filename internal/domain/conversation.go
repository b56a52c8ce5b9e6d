package domain

import (
	"fmt"
	"time"
)

type MessageKind string

const (
	KindUserInput     MessageKind = "user_input"
	KindAgentResponse MessageKind = "agent_response"
	KindSystem        MessageKind = "system"
)

// Conversation is one logged message. Timestamp is kept exactly as the
// store recorded it.
type Conversation struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	AgentName string      `json:"agent_name"`
	Message   string      `json:"message"`
	Kind      MessageKind `json:"message_type"`
	Timestamp string      `json:"timestamp"`
}

// TimestampLayout is how conversation timestamps are written. The fixed
// width keeps them ordered as text.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// DateLayout is the ISO calendar date format used across the API and store.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf returns the calendar date of t, in t's own location, as UTC
// midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
