// Package daily decides, for each incoming message, what the assistant
// should do about the user's plan for a given date, and carries it out.
package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"
)

// NoInteractionDays is reported as days since last interaction for users
// with no conversation history.
const NoInteractionDays = 999

// HistoryStore is the read side of the history store. Lookups return
// nil, nil when nothing is stored.
type HistoryStore interface {
	GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetPlan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error)
	GetFeedback(ctx context.Context, userID string, date time.Time) (*domain.FeedbackRecord, error)
	LatestConversation(ctx context.Context, userID string) (*domain.Conversation, error)
}

// Status is a user's situation on one calendar date.
type Status struct {
	Date                     time.Time
	HasPlan                  bool
	HasFeedback              bool
	LastInteraction          *time.Time
	IsNewDay                 bool
	DaysSinceLastInteraction int
}

func (s Status) MarshalJSON() ([]byte, error) {
	var last *string
	if s.LastInteraction != nil {
		v := domain.FormatDate(*s.LastInteraction)
		last = &v
	}
	return json.Marshal(struct {
		Date                     string  `json:"date"`
		HasPlan                  bool    `json:"has_diet_plan"`
		HasFeedback              bool    `json:"has_feedback"`
		LastInteraction          *string `json:"last_interaction"`
		IsNewDay                 bool    `json:"is_new_day"`
		DaysSinceLastInteraction int     `json:"days_since_last_interaction"`
	}{
		Date:                     domain.FormatDate(s.Date),
		HasPlan:                  s.HasPlan,
		HasFeedback:              s.HasFeedback,
		LastInteraction:          last,
		IsNewDay:                 s.IsNewDay,
		DaysSinceLastInteraction: s.DaysSinceLastInteraction,
	})
}

// timestampLayouts are the conversation timestamp forms the stores produce.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	domain.DateLayout,
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Resolver computes Status from the history store. It has no side effects.
type Resolver struct {
	store HistoryStore
	loc   *time.Location
}

// NewResolver builds a Resolver that reads conversation timestamps as
// calendar dates in loc. A nil loc means UTC.
func NewResolver(store HistoryStore, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{store: store, loc: loc}
}

// Resolve reports the status of userID on date. Only the calendar date of
// date is used. A conversation timestamp that cannot be read counts as no
// interaction at all.
func (r *Resolver) Resolve(ctx context.Context, userID string, date time.Time) (Status, error) {
	date = domain.DateOf(date)
	st := Status{Date: date, DaysSinceLastInteraction: NoInteractionDays}

	plan, err := r.store.GetPlan(ctx, userID, date)
	if err != nil {
		return Status{}, fmt.Errorf("failed to load plan for %s: %w", userID, err)
	}
	st.HasPlan = plan != nil

	fb, err := r.store.GetFeedback(ctx, userID, date)
	if err != nil {
		return Status{}, fmt.Errorf("failed to load feedback for %s: %w", userID, err)
	}
	st.HasFeedback = fb != nil

	conv, err := r.store.LatestConversation(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to load conversations for %s: %w", userID, err)
	}
	if conv != nil {
		if ts, ok := parseTimestamp(conv.Timestamp); ok {
			last := domain.DateOf(ts.In(r.loc))
			st.LastInteraction = &last
			st.DaysSinceLastInteraction = int(date.Sub(last).Hours() / 24)
		}
	}

	st.IsNewDay = !st.HasPlan && (st.LastInteraction == nil || date.After(*st.LastInteraction))
	return st, nil
}
