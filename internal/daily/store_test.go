package daily

import (
	"context"
	"errors"
	"time"

	"ai-diet-planner/internal/domain"
)

// MockStore is an in-memory history store keyed by user and ISO date.
type MockStore struct {
	profiles      map[string]domain.UserProfile
	plans         map[string]domain.PlanRecord
	feedback      map[string]domain.FeedbackRecord
	conversations []domain.Conversation
	err           error
}

func NewMockStore() *MockStore {
	return &MockStore{
		profiles: map[string]domain.UserProfile{},
		plans:    map[string]domain.PlanRecord{},
		feedback: map[string]domain.FeedbackRecord{},
	}
}

func key(userID string, date time.Time) string {
	return userID + "|" + domain.FormatDate(date)
}

func (m *MockStore) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockStore) GetPlan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.plans[key(userID, date)]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *MockStore) GetFeedback(ctx context.Context, userID string, date time.Time) (*domain.FeedbackRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.feedback[key(userID, date)]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *MockStore) LatestConversation(ctx context.Context, userID string) (*domain.Conversation, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := len(m.conversations) - 1; i >= 0; i-- {
		if m.conversations[i].UserID == userID {
			c := m.conversations[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockStore) SavePlan(ctx context.Context, rec domain.PlanRecord) error {
	m.plans[key(rec.UserID, rec.Date)] = rec
	return nil
}

func (m *MockStore) SaveFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	m.feedback[key(rec.UserID, rec.Date)] = rec
	return nil
}

func (m *MockStore) ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackRecord, error) {
	var out []domain.FeedbackRecord
	for _, r := range m.feedback {
		if r.UserID == userID && !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockStore) AddConversation(ctx context.Context, c domain.Conversation) error {
	if c.Message == "" {
		return errors.New("empty message")
	}
	m.conversations = append(m.conversations, c)
	return nil
}

func (m *MockStore) talk(userID, timestamp string) {
	m.conversations = append(m.conversations, domain.Conversation{
		UserID:    userID,
		Message:   "hi",
		Kind:      domain.KindUserInput,
		Timestamp: timestamp,
	})
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
