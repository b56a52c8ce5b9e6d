package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/llm"
)

type MockTextGenerator struct {
	content string
	err     error
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string, maxTokens int) (llm.ContentResponse, error) {
	return llm.ContentResponse{Content: m.content}, m.err
}

type MockStore struct {
	profiles map[string]domain.UserProfile
	saves    int
	err      error
}

func (m *MockStore) SaveUserProfile(ctx context.Context, p domain.UserProfile) error {
	if m.err != nil {
		return m.err
	}
	if m.profiles == nil {
		m.profiles = map[string]domain.UserProfile{}
	}
	m.profiles[p.UserID] = p
	m.saves++
	return nil
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("CompleteProfile", func(t *testing.T) {
		store := &MockStore{}
		gen := &MockTextGenerator{content: `{"name": "Ana", "age": 29, "gender": "female", "height_cm": 165, "weight_kg": 60}`}

		res, err := NewCollector(gen, store).Collect(ctx, "ana", "I'm Ana, 29, female, 165cm, 60kg")
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if res.Profile == nil || store.saves != 1 {
			t.Fatalf("Expected profile to be saved, got %+v", res)
		}
		if res.Profile.UserID != "ana" {
			t.Errorf("Expected user id to be set, got %q", res.Profile.UserID)
		}
		if !strings.Contains(res.Message, "Your BMI is 22.0 (normal weight)") {
			t.Errorf("Unexpected message %q", res.Message)
		}
	})

	t.Run("Incomplete", func(t *testing.T) {
		store := &MockStore{}
		gen := &MockTextGenerator{content: `{"name": "Ana"}`}

		res, err := NewCollector(gen, store).Collect(ctx, "ana", "hi, I'm Ana")
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if res.Profile != nil || store.saves != 0 {
			t.Error("Incomplete profile must not be saved")
		}
		if strings.Join(res.Missing, ",") != "age,gender" {
			t.Errorf("Unexpected missing fields %v", res.Missing)
		}
		if !strings.Contains(res.Message, "your age, gender") {
			t.Errorf("Unexpected message %q", res.Message)
		}
	})

	t.Run("AccumulatesAcrossMessages", func(t *testing.T) {
		store := &MockStore{}
		gen := &MockTextGenerator{content: `{"name": "Ana", "height_cm": 165}`}
		c := NewCollector(gen, store)

		res, err := c.Collect(ctx, "ana", "I'm Ana, 165cm")
		if err != nil || res.Profile != nil || store.saves != 0 {
			t.Fatalf("Expected a draft only, got %+v, err %v", res, err)
		}

		gen.content = `{"age": 29}`
		res, _ = c.Collect(ctx, "ana", "I'm 29")
		if strings.Join(res.Missing, ",") != "gender" {
			t.Fatalf("Expected only gender missing, got %v", res.Missing)
		}
		if _, err := c.Collect(ctx, "bo", "I'm 29"); err != nil {
			t.Fatal(err)
		}

		gen.content = `{"gender": "female"}`
		res, err = c.Collect(ctx, "ana", "female")
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if res.Profile == nil || store.saves != 1 {
			t.Fatalf("Expected profile to be saved, got %+v", res)
		}
		got := store.profiles["ana"]
		if got.Name != "Ana" || got.Age != 29 || got.Gender != "female" || got.HeightCM == nil || *got.HeightCM != 165 {
			t.Errorf("Expected details from all messages, got %+v", got)
		}
		if _, ok := c.drafts.Get("ana"); ok {
			t.Error("Draft should be dropped once the profile is saved")
		}
		if d, _ := c.drafts.Get("bo"); d.Name != "" || d.Age != 29 {
			t.Errorf("Drafts must not leak between users, got %+v", d)
		}
	})

	t.Run("SaveFailureKeepsDraft", func(t *testing.T) {
		store := &MockStore{err: errors.New("disk full")}
		c := NewCollector(&MockTextGenerator{content: `{"name": "Ana", "age": 29, "gender": "female"}`}, store)
		if _, err := c.Collect(ctx, "ana", "Ana, 29, female"); err == nil {
			t.Fatal("Expected save error")
		}

		store.err = nil
		c.textGen = &MockTextGenerator{content: "Hello there!"}
		res, err := c.Collect(ctx, "ana", "still there?")
		if err != nil || res.Profile == nil || res.Profile.Name != "Ana" {
			t.Errorf("Expected the kept draft to be saved, got %+v, err %v", res, err)
		}
	})

	t.Run("UnreadableAnswerAsksAgain", func(t *testing.T) {
		res, err := NewCollector(&MockTextGenerator{content: "Hello there!"}, &MockStore{}).Collect(ctx, "ana", "hello")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(res.Missing) != 3 {
			t.Errorf("Expected all identity fields missing, got %v", res.Missing)
		}
	})

	t.Run("NoMetrics", func(t *testing.T) {
		gen := &MockTextGenerator{content: `{"name": "Ben", "age": 40, "gender": "male"}`}
		res, err := NewCollector(gen, &MockStore{}).Collect(ctx, "ben", "Ben, 40, male")
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if !strings.Contains(res.Message, "can't calculate your BMI") {
			t.Errorf("Unexpected message %q", res.Message)
		}
	})

	t.Run("GenerationFailure", func(t *testing.T) {
		_, err := NewCollector(&MockTextGenerator{err: errors.New("down")}, &MockStore{}).Collect(ctx, "ana", "hi")
		if !errors.Is(err, domain.ErrGenerationFailure) {
			t.Errorf("Expected ErrGenerationFailure, got %v", err)
		}
	})
}
