package pending

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/redis/go-redis/v9"
)

func samplePlan() Plan {
	mp := domain.NewMealPlan()
	mp.Breakfast = []string{"Oats"}
	return Plan{
		UserID:    "ben",
		Date:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Plan:      mp,
		CreatedAt: time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	id, err := s.Put(ctx, samplePlan())
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected an id to be assigned")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "ben" || !reflect.DeepEqual(got.Plan, samplePlan().Plan) || !got.Date.Equal(samplePlan().Date) {
		t.Errorf("Unexpected pending plan %+v", got)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		exerciseStore(t, NewMemoryStore(10, time.Hour))
	})

	t.Run("Expiry", func(t *testing.T) {
		s := NewMemoryStore(10, 20*time.Millisecond)
		id, _ := s.Put(context.Background(), samplePlan())
		time.Sleep(60 * time.Millisecond)
		if _, err := s.Get(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected expired entry, got %v", err)
		}
	})

	t.Run("Eviction", func(t *testing.T) {
		s := NewMemoryStore(1, time.Hour)
		first, _ := s.Put(context.Background(), samplePlan())
		_, _ = s.Put(context.Background(), samplePlan())
		if _, err := s.Get(context.Background(), first); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected oldest entry to be evicted, got %v", err)
		}
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping: REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, time.Minute))
}
