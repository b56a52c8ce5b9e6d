package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(context.Background(), filepath.Join(t.TempDir(), "metrics.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("DailyUsageAndCleanup", func(t *testing.T) {
		s := newTestStore(t)
		s.now = func() time.Time { return now }

		for _, m := range []ExecutionMetric{
			{AgentName: shared.AgentPlanner, PromptTokens: 100, CompletionTokens: 50, Timestamp: now.Add(-time.Hour)},
			{AgentName: shared.AgentFeedbackAnalyst, PromptTokens: 10, CompletionTokens: 5, Failed: true, Timestamp: now.Add(-2 * time.Hour)},
			{AgentName: shared.AgentPlanner, PromptTokens: 1, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -40)},
		} {
			if err := s.Record(ctx, m); err != nil {
				t.Fatalf("Record failed: %v", err)
			}
		}

		usage, err := s.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %+v", usage)
		}
		u := usage[0]
		if u.Date != "2025-01-10" || u.TotalPrompt != 110 || u.TotalCompletion != 55 || u.TotalExecution != 2 || u.Failures != 1 {
			t.Errorf("Unexpected usage %+v", u)
		}

		removed, err := s.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 record removed, got %d", removed)
		}
	})

	t.Run("RecordMetaSkipsUnusedCalls", func(t *testing.T) {
		s := newTestStore(t)
		s.now = func() time.Time { return now }

		if err := s.RecordMeta(ctx, shared.AgentMeta{AgentName: shared.AgentPlanner}); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
		if err := s.RecordMeta(ctx, shared.AgentMeta{AgentName: shared.AgentPlanner, Failed: true, Latency: time.Second}); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
		usage, _ := s.GetDailyUsage(ctx, 1)
		if len(usage) != 1 || usage[0].TotalExecution != 1 || usage[0].Failures != 1 {
			t.Errorf("Expected only the failed call to be recorded, got %+v", usage)
		}
	})
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := MustNewCollectors(reg)
	r := NewRecorder(c, nil, zerolog.Nop())

	r.ObserveDecision("create_plan", "needs_plan")
	r.ObserveDecision("create_plan", "needs_plan")
	r.RecordMeta(context.Background(), "ana", shared.AgentMeta{
		AgentName: shared.AgentPlanner,
		Usage:     shared.TokenUsage{PromptTokens: 120, CompletionTokens: 80},
		Latency:   1500 * time.Millisecond,
		Failed:    true,
	})

	if got := testutil.ToFloat64(c.decisions.WithLabelValues("create_plan", "needs_plan")); got != 2 {
		t.Errorf("Expected 2 decisions, got %v", got)
	}
	if got := testutil.ToFloat64(c.llmTokens.WithLabelValues(shared.AgentPlanner, "prompt")); got != 120 {
		t.Errorf("Expected 120 prompt tokens, got %v", got)
	}
	if got := testutil.ToFloat64(c.llmFailures.WithLabelValues(shared.AgentPlanner)); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}
	if n := testutil.CollectAndCount(c.llmDuration); n != 1 {
		t.Errorf("Expected 1 duration series, got %d", n)
	}
}

func TestReadHealth(t *testing.T) {
	dir := t.TempDir()
	h := ReadHealth(dir)
	if h.Goroutines <= 0 || h.DataBytes != 0 || h.DataSize() != "0 B" {
		t.Errorf("Unexpected health %+v", h)
	}

	if err := os.WriteFile(filepath.Join(dir, "diet.db"), make([]byte, 3*1024), 0o644); err != nil {
		t.Fatal(err)
	}
	h = ReadHealth(dir)
	if h.DataBytes != 3*1024 || h.DataSize() != "3.0 KB" {
		t.Errorf("Expected 3.0 KB, got %d (%s)", h.DataBytes, h.DataSize())
	}

	if got := ReadHealth(filepath.Join(dir, "missing")).DataBytes; got != 0 {
		t.Errorf("Expected 0 for a missing directory, got %d", got)
	}
}
