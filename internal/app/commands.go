package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ai-diet-planner/internal/daily"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/feedback"
	"ai-diet-planner/internal/metrics"
)

// Assistant is what the command line needs from daily.Assistant.
type Assistant interface {
	Handle(ctx context.Context, userID, message string, date time.Time) (daily.Result, error)
	DailyStatus(ctx context.Context, userID string, date time.Time) (daily.StatusReport, error)
	Confirm(ctx context.Context, userID, pendingID string) (daily.Result, error)
	ConfirmWithToken(ctx context.Context, userID, token string) (daily.Result, error)
	ModifyWithToken(ctx context.Context, userID, token string, unavailable, available []string) (daily.Result, error)
	SubmitFeedback(ctx context.Context, userID, text string, date time.Time) (daily.Result, error)
	FeedbackSummary(ctx context.Context, userID string, days int, today time.Time) (feedback.Summary, error)
	Today() time.Time
}

// Commands runs single operations against the assistant and prints their
// results as JSON.
type Commands struct {
	assistant    Assistant
	metricsStore *metrics.Store
	dataDir      string
	out          io.Writer
}

func NewCommands(assistant Assistant, metricsStore *metrics.Store, dataDir string, out io.Writer) *Commands {
	return &Commands{assistant: assistant, metricsStore: metricsStore, dataDir: dataDir, out: out}
}

// Commands returns the command runner for a built App.
func (a *App) Commands() *Commands {
	return NewCommands(a.Assistant, a.MetricsStore, a.cfg.DataDir(), a.out)
}

// Chat sends message as userID. An empty date means today.
func (c *Commands) Chat(ctx context.Context, userID, message, date string) error {
	d, err := c.date(date)
	if err != nil {
		return err
	}
	res, err := c.assistant.Handle(ctx, userID, message, d)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return c.print(res)
}

func (c *Commands) Status(ctx context.Context, userID, date string) error {
	d, err := c.date(date)
	if err != nil {
		return err
	}
	report, err := c.assistant.DailyStatus(ctx, userID, d)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	return c.print(report)
}

func (c *Commands) Confirm(ctx context.Context, userID, token string) error {
	res, err := c.assistant.ConfirmWithToken(ctx, userID, token)
	if err != nil {
		return fmt.Errorf("confirm failed: %w", err)
	}
	return c.print(res)
}

// ConfirmPending confirms by pending id. The pending store must be shared
// with the process that generated the plan, i.e. Redis.
func (c *Commands) ConfirmPending(ctx context.Context, userID, pendingID string) error {
	res, err := c.assistant.Confirm(ctx, userID, pendingID)
	if err != nil {
		return fmt.Errorf("confirm failed: %w", err)
	}
	return c.print(res)
}

func (c *Commands) Modify(ctx context.Context, userID, token string, unavailable, available []string) error {
	res, err := c.assistant.ModifyWithToken(ctx, userID, token, unavailable, available)
	if err != nil {
		return fmt.Errorf("modify failed: %w", err)
	}
	return c.print(res)
}

// Feedback records text as userID's feedback for date. An empty date means
// today.
func (c *Commands) Feedback(ctx context.Context, userID, text, date string) error {
	d, err := c.date(date)
	if err != nil {
		return err
	}
	res, err := c.assistant.SubmitFeedback(ctx, userID, text, d)
	if err != nil {
		return fmt.Errorf("feedback failed: %w", err)
	}
	return c.print(res)
}

func (c *Commands) Summary(ctx context.Context, userID string, days int) error {
	s, err := c.assistant.FeedbackSummary(ctx, userID, days, c.assistant.Today())
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	return c.print(s)
}

// Usage prints token usage per day for the last days days, followed by a
// health line for the process and the data directory.
func (c *Commands) Usage(ctx context.Context, days int) error {
	usage, err := c.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return err
	}
	for _, u := range usage {
		fmt.Fprintf(c.out, "%s  calls=%d prompt=%d completion=%d failures=%d\n",
			u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion, u.Failures)
	}
	if len(usage) == 0 {
		fmt.Fprintln(c.out, "No usage recorded.")
	}
	h := metrics.ReadHealth(c.dataDir)
	fmt.Fprintf(c.out, "health  alloc=%dMB sys=%dMB goroutines=%d data=%s\n", h.AllocMB, h.SysMB, h.Goroutines, h.DataSize())
	return nil
}

func (c *Commands) MetricsCleanup(ctx context.Context, days int) error {
	affected, err := c.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(c.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}

func (c *Commands) date(s string) (time.Time, error) {
	if s == "" {
		return c.assistant.Today(), nil
	}
	return domain.ParseDate(s)
}

func (c *Commands) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
