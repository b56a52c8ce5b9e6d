package planner

import (
	"context"
	"strings"
	"testing"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/llm"
)

// TestPlanner_LiveEval performs a real LLM call and checks the model keeps
// to the section format and the user's restrictions.
// Run with: go test -v ./internal/planner -run TestPlanner_LiveEval
func TestPlanner_LiveEval(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live eval in short mode")
	}

	ctx := context.Background()
	cfg, err := config.NewFromEnv()
	if err != nil || cfg.GroqAPIKey == "" {
		t.Skip("Skipping: No API keys found in environment")
	}

	p := NewPlanner(llm.NewGroqClient(cfg, 0.7), codec.GenerationOptions{})

	height, weight := 172.0, 90.0
	profile := &domain.UserProfile{
		Name:               "Eval",
		Age:                38,
		Gender:             "female",
		HeightCM:           &height,
		WeightKG:           &weight,
		Allergies:          []string{"peanuts"},
		DietaryPreferences: []string{"vegetarian"},
		WeightGoal:         domain.GoalWeightLoss,
	}

	res, err := p.GeneratePlan(ctx, profile, "Breakfast was too heavy")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	for _, s := range domain.MealSlots {
		if len(res.Plan.Items(s)) == 0 {
			t.Errorf("FAIL: section %s came back empty", s)
		}
	}

	for _, s := range domain.MealSlots {
		for _, item := range res.Plan.Items(s) {
			lower := strings.ToLower(item)
			for _, banned := range []string{"peanut", "chicken", "beef", "pork", "salmon"} {
				if strings.Contains(lower, banned) {
					t.Errorf("FAIL: %s item %q mentions %q", s, item, banned)
				}
			}
		}
	}

	t.Logf("Usage: %+v", res.Meta.Usage)
}
