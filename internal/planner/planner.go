package planner

import (
	"context"
	"fmt"
	"time"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"
)

const (
	planMaxTokens   = 500
	modifyMaxTokens = 600
)

// PlanResult is a decoded plan together with the cost of producing it.
// Plans returned here are not stored anywhere yet.
type PlanResult struct {
	Plan domain.MealPlan
	Meta shared.AgentMeta
}

// Planner handles the generation of meal plans.
type Planner struct {
	textGen llm.TextGenerator
	opts    codec.GenerationOptions
}

// NewPlanner creates a new Planner instance. opts fixes the clock and the
// variety choice; the zero value uses real ones.
func NewPlanner(textGen llm.TextGenerator, opts codec.GenerationOptions) *Planner {
	return &Planner{
		textGen: textGen,
		opts:    opts,
	}
}

// GeneratePlan asks the model for a one-day plan tailored to profile.
// previousFeedback is the raw text of the user's latest feedback, if any.
func (p *Planner) GeneratePlan(ctx context.Context, profile *domain.UserProfile, previousFeedback string) (PlanResult, error) {
	if profile == nil {
		return PlanResult{}, domain.ErrProfileMissing
	}

	prompt, err := codec.GenerationPrompt(*profile, previousFeedback, p.opts)
	if err != nil {
		return PlanResult{}, err
	}

	return p.run(ctx, shared.AgentPlanner, prompt, planMaxTokens)
}

// ModifyPlan asks for a variant of plan that avoids unavailable items and
// draws on available ones.
func (p *Planner) ModifyPlan(ctx context.Context, plan domain.MealPlan, unavailable, available []string) (PlanResult, error) {
	prompt, err := codec.ModificationPrompt(plan, unavailable, available)
	if err != nil {
		return PlanResult{}, err
	}

	return p.run(ctx, shared.AgentPlanModifier, prompt, modifyMaxTokens)
}

func (p *Planner) run(ctx context.Context, agent, prompt string, maxTokens int) (PlanResult, error) {
	start := time.Now()

	resp, err := p.textGen.GenerateContent(ctx, prompt, maxTokens)
	meta := shared.AgentMeta{
		AgentName: agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		meta.Failed = true
		return PlanResult{Meta: meta}, fmt.Errorf("failed to generate meal plan: %w", llm.AsGenerationFailure(err))
	}

	return PlanResult{
		Plan: codec.DecodeMealPlan(codec.NormalizeMarkup(resp.Content)),
		Meta: meta,
	}, nil
}
