package feedback

import (
	"context"
	"fmt"
	"time"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"
)

const analysisMaxTokens = 200

type AnalysisResult struct {
	Analysis domain.FeedbackAnalysis
	Meta     shared.AgentMeta
}

// Analyst turns free-text feedback into a FeedbackAnalysis.
type Analyst struct {
	textGen llm.TextGenerator
}

func NewAnalyst(textGen llm.TextGenerator) *Analyst {
	return &Analyst{textGen: textGen}
}

// Analyze fails with domain.ErrGenerationFailure when the model call fails
// and with domain.ErrParseFailure when its answer is not a usable analysis.
// It never invents a score.
func (a *Analyst) Analyze(ctx context.Context, feedbackText string) (AnalysisResult, error) {
	start := time.Now()

	prompt, err := codec.FeedbackPrompt(feedbackText)
	if err != nil {
		return AnalysisResult{}, err
	}

	resp, err := a.textGen.GenerateContent(ctx, prompt, analysisMaxTokens)
	meta := shared.AgentMeta{
		AgentName: shared.AgentFeedbackAnalyst,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		meta.Failed = true
		return AnalysisResult{Meta: meta}, fmt.Errorf("failed to analyze feedback: %w", llm.AsGenerationFailure(err))
	}

	analysis, err := codec.DecodeFeedbackAnalysis(resp.Content)
	if err != nil {
		meta.Failed = true
		return AnalysisResult{Meta: meta}, fmt.Errorf("failed to parse feedback analysis: %w. Response: %s", err, resp.Content)
	}

	return AnalysisResult{Analysis: analysis, Meta: meta}, nil
}
