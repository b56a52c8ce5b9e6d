package shared

import (
	"time"
)

// Agent names used when recording executions.
const (
	AgentPlanner          = "Planner"
	AgentPlanModifier     = "PlanModifier"
	AgentFeedbackAnalyst  = "FeedbackAnalyst"
	AgentProfileCollector = "ProfileCollector"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	Failed    bool
}
