package daily

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-diet-planner/internal/domain"
)

type Action string

const (
	ActionCollectProfile   Action = "collect_profile"
	ActionCollectFeedback  Action = "collect_feedback"
	ActionCreatePlan       Action = "create_plan"
	ActionShowExistingPlan Action = "show_existing_plan"
)

// Keyword lexicons, matched as case-insensitive substrings.
var (
	FeedbackKeywords = []string{
		"feedback", "give feedback", "provide feedback", "tell you about",
		"how was", "how did", "followed", "didn't follow",
	}
	PlanKeywords = []string{
		"diet plan", "meal plan", "food", "eat", "breakfast", "lunch",
		"dinner", "today", "tomorrow",
	}
	ViewKeywords = []string{
		"show", "view", "see", "my plan", "today's plan", "current plan",
	}
)

func containsAny(message string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(message, k) {
			return true
		}
	}
	return false
}

// Signal is what routing rules look at. Message is already lower-cased.
type Signal struct {
	HasProfile bool
	Status     Status
	Message    string
}

type rule struct {
	name   string
	match  func(Signal) bool
	action Action
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		name:   "profile_missing",
		match:  func(s Signal) bool { return !s.HasProfile },
		action: ActionCollectProfile,
	},
	{
		name:   "feedback_keywords",
		match:  func(s Signal) bool { return containsAny(s.Message, FeedbackKeywords) },
		action: ActionCollectFeedback,
	},
	{
		name: "needs_plan",
		match: func(s Signal) bool {
			return !s.Status.HasPlan || s.Status.IsNewDay || containsAny(s.Message, PlanKeywords)
		},
		action: ActionCreatePlan,
	},
	{
		name: "view_plan",
		match: func(s Signal) bool {
			return s.Status.HasPlan && !s.Status.IsNewDay && containsAny(s.Message, ViewKeywords)
		},
		action: ActionShowExistingPlan,
	},
	{
		name:   "default",
		match:  func(Signal) bool { return true },
		action: ActionCreatePlan,
	},
}

// Decide applies the rule table to sig.
func Decide(sig Signal) (Action, string) {
	for _, r := range rules {
		if r.match(sig) {
			return r.action, r.name
		}
	}
	return ActionCreatePlan, "default"
}

// Decision is the routing outcome for one message. Status is zero and
// Profile nil when the user has no profile yet.
type Decision struct {
	Action  Action
	Rule    string
	Status  Status
	Profile *domain.UserProfile
}

// Router picks an action for each incoming message.
type Router struct {
	store    HistoryStore
	resolver *Resolver
}

func NewRouter(store HistoryStore, loc *time.Location) *Router {
	return &Router{store: store, resolver: NewResolver(store, loc)}
}

// Route decides what to do with message for userID on date. It reads the
// history store but never writes to it.
func (r *Router) Route(ctx context.Context, userID, message string, date time.Time) (Decision, error) {
	profile, err := r.store.GetUserProfile(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	sig := Signal{HasProfile: profile != nil, Message: strings.ToLower(message)}
	if profile != nil {
		if sig.Status, err = r.resolver.Resolve(ctx, userID, date); err != nil {
			return Decision{}, err
		}
	}

	action, name := Decide(sig)
	return Decision{Action: action, Rule: name, Status: sig.Status, Profile: profile}, nil
}
