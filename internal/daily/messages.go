package daily

import (
	"fmt"
	"strings"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/domain"
)

const (
	generationApology = "I'm sorry, I couldn't reach the meal planning service just now. Please try again in a moment."
	parseApology      = "I'm sorry, I couldn't make sense of what I generated. Please ask me again."
)

// Greeting returns the opening line for a user in status st.
func Greeting(st Status) string {
	switch {
	case st.LastInteraction == nil:
		return "Hi there! Let me create your first personalized diet plan."
	case st.DaysSinceLastInteraction < 0:
		return fmt.Sprintf("Looking back at %s? Let me show you what we have for that day.", domain.FormatDate(st.Date))
	case st.DaysSinceLastInteraction == 0:
		switch {
		case st.HasPlan && !st.HasFeedback:
			return "Welcome back! I see you have today's diet plan. How is it going so far?"
		case st.HasPlan && st.HasFeedback:
			return "Great to see you again! I have your feedback from today. Would you like me to create tomorrow's plan based on your feedback?"
		}
		return "Welcome back! Let me create today's personalized diet plan for you."
	case st.DaysSinceLastInteraction == 1:
		return "Welcome back! I missed you yesterday. Let me check how you're doing and create today's diet plan."
	}
	return fmt.Sprintf("Welcome back! It's been %d days since we last connected. Let me create a fresh diet plan for you today.", st.DaysSinceLastInteraction)
}

// FeedbackPrompt asks for feedback in words that fit how long the user
// has been away.
func FeedbackPrompt(st Status) string {
	switch st.DaysSinceLastInteraction {
	case 0:
		return "How did you follow today's diet plan? Please share your feedback so I can improve tomorrow's recommendations."
	case 1:
		return "I noticed you haven't provided feedback for yesterday's diet plan. How did it go? This helps me create better recommendations for you."
	}
	if st.LastInteraction == nil {
		return "Once you've tried a plan, tell me how it went so I can improve my recommendations."
	}
	return fmt.Sprintf("It's been %d days since we last connected. How have you been following your diet plans? I'd love to hear your feedback to improve my recommendations.", st.DaysSinceLastInteraction)
}

func planMessage(date string, plan domain.MealPlan) string {
	if plan.IsEmpty() {
		return fmt.Sprintf("I generated a plan for %s but couldn't find any meals in it. You can ask me for a new one.", date)
	}
	return fmt.Sprintf("Here's your personalized diet plan for %s:\n\n%s\n\nReply to confirm it or ask for a new one.", date, codec.FormatMealPlan(plan))
}

func existingPlanMessage(date string, plan domain.MealPlan) string {
	return fmt.Sprintf("Here's your diet plan for %s:\n\n%s", date, codec.FormatMealPlan(plan))
}

func feedbackMessage(a domain.FeedbackAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Thanks for your feedback! Adherence: %.0f%% (%s).", a.AdherenceScore*100, a.Sentiment)
	if len(a.PositiveAspects) > 0 {
		fmt.Fprintf(&sb, "\nWhat went well: %s.", strings.Join(a.PositiveAspects, "; "))
	}
	if len(a.NegativeAspects) > 0 {
		fmt.Fprintf(&sb, "\nWhat was hard: %s.", strings.Join(a.NegativeAspects, "; "))
	}
	if len(a.Suggestions) > 0 {
		fmt.Fprintf(&sb, "\nFor next time: %s.", strings.Join(a.Suggestions, "; "))
	}
	return sb.String()
}
