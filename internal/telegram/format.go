package telegram

import (
	"fmt"
	"strings"

	"ai-diet-planner/internal/daily"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/feedback"
)

var sectionHeaders = map[domain.Section]string{
	domain.SectionBreakfast: "🍳 *Breakfast*",
	domain.SectionLunch:     "🥗 *Lunch*",
	domain.SectionDinner:    "🍲 *Dinner*",
	domain.SectionSnacks:    "🍎 *Snacks*",
	domain.SectionNotes:     "📝 *Notes*",
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes the characters legacy Telegram Markdown treats
// as markup.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatPlanMarkdown(date string, plan domain.MealPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Diet plan for %s*\n", date)
	for _, s := range domain.Sections {
		items := plan.Items(s)
		if len(items) == 0 {
			continue
		}
		sb.WriteString("\n" + sectionHeaders[s] + "\n")
		for _, item := range items {
			sb.WriteString("• " + escapeMarkdown(item) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatResultMarkdown(res daily.Result) string {
	switch {
	case res.Status == daily.StatusError:
		return "⚠️ " + escapeMarkdown(res.Message)
	case res.MealPlan != nil && !res.MealPlan.IsEmpty():
		text := formatPlanMarkdown(res.Date, *res.MealPlan)
		if res.RequiresConfirmation {
			text += "\n\n_Confirm this plan or ask for a new one._"
		} else if res.Action == daily.ActionCreatePlan {
			text = "✅ *Plan saved!*\n\n" + text
		}
		return text
	case res.Analysis != nil:
		return "💬 " + escapeMarkdown(res.Message)
	}
	return escapeMarkdown(res.Message)
}

func formatStatusMarkdown(r daily.StatusReport) string {
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 *Status for %s*\n\n", domain.FormatDate(r.Status.Date))
	fmt.Fprintf(&sb, "• Plan: %s\n", yesNo(r.Status.HasPlan))
	fmt.Fprintf(&sb, "• Feedback: %s\n", yesNo(r.Status.HasFeedback))
	if r.Status.LastInteraction != nil {
		fmt.Fprintf(&sb, "• Last seen: %s\n", domain.FormatDate(*r.Status.LastInteraction))
	}
	sb.WriteString("\n" + escapeMarkdown(r.Greeting))
	if r.FeedbackPrompt != "" {
		sb.WriteString("\n\n" + escapeMarkdown(r.FeedbackPrompt))
	}
	return sb.String()
}

func formatSummaryMarkdown(s feedback.Summary) string {
	if s.Count == 0 {
		return "📈 *Feedback summary*\n\n_No feedback yet_"
	}

	var sb strings.Builder
	sb.WriteString("📈 *Feedback summary*\n\n")
	fmt.Fprintf(&sb, "• Entries: %d\n", s.Count)
	fmt.Fprintf(&sb, "• Average adherence: %.0f%%\n", s.AverageAdherence*100)
	for _, sentiment := range []domain.Sentiment{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative} {
		if n := s.Sentiments[sentiment]; n > 0 {
			fmt.Fprintf(&sb, "• %s: %d\n", sentiment, n)
		}
	}
	if len(s.TopSuggestions) > 0 {
		sb.WriteString("\n💡 *Top suggestions*\n")
		for _, sug := range s.TopSuggestions {
			sb.WriteString("• " + escapeMarkdown(sug) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
