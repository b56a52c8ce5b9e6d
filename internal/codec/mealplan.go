package codec

import (
	"strings"

	"ai-diet-planner/internal/domain"
)

// sectionHeaders pairs each header keyword with its section, in the order
// headers are tested.
var sectionHeaders = []struct {
	keyword string
	section domain.Section
}{
	{"BREAKFAST", domain.SectionBreakfast},
	{"LUNCH", domain.SectionLunch},
	{"DINNER", domain.SectionDinner},
	{"SNACKS", domain.SectionSnacks},
	{"NOTES", domain.SectionNotes},
}

var bulletMarkers = []string{"-", "•", "*"}

// DecodeMealPlan reads the five-section text format line by line. It never
// fails: text without any recognizable header yields an all-empty plan.
func DecodeMealPlan(text string) domain.MealPlan {
	plan := domain.NewMealPlan()
	var current domain.Section

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		if s, ok := headerSection(upper); ok {
			current = s
			continue
		}
		if current == "" {
			continue
		}

		if item, ok := stripBullet(line); ok {
			if item != "" {
				plan.Append(current, item)
			}
			continue
		}

		if !mentionsHeader(upper) {
			plan.Append(current, line)
		}
	}

	return plan
}

// EncodeMealPlan renders plan in the same format DecodeMealPlan reads. All
// five headers are always written.
func EncodeMealPlan(plan domain.MealPlan) string {
	var sb strings.Builder
	for i, h := range sectionHeaders {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(h.keyword + ":\n")
		for _, item := range plan.Items(h.section) {
			sb.WriteString("- " + item + "\n")
		}
	}
	return sb.String()
}

// FormatMealPlan renders a plan for people. Empty sections are left out.
func FormatMealPlan(plan domain.MealPlan) string {
	var sb strings.Builder
	for _, h := range sectionHeaders {
		items := plan.Items(h.section)
		if len(items) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(sectionTitle(h.section) + ":\n")
		for _, item := range items {
			sb.WriteString("• " + item + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sectionTitle(s domain.Section) string {
	name := string(s)
	return strings.ToUpper(name[:1]) + name[1:]
}

func headerSection(upper string) (domain.Section, bool) {
	for _, h := range sectionHeaders {
		if strings.HasPrefix(upper, h.keyword) {
			return h.section, true
		}
	}
	return "", false
}

func mentionsHeader(upper string) bool {
	for _, h := range sectionHeaders {
		if strings.Contains(upper, h.keyword) {
			return true
		}
	}
	return false
}

// stripBullet removes a leading marker and at most one space after it.
func stripBullet(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if rest, ok := strings.CutPrefix(line, m); ok {
			return strings.TrimPrefix(rest, " "), true
		}
	}
	return "", false
}
