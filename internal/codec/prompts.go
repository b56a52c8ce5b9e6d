package codec

import (
	"bytes"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"text/template"
	"time"

	"ai-diet-planner/internal/domain"
)

var (
	//go:embed generation_prompt.md
	generationPrompt string
	//go:embed modification_prompt.md
	modificationPrompt string
	//go:embed feedback_prompt.md
	feedbackPrompt string
	//go:embed profile_prompt.md
	profilePrompt string
)

var (
	generationTmpl   = template.Must(template.New("generation").Parse(generationPrompt))
	modificationTmpl = template.Must(template.New("modification").Parse(modificationPrompt))
	feedbackTmpl     = template.Must(template.New("feedback").Parse(feedbackPrompt))
	profileTmpl      = template.Must(template.New("profile").Parse(profilePrompt))
)

// VarietyInstructions are rotated into generation prompts so repeated
// requests do not converge on the same plan.
var VarietyInstructions = []string{
	"Create a diverse and varied meal plan with different food combinations.",
	"Use a wide variety of ingredients and cooking methods for maximum nutritional diversity.",
	"Include different types of proteins, grains, and vegetables for a balanced approach.",
	"Vary the meal styles and preparation methods to keep the diet interesting.",
	"Create a unique meal combination that differs from typical diet plans.",
}

var bmiGuidance = map[domain.BMICategory]string{
	domain.BMIUnderweight: "Focus on nutrient-dense, calorie-rich foods.",
	domain.BMINormal:      "Maintain balanced nutrition.",
	domain.BMIOverweight:  "Focus on portion control and weight management.",
	domain.BMIObese:       "Focus on a calorie deficit and weight loss.",
}

var goalGuidance = map[domain.WeightGoal]string{
	domain.GoalWeightLoss:    "Create a calorie deficit with nutrient-dense, low-calorie foods, high protein, fiber-rich meals.",
	domain.GoalWeightGain:    "Include calorie-dense, nutrient-rich foods, healthy fats, protein-rich snacks.",
	domain.GoalMaintain:      "Focus on balanced macronutrients, portion control, regular meal timing.",
	domain.GoalMuscleGain:    "High protein intake, complex carbohydrates, healthy fats, post-workout nutrition.",
	domain.GoalGeneralHealth: "Emphasize whole foods, variety, balanced nutrition, hydration.",
}

// GenerationOptions holds the sources of non-determinism in a generation
// prompt. Zero values fall back to the wall clock and math/rand.
type GenerationOptions struct {
	Now    func() time.Time
	Choose func(n int) int
}

func (o GenerationOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o GenerationOptions) choose(n int) int {
	if o.Choose != nil {
		if i := o.Choose(n); i >= 0 && i < n {
			return i
		}
		return 0
	}
	return rand.IntN(n)
}

type generationPromptData struct {
	Name               string
	AgeDescription     string
	Gender             string
	Timestamp          string
	HealthConditions   string
	Allergies          string
	DietaryPreferences string
	Height             string
	Weight             string
	BMI                string
	BMICategory        domain.BMICategory
	BMIGuidance        string
	WeightGoal         string
	GoalGuidance       string
	PreviousFeedback   string
	Variety            string
}

// GenerationPrompt builds the plan request for profile. previousFeedback is
// the raw text of the most recent feedback, or "" when there is none.
func GenerationPrompt(profile domain.UserProfile, previousFeedback string, opts GenerationOptions) (string, error) {
	data := generationPromptData{
		Name:               orDefault(profile.Name, "User"),
		AgeDescription:     "an adult",
		Gender:             orDefault(profile.Gender, "person"),
		Timestamp:          opts.now().Format("2006-01-02 15:04:05"),
		HealthConditions:   joinOrNone(profile.HealthConditions),
		Allergies:          joinOrNone(profile.Allergies),
		DietaryPreferences: joinOrNone(profile.DietaryPreferences),
		Height:             "Not provided",
		Weight:             "Not provided",
		BMI:                "Not calculated",
		WeightGoal:         profile.WeightGoal.Label(),
		PreviousFeedback:   orDefault(strings.TrimSpace(previousFeedback), "None"),
		Variety:            VarietyInstructions[opts.choose(len(VarietyInstructions))],
	}
	if profile.Age > 0 {
		data.AgeDescription = fmt.Sprintf("a %d-year-old", profile.Age)
	}
	if profile.HeightCM != nil {
		data.Height = formatFloat(*profile.HeightCM) + " cm"
	}
	if profile.WeightKG != nil {
		data.Weight = formatFloat(*profile.WeightKG) + " kg"
	}

	bmi := profile.BMI
	if bmi == nil && profile.HasBodyMetrics() {
		if v, ok := domain.CalculateBMI(*profile.HeightCM, *profile.WeightKG); ok {
			bmi = &v
		}
	}
	if bmi != nil {
		cat := domain.CategorizeBMI(*bmi)
		data.BMI = formatFloat(*bmi)
		data.BMICategory = cat
		data.BMIGuidance = bmiGuidance[cat]
	}

	goal := profile.WeightGoal
	if _, ok := goalGuidance[goal]; !ok {
		goal = domain.GoalGeneralHealth
	}
	data.GoalGuidance = goalGuidance[goal]

	return render(generationTmpl, data)
}

// ModificationPrompt asks for a variant of original that avoids unavailable
// and prefers available items.
func ModificationPrompt(original domain.MealPlan, unavailable, available []string) (string, error) {
	var sb strings.Builder
	for _, s := range domain.MealSlots {
		items := original.Items(s)
		if len(items) == 0 {
			continue
		}
		sb.WriteString(strings.ToUpper(string(s)) + ":\n")
		for _, item := range items {
			sb.WriteString("  - " + item + "\n")
		}
		sb.WriteString("\n")
	}
	if len(original.Notes) > 0 {
		sb.WriteString("NOTES:\n")
		for _, note := range original.Notes {
			sb.WriteString("  - " + note + "\n")
		}
		sb.WriteString("\n")
	}

	return render(modificationTmpl, struct {
		OriginalPlan string
		Unavailable  string
		Available    string
	}{
		OriginalPlan: sb.String(),
		Unavailable:  joinOrNone(unavailable),
		Available:    joinOrNone(available),
	})
}

// FeedbackPrompt asks for a JSON analysis of feedback.
func FeedbackPrompt(feedback string) (string, error) {
	return render(feedbackTmpl, struct{ Feedback string }{Feedback: feedback})
}

// ProfilePrompt asks for the profile fields stated in message as JSON.
func ProfilePrompt(message string) (string, error) {
	return render(profileTmpl, struct{ Message string }{Message: message})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
