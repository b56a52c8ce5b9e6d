package domain

import (
	"math"
	"strings"
	"time"
)

type WeightGoal string

const (
	GoalWeightLoss    WeightGoal = "weight_loss"
	GoalWeightGain    WeightGoal = "weight_gain"
	GoalMaintain      WeightGoal = "maintain"
	GoalMuscleGain    WeightGoal = "muscle_gain"
	GoalGeneralHealth WeightGoal = "general_health"
)

// ParseWeightGoal maps loose user or model wording onto a goal. Unknown
// values yield "".
func ParseWeightGoal(s string) WeightGoal {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch {
	case v == "":
		return ""
	case strings.Contains(v, "muscle"):
		return GoalMuscleGain
	case strings.Contains(v, "loss"), strings.Contains(v, "lose"):
		return GoalWeightLoss
	case strings.Contains(v, "gain"):
		return GoalWeightGain
	case strings.Contains(v, "maint"):
		return GoalMaintain
	case strings.Contains(v, "health"):
		return GoalGeneralHealth
	}
	return ""
}

// Label renders the goal for humans, e.g. "Weight Loss".
func (g WeightGoal) Label() string {
	switch g {
	case GoalWeightLoss:
		return "Weight Loss"
	case GoalWeightGain:
		return "Weight Gain"
	case GoalMaintain:
		return "Maintain Weight"
	case GoalMuscleGain:
		return "Muscle Gain"
	case GoalGeneralHealth:
		return "General Health"
	}
	return "Not specified"
}

type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal weight"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

// CalculateBMI returns weight / height² rounded to one decimal. ok is false
// when either measurement is missing or not positive.
func CalculateBMI(heightCM, weightKG float64) (bmi float64, ok bool) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, false
	}
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*10) / 10, true
}

// CategorizeBMI maps a BMI onto its band: <18.5, 18.5–24.9, 25–29.9, ≥30.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// UserProfile holds what is known about a user's body and diet.
type UserProfile struct {
	UserID             string     `json:"user_id"`
	Name               string     `json:"name"`
	Age                int        `json:"age"`
	Gender             string     `json:"gender"`
	HeightCM           *float64   `json:"height,omitempty"`
	WeightKG           *float64   `json:"weight,omitempty"`
	BMI                *float64   `json:"bmi,omitempty"`
	HealthConditions   []string   `json:"health_conditions"`
	Allergies          []string   `json:"allergies"`
	DietaryPreferences []string   `json:"dietary_preferences"`
	WeightGoal         WeightGoal `json:"weight_goal,omitempty"`
	ActivityLevel      string     `json:"activity_level,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// RefreshBMI recomputes BMI from height and weight when both are known.
func (p *UserProfile) RefreshBMI() {
	if p.HeightCM == nil || p.WeightKG == nil {
		return
	}
	if bmi, ok := CalculateBMI(*p.HeightCM, *p.WeightKG); ok {
		p.BMI = &bmi
	}
}

// Complete reports whether the fields needed to save a profile are present.
func (p UserProfile) Complete() bool {
	return p.Name != "" && p.Age > 0 && p.Gender != ""
}

// HasBodyMetrics reports whether both height and weight are known.
func (p UserProfile) HasBodyMetrics() bool {
	return p.HeightCM != nil && p.WeightKG != nil
}
