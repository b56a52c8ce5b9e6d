package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCalculateBMI(t *testing.T) {
	tests := []struct {
		height, weight float64
		want           float64
		ok             bool
		category       BMICategory
	}{
		{170, 65, 22.5, true, BMINormal},
		{180, 55, 17, true, BMIUnderweight},
		{165, 75, 27.5, true, BMIOverweight},
		{160, 90, 35.2, true, BMIObese},
		{0, 70, 0, false, ""},
		{170, -1, 0, false, ""},
	}
	for _, tt := range tests {
		got, ok := CalculateBMI(tt.height, tt.weight)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CalculateBMI(%v, %v) = %v, %v; want %v, %v", tt.height, tt.weight, got, ok, tt.want, tt.ok)
		}
		if ok && CategorizeBMI(got) != tt.category {
			t.Errorf("CategorizeBMI(%v) = %q; want %q", got, CategorizeBMI(got), tt.category)
		}
	}

	// Band edges belong to the upper band.
	for bmi, want := range map[float64]BMICategory{18.5: BMINormal, 25: BMIOverweight, 30: BMIObese} {
		if got := CategorizeBMI(bmi); got != want {
			t.Errorf("CategorizeBMI(%v) = %q; want %q", bmi, got, want)
		}
	}
}

func TestParseWeightGoal(t *testing.T) {
	for in, want := range map[string]WeightGoal{
		"Weight Loss":     GoalWeightLoss,
		"lose weight":     GoalWeightLoss,
		"gain-weight":     GoalWeightGain,
		"build muscle":    GoalMuscleGain,
		"maintenance":     GoalMaintain,
		"general health":  GoalGeneralHealth,
		"  ":              "",
		"become a wizard": "",
	} {
		if got := ParseWeightGoal(in); got != want {
			t.Errorf("ParseWeightGoal(%q) = %q; want %q", in, got, want)
		}
	}
	if GoalWeightLoss.Label() != "Weight Loss" || WeightGoal("").Label() != "Not specified" {
		t.Error("Unexpected goal labels")
	}
}

func TestRefreshBMI(t *testing.T) {
	height := 170.0
	p := UserProfile{HeightCM: &height}
	p.RefreshBMI()
	if p.BMI != nil || p.HasBodyMetrics() {
		t.Fatal("Expected no BMI without weight")
	}

	weight := 65.0
	p.WeightKG = &weight
	p.RefreshBMI()
	if p.BMI == nil || *p.BMI != 22.5 {
		t.Errorf("Expected BMI 22.5, got %v", p.BMI)
	}
	if p.Complete() {
		t.Error("Profile without name, age and gender must not be complete")
	}
}

func TestMealPlan(t *testing.T) {
	t.Run("EmptySlotsMarshalAsArrays", func(t *testing.T) {
		var p MealPlan
		p.Append(SectionLunch, "Salad")
		data, err := json.Marshal(p.Normalize())
		if err != nil {
			t.Fatal(err)
		}
		want := `{"breakfast":[],"lunch":["Salad"],"dinner":[],"snacks":[],"notes":[]}`
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
	})

	t.Run("IsEmpty", func(t *testing.T) {
		p := NewMealPlan()
		if !p.IsEmpty() {
			t.Error("New plan should be empty")
		}
		p.Append(SectionNotes, "Drink water")
		if p.IsEmpty() {
			t.Error("Plan with a note is not empty")
		}
		if p.Items(Section("brunch")) != nil {
			t.Error("Unknown section should have no items")
		}
	})
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	if err != nil || FormatDate(d) != "2025-02-28" {
		t.Fatalf("ParseDate round trip failed: %v %v", d, err)
	}
	if _, err := ParseDate("28/02/2025"); err == nil {
		t.Error("Expected error for non-ISO date")
	}

	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, 2, 28, 23, 30, 0, 0, loc)
	if got := DateOf(late); !got.Equal(d) || got.Location() != time.UTC {
		t.Errorf("DateOf should keep the local calendar date, got %v", got)
	}
}
