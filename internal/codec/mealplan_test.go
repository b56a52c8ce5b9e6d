package codec

import (
	"reflect"
	"strings"
	"testing"

	"ai-diet-planner/internal/domain"
)

func TestDecodeMealPlan(t *testing.T) {
	t.Run("Example", func(t *testing.T) {
		got := DecodeMealPlan("BREAKFAST:\n- Oats with berries\nLUNCH:\n- Grilled chicken salad\n")
		want := domain.MealPlan{
			Breakfast: []string{"Oats with berries"},
			Lunch:     []string{"Grilled chicken salad"},
			Dinner:    []string{},
			Snacks:    []string{},
			Notes:     []string{},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		got := DecodeMealPlan("")
		for _, s := range domain.Sections {
			items := got.Items(s)
			if items == nil {
				t.Errorf("Expected %s to be empty, got nil", s)
			}
			if len(items) != 0 {
				t.Errorf("Expected %s to be empty, got %v", s, items)
			}
		}
	})

	t.Run("NoStructure", func(t *testing.T) {
		got := DecodeMealPlan("Sure! Here is something nice.\nEnjoy your day.")
		if !got.IsEmpty() {
			t.Errorf("Expected empty plan, got %+v", got)
		}
	})

	t.Run("BulletMarkers", func(t *testing.T) {
		text := "dinner:\n- Salmon\n• Rice\n* Broccoli\n-\n-   indented\n"
		got := DecodeMealPlan(text)
		want := []string{"Salmon", "Rice", "Broccoli", "  indented"}
		if !reflect.DeepEqual(got.Dinner, want) {
			t.Errorf("Expected %q, got %q", want, got.Dinner)
		}
	})

	t.Run("UnbulletedLines", func(t *testing.T) {
		text := "SNACKS:\nApple slices with peanut butter\nHave lunch leftovers\nNOTES:\nDrink water"
		got := DecodeMealPlan(text)
		if !reflect.DeepEqual(got.Snacks, []string{"Apple slices with peanut butter"}) {
			t.Errorf("Unexpected snacks: %q", got.Snacks)
		}
		if !reflect.DeepEqual(got.Notes, []string{"Drink water"}) {
			t.Errorf("Unexpected notes: %q", got.Notes)
		}
	})

	t.Run("LinesBeforeHeaderDropped", func(t *testing.T) {
		got := DecodeMealPlan("Here is your plan\n- stray\n\nBREAKFAST (8 AM):\n- Eggs\n")
		if !reflect.DeepEqual(got.Breakfast, []string{"Eggs"}) {
			t.Errorf("Unexpected breakfast: %q", got.Breakfast)
		}
		if len(got.Lunch)+len(got.Dinner)+len(got.Snacks)+len(got.Notes) != 0 {
			t.Errorf("Expected stray lines to be dropped, got %+v", got)
		}
	})

	t.Run("CRLF", func(t *testing.T) {
		got := DecodeMealPlan("LUNCH:\r\n- Soup\r\n")
		if !reflect.DeepEqual(got.Lunch, []string{"Soup"}) {
			t.Errorf("Unexpected lunch: %q", got.Lunch)
		}
	})
}

func TestMealPlanRoundTrip(t *testing.T) {
	plans := []domain.MealPlan{
		domain.NewMealPlan(),
		{
			Breakfast: []string{"Oats with berries", "Green tea"},
			Lunch:     []string{"Grilled chicken salad"},
			Dinner:    []string{"Lentil curry with 1 cup brown rice", "- a dash of lime"},
			Snacks:    []string{"Greek yogurt", "Lunchbox carrots"},
			Notes:     []string{"Drink 2L water", "Dinner before 8pm"},
		},
		{
			Breakfast: []string{},
			Lunch:     []string{},
			Dinner:    []string{"Tofu stir fry"},
			Snacks:    []string{},
			Notes:     []string{"• keep it light"},
		},
	}

	for i, p := range plans {
		got := DecodeMealPlan(EncodeMealPlan(p))
		if !reflect.DeepEqual(got, p) {
			t.Errorf("plan %d: round trip mismatch\nwant %+v\ngot  %+v", i, p, got)
		}
	}
}

func TestFormatMealPlan(t *testing.T) {
	plan := domain.NewMealPlan()
	plan.Breakfast = []string{"Oats"}
	plan.Notes = []string{"Hydrate"}

	out := FormatMealPlan(plan)
	if !strings.Contains(out, "Breakfast:\n• Oats") {
		t.Errorf("Missing breakfast block in %q", out)
	}
	if strings.Contains(out, "Lunch") {
		t.Errorf("Empty sections should be skipped: %q", out)
	}
	if !strings.HasSuffix(out, "• Hydrate") {
		t.Errorf("Expected notes last, got %q", out)
	}
}
