package domain

import "time"

// Section identifies one block of the five-section meal plan text format.
type Section string

const (
	SectionBreakfast Section = "breakfast"
	SectionLunch     Section = "lunch"
	SectionDinner    Section = "dinner"
	SectionSnacks    Section = "snacks"
	SectionNotes     Section = "notes"
)

// Sections lists every section in display order.
var Sections = []Section{SectionBreakfast, SectionLunch, SectionDinner, SectionSnacks, SectionNotes}

// MealSlots are the sections that hold food items.
var MealSlots = []Section{SectionBreakfast, SectionLunch, SectionDinner, SectionSnacks}

// MealPlan is a single day's plan. Every slot is an ordered list and is
// never nil, so empty slots marshal as [].
type MealPlan struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
	Notes     []string `json:"notes"`
}

// NewMealPlan returns a plan with all slots empty.
func NewMealPlan() MealPlan {
	return MealPlan{
		Breakfast: []string{},
		Lunch:     []string{},
		Dinner:    []string{},
		Snacks:    []string{},
		Notes:     []string{},
	}
}

// Items returns the items stored under s.
func (p MealPlan) Items(s Section) []string {
	switch s {
	case SectionBreakfast:
		return p.Breakfast
	case SectionLunch:
		return p.Lunch
	case SectionDinner:
		return p.Dinner
	case SectionSnacks:
		return p.Snacks
	case SectionNotes:
		return p.Notes
	}
	return nil
}

// Append adds item to the end of section s.
func (p *MealPlan) Append(s Section, item string) {
	switch s {
	case SectionBreakfast:
		p.Breakfast = append(p.Breakfast, item)
	case SectionLunch:
		p.Lunch = append(p.Lunch, item)
	case SectionDinner:
		p.Dinner = append(p.Dinner, item)
	case SectionSnacks:
		p.Snacks = append(p.Snacks, item)
	case SectionNotes:
		p.Notes = append(p.Notes, item)
	}
}

// IsEmpty reports whether no section holds any item.
func (p MealPlan) IsEmpty() bool {
	for _, s := range Sections {
		if len(p.Items(s)) > 0 {
			return false
		}
	}
	return true
}

// Normalize replaces nil slots with empty ones, e.g. after decoding JSON
// written by an older version.
func (p MealPlan) Normalize() MealPlan {
	out := NewMealPlan()
	for _, s := range Sections {
		for _, item := range p.Items(s) {
			out.Append(s, item)
		}
	}
	return out
}

// PlanRecord is a confirmed plan as kept by the history store.
type PlanRecord struct {
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Plan      MealPlan  `json:"meal_plan"`
	CreatedAt time.Time `json:"created_at"`
}
