package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ai-diet-planner/internal/domain"

	"github.com/kaptinlin/jsonrepair"
)

// decodeObject decodes the span from the first '{' to the last '}' of text.
// Text that does not decode as-is gets one structural repair pass; whatever
// still fails is a parse failure.
func decodeObject[T any](text string) (T, error) {
	var zero T

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return zero, fmt.Errorf("%w: no JSON object in response", domain.ErrParseFailure)
	}
	obj := text[start : end+1]

	var v T
	if err := json.Unmarshal([]byte(obj), &v); err == nil {
		return v, nil
	}

	repaired, err := jsonrepair.JSONRepair(obj)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}
	var fixed T
	if err := json.Unmarshal([]byte(repaired), &fixed); err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}
	return fixed, nil
}

type rawAnalysis struct {
	AdherenceScore  *float64 `json:"adherence_score"`
	PositiveAspects []string `json:"positive_aspects"`
	NegativeAspects []string `json:"negative_aspects"`
	Sentiment       string   `json:"sentiment"`
	Suggestions     []string `json:"suggestions"`
}

// DecodeFeedbackAnalysis reads the JSON analysis produced for FeedbackPrompt.
// A missing or out-of-range adherence score and an unknown sentiment are
// parse failures.
func DecodeFeedbackAnalysis(text string) (domain.FeedbackAnalysis, error) {
	raw, err := decodeObject[rawAnalysis](text)
	if err != nil {
		return domain.FeedbackAnalysis{}, err
	}

	if raw.AdherenceScore == nil {
		return domain.FeedbackAnalysis{}, fmt.Errorf("%w: adherence_score missing", domain.ErrParseFailure)
	}
	score := *raw.AdherenceScore
	if score < 0 || score > 1 {
		return domain.FeedbackAnalysis{}, fmt.Errorf("%w: adherence_score %v outside [0,1]", domain.ErrParseFailure, score)
	}
	sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(raw.Sentiment)))
	if !sentiment.Valid() {
		return domain.FeedbackAnalysis{}, fmt.Errorf("%w: unknown sentiment %q", domain.ErrParseFailure, raw.Sentiment)
	}

	return domain.FeedbackAnalysis{
		AdherenceScore:  score,
		PositiveAspects: nonNil(raw.PositiveAspects),
		NegativeAspects: nonNil(raw.NegativeAspects),
		Sentiment:       sentiment,
		Suggestions:     nonNil(raw.Suggestions),
	}, nil
}

// ProfileDraft is whatever profile data a single message revealed.
type ProfileDraft struct {
	Name               string       `json:"name"`
	Age                looseNumber  `json:"age"`
	Gender             string       `json:"gender"`
	HeightCM           *looseNumber `json:"height_cm"`
	WeightKG           *looseNumber `json:"weight_kg"`
	HealthConditions   []string     `json:"health_conditions"`
	Allergies          []string     `json:"allergies"`
	DietaryPreferences []string     `json:"dietary_preferences"`
	ActivityLevel      string       `json:"activity_level"`
	WeightGoal         string       `json:"weight_goal"`
}

// DecodeProfileDraft reads the JSON produced for ProfilePrompt.
func DecodeProfileDraft(text string) (ProfileDraft, error) {
	return decodeObject[ProfileDraft](text)
}

// MergeInto copies every field the draft knows onto p.
func (d ProfileDraft) MergeInto(p *domain.UserProfile) {
	if d.Name != "" {
		p.Name = strings.TrimSpace(d.Name)
	}
	if d.Age > 0 {
		p.Age = int(d.Age)
	}
	if d.Gender != "" {
		p.Gender = strings.ToLower(strings.TrimSpace(d.Gender))
	}
	if d.HeightCM != nil && *d.HeightCM > 0 {
		v := float64(*d.HeightCM)
		p.HeightCM = &v
	}
	if d.WeightKG != nil && *d.WeightKG > 0 {
		v := float64(*d.WeightKG)
		p.WeightKG = &v
	}
	if len(d.HealthConditions) > 0 {
		p.HealthConditions = d.HealthConditions
	}
	if len(d.Allergies) > 0 {
		p.Allergies = d.Allergies
	}
	if len(d.DietaryPreferences) > 0 {
		p.DietaryPreferences = d.DietaryPreferences
	}
	if d.ActivityLevel != "" {
		p.ActivityLevel = d.ActivityLevel
	}
	if g := domain.ParseWeightGoal(d.WeightGoal); g != "" {
		p.WeightGoal = g
	}
	p.RefreshBMI()
}

// looseNumber accepts 30, 30.5 and "30".
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = looseNumber(f)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
