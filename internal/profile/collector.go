package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	extractionMaxTokens = 200
	draftCacheSize      = 1000
	draftTTL            = 24 * time.Hour
)

// Store is the part of the history store the collector needs.
type Store interface {
	SaveUserProfile(ctx context.Context, p domain.UserProfile) error
}

// CollectResult describes what a single message contributed to a profile.
// Profile is nil unless the profile was saved.
type CollectResult struct {
	Profile *domain.UserProfile
	Missing []string
	Message string
	Meta    shared.AgentMeta
}

// Collector builds user profiles from free-text messages.
// Details from messages that did not complete a profile are kept as
// in-process drafts, so they are not persisted until the profile is usable.
type Collector struct {
	textGen llm.TextGenerator
	store   Store
	drafts  *expirable.LRU[string, domain.UserProfile]
	now     func() time.Time
}

func NewCollector(textGen llm.TextGenerator, store Store) *Collector {
	return &Collector{
		textGen: textGen,
		store:   store,
		drafts:  expirable.NewLRU[string, domain.UserProfile](draftCacheSize, nil, draftTTL),
		now:     time.Now,
	}
}

// Collect extracts profile details from message, merges them into the
// user's draft and saves the profile once name, age and gender are known.
// An unreadable model answer is not an error: the user is simply asked
// again.
func (c *Collector) Collect(ctx context.Context, userID, message string) (CollectResult, error) {
	start := time.Now()

	prompt, err := codec.ProfilePrompt(message)
	if err != nil {
		return CollectResult{}, err
	}

	resp, err := c.textGen.GenerateContent(ctx, prompt, extractionMaxTokens)
	meta := shared.AgentMeta{
		AgentName: shared.AgentProfileCollector,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		meta.Failed = true
		return CollectResult{Meta: meta}, fmt.Errorf("failed to extract profile: %w", llm.AsGenerationFailure(err))
	}

	p, ok := c.drafts.Get(userID)
	if !ok {
		p = domain.UserProfile{UserID: userID}
	}

	draft, err := codec.DecodeProfileDraft(resp.Content)
	if err != nil && !errors.Is(err, domain.ErrParseFailure) {
		return CollectResult{Meta: meta}, err
	}
	if err == nil {
		draft.MergeInto(&p)
	}

	missing := missingFields(p)
	if len(missing) > 0 {
		c.drafts.Add(userID, p)
		return CollectResult{Missing: missing, Message: askForDetails(missing), Meta: meta}, nil
	}

	p.UpdatedAt = c.now().UTC()
	if err := c.store.SaveUserProfile(ctx, p); err != nil {
		c.drafts.Add(userID, p)
		return CollectResult{Meta: meta}, fmt.Errorf("failed to save profile for %s: %w", userID, err)
	}
	c.drafts.Remove(userID)

	return CollectResult{Profile: &p, Message: welcome(p), Meta: meta}, nil
}

func missingFields(p domain.UserProfile) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Age <= 0 {
		missing = append(missing, "age")
	}
	if p.Gender == "" {
		missing = append(missing, "gender")
	}
	return missing
}

func askForDetails(missing []string) string {
	return fmt.Sprintf(
		"To create your personalized diet plan I need a few details first: your %s. "+
			"Height, weight, health conditions, allergies and dietary preferences help me tailor it further.",
		strings.Join(missing, ", "),
	)
}

func welcome(p domain.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Thanks, %s! Your profile is saved.", p.Name)
	if p.BMI != nil {
		fmt.Fprintf(&sb, " Your BMI is %.1f (%s).", *p.BMI, domain.CategorizeBMI(*p.BMI))
	} else {
		sb.WriteString(" Without height and weight I can't calculate your BMI, so plans will follow general guidance.")
	}
	sb.WriteString(" Ask me for today's diet plan whenever you're ready.")
	return sb.String()
}
