package daily

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-diet-planner/internal/confirm"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/feedback"
	"ai-diet-planner/internal/pending"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/profile"
	"ai-diet-planner/internal/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultSummaryDays = 7

// Store is the history store as the assistant uses it.
type Store interface {
	HistoryStore
	SavePlan(ctx context.Context, rec domain.PlanRecord) error
	SaveFeedback(ctx context.Context, rec domain.FeedbackRecord) error
	ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackRecord, error)
	AddConversation(ctx context.Context, c domain.Conversation) error
}

type PlanGenerator interface {
	GeneratePlan(ctx context.Context, p *domain.UserProfile, previousFeedback string) (planner.PlanResult, error)
	ModifyPlan(ctx context.Context, plan domain.MealPlan, unavailable, available []string) (planner.PlanResult, error)
}

type FeedbackAnalyzer interface {
	Analyze(ctx context.Context, text string) (feedback.AnalysisResult, error)
}

type ProfileCollector interface {
	Collect(ctx context.Context, userID, message string) (profile.CollectResult, error)
}

type TokenIssuer interface {
	Issue(userID string, date time.Time, pendingID string) (string, error)
	Verify(token string) (confirm.Claims, error)
}

// Recorder receives operational data about each request.
type Recorder interface {
	RecordMeta(ctx context.Context, userID string, meta shared.AgentMeta)
	ObserveDecision(action, rule string)
}

type nopRecorder struct{}

func (nopRecorder) RecordMeta(context.Context, string, shared.AgentMeta) {}
func (nopRecorder) ObserveDecision(string, string)                       {}

// Deps wires an Assistant. Recorder, Now and Location are optional.
type Deps struct {
	Store     Store
	Planner   PlanGenerator
	Analyst   FeedbackAnalyzer
	Collector ProfileCollector
	Pending   pending.Store
	Tokens    TokenIssuer
	Recorder  Recorder
	Logger    zerolog.Logger
	Now       func() time.Time
	Location  *time.Location
}

type ResultStatus string

const (
	StatusSuccess             ResultStatus = "success"
	StatusPendingConfirmation ResultStatus = "pending_confirmation"
	StatusError               ResultStatus = "error"
)

// Result is what the assistant tells the caller after handling a request.
type Result struct {
	Status               ResultStatus             `json:"status"`
	Message              string                   `json:"message"`
	Action               Action                   `json:"action,omitempty"`
	Date                 string                   `json:"date,omitempty"`
	MealPlan             *domain.MealPlan         `json:"meal_plan,omitempty"`
	Analysis             *domain.FeedbackAnalysis `json:"analysis,omitempty"`
	RequiresConfirmation bool                     `json:"requires_confirmation"`
	PendingID            string                   `json:"pending_id,omitempty"`
	ConfirmationToken    string                   `json:"confirmation_token,omitempty"`
}

// StatusReport is a daily status together with the texts a client shows
// for it. FeedbackPrompt is empty when feedback should not be asked for.
type StatusReport struct {
	Status         Status `json:"status"`
	Greeting       string `json:"greeting"`
	FeedbackPrompt string `json:"feedback_prompt,omitempty"`
}

// Assistant routes messages and carries out the chosen action.
type Assistant struct {
	deps   Deps
	router *Router
}

func NewAssistant(deps Deps) *Assistant {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Assistant{deps: deps, router: NewRouter(deps.Store, deps.Location)}
}

// Today is the current calendar date in the assistant's time zone.
func (a *Assistant) Today() time.Time {
	return domain.DateOf(a.deps.Now().In(a.deps.Location))
}

// Handle answers message from userID about the plan for date.
func (a *Assistant) Handle(ctx context.Context, userID, message string, date time.Time) (Result, error) {
	date = domain.DateOf(date)
	log := a.deps.Logger.With().Str("user_id", userID).Str("date", domain.FormatDate(date)).Logger()

	decision, err := a.router.Route(ctx, userID, message, date)
	if err != nil {
		return Result{}, err
	}
	a.deps.Recorder.ObserveDecision(string(decision.Action), decision.Rule)
	log.Debug().Str("action", string(decision.Action)).Str("rule", decision.Rule).Msg("routed message")

	a.logConversation(ctx, userID, "User", message, domain.KindUserInput)

	var res Result
	var agent string
	switch decision.Action {
	case ActionCollectProfile:
		agent = shared.AgentProfileCollector
		res, err = a.collectProfile(ctx, userID, message)
	case ActionCollectFeedback:
		agent = shared.AgentFeedbackAnalyst
		res, err = a.collectFeedback(ctx, userID, message, date)
	case ActionShowExistingPlan:
		agent = shared.AgentPlanner
		res, err = a.showExistingPlan(ctx, userID, decision.Profile, date)
	default:
		agent = shared.AgentPlanner
		res, err = a.createPlan(ctx, userID, decision.Profile, date)
	}
	if err != nil {
		return Result{}, err
	}
	if res.Action == "" {
		res.Action = decision.Action
	}
	res.Date = domain.FormatDate(date)

	a.logConversation(ctx, userID, agent, res.Message, domain.KindAgentResponse)
	return res, nil
}

// SubmitFeedback records text as the user's feedback for date without
// routing it, so feedback that carries none of the feedback keywords is
// still analyzed and saved.
func (a *Assistant) SubmitFeedback(ctx context.Context, userID, text string, date time.Time) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Status: StatusError, Message: "Please provide feedback.", Action: ActionCollectFeedback}, nil
	}
	date = domain.DateOf(date)

	a.logConversation(ctx, userID, "User", text, domain.KindUserInput)
	res, err := a.collectFeedback(ctx, userID, text, date)
	if err != nil {
		return Result{}, err
	}
	res.Action = ActionCollectFeedback
	res.Date = domain.FormatDate(date)
	a.logConversation(ctx, userID, shared.AgentFeedbackAnalyst, res.Message, domain.KindAgentResponse)
	return res, nil
}

func (a *Assistant) collectProfile(ctx context.Context, userID, message string) (Result, error) {
	out, err := a.deps.Collector.Collect(ctx, userID, message)
	a.deps.Recorder.RecordMeta(ctx, userID, out.Meta)
	if err != nil {
		return failure(ActionCollectProfile, err)
	}
	return Result{Status: StatusSuccess, Message: out.Message}, nil
}

func (a *Assistant) collectFeedback(ctx context.Context, userID, message string, date time.Time) (Result, error) {
	out, err := a.deps.Analyst.Analyze(ctx, message)
	a.deps.Recorder.RecordMeta(ctx, userID, out.Meta)
	if err != nil {
		return failure(ActionCollectFeedback, err)
	}

	rec := domain.FeedbackRecord{
		UserID:    userID,
		Date:      date,
		Text:      message,
		Analysis:  out.Analysis,
		CreatedAt: a.deps.Now().UTC(),
	}
	if err := a.deps.Store.SaveFeedback(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("failed to save feedback for %s: %w", userID, err)
	}

	analysis := out.Analysis
	return Result{Status: StatusSuccess, Message: feedbackMessage(analysis), Analysis: &analysis}, nil
}

func (a *Assistant) showExistingPlan(ctx context.Context, userID string, p *domain.UserProfile, date time.Time) (Result, error) {
	rec, err := a.deps.Store.GetPlan(ctx, userID, date)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load plan for %s: %w", userID, err)
	}
	if rec == nil {
		return a.createPlan(ctx, userID, p, date)
	}
	plan := rec.Plan
	return Result{
		Status:   StatusSuccess,
		Message:  existingPlanMessage(domain.FormatDate(date), plan),
		MealPlan: &plan,
	}, nil
}

// createPlan generates a plan and parks it as pending. The feedback given
// for the previous day, if any, shapes the new plan.
func (a *Assistant) createPlan(ctx context.Context, userID string, p *domain.UserProfile, date time.Time) (Result, error) {
	var previous string
	prev, err := a.deps.Store.GetFeedback(ctx, userID, date.AddDate(0, 0, -1))
	if err != nil {
		return Result{}, fmt.Errorf("failed to load previous feedback for %s: %w", userID, err)
	}
	if prev != nil {
		previous = prev.Text
	}

	out, err := a.deps.Planner.GeneratePlan(ctx, p, previous)
	a.deps.Recorder.RecordMeta(ctx, userID, out.Meta)
	if err != nil {
		return failure(ActionCreatePlan, err)
	}
	return a.park(ctx, userID, date, out.Plan, ActionCreatePlan)
}

func (a *Assistant) park(ctx context.Context, userID string, date time.Time, plan domain.MealPlan, action Action) (Result, error) {
	id, err := a.deps.Pending.Put(ctx, pending.Plan{
		UserID:    userID,
		Date:      date,
		Plan:      plan,
		CreatedAt: a.deps.Now().UTC(),
	})
	if err != nil {
		return Result{}, err
	}
	token, err := a.deps.Tokens.Issue(userID, date, id)
	if err != nil {
		return Result{}, fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	return Result{
		Status:               StatusPendingConfirmation,
		Message:              planMessage(domain.FormatDate(date), plan),
		Action:               action,
		Date:                 domain.FormatDate(date),
		MealPlan:             &plan,
		RequiresConfirmation: true,
		PendingID:            id,
		ConfirmationToken:    token,
	}, nil
}

// NewPlan generates a fresh pending plan for date without routing.
func (a *Assistant) NewPlan(ctx context.Context, userID string, date time.Time) (Result, error) {
	date = domain.DateOf(date)
	p, err := a.deps.Store.GetUserProfile(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	res, err := a.createPlan(ctx, userID, p, date)
	if err != nil {
		return Result{}, err
	}
	res.Date = domain.FormatDate(date)
	return res, nil
}

func (a *Assistant) loadPending(ctx context.Context, userID, pendingID string) (*pending.Plan, error) {
	p, err := a.deps.Pending.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("pending plan %s: %w", pendingID, domain.ErrNotFound)
	}
	return p, nil
}

// Confirm stores the pending plan as the user's plan for its date.
func (a *Assistant) Confirm(ctx context.Context, userID, pendingID string) (Result, error) {
	p, err := a.loadPending(ctx, userID, pendingID)
	if err != nil {
		return Result{}, err
	}

	rec := domain.PlanRecord{UserID: userID, Date: p.Date, Plan: p.Plan, CreatedAt: a.deps.Now().UTC()}
	if err := a.deps.Store.SavePlan(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("failed to save plan for %s: %w", userID, err)
	}
	if err := a.deps.Pending.Delete(ctx, pendingID); err != nil {
		a.deps.Logger.Warn().Err(err).Str("pending_id", pendingID).Msg("failed to drop confirmed pending plan")
	}

	date := domain.FormatDate(p.Date)
	msg := fmt.Sprintf("Your diet plan for %s is saved. Enjoy your meals!", date)
	a.logConversation(ctx, userID, shared.AgentPlanner, msg, domain.KindSystem)

	plan := p.Plan
	return Result{Status: StatusSuccess, Message: msg, Action: ActionCreatePlan, Date: date, MealPlan: &plan}, nil
}

// ConfirmWithToken confirms the pending plan a token refers to.
func (a *Assistant) ConfirmWithToken(ctx context.Context, userID, token string) (Result, error) {
	claims, err := a.verify(userID, token)
	if err != nil {
		return Result{}, err
	}
	return a.Confirm(ctx, userID, claims.PendingID)
}

// Modify replaces a pending plan with a variant that avoids unavailable
// items. The old pending entry is dropped and a new one returned.
func (a *Assistant) Modify(ctx context.Context, userID, pendingID string, unavailable, available []string) (Result, error) {
	p, err := a.loadPending(ctx, userID, pendingID)
	if err != nil {
		return Result{}, err
	}

	out, err := a.deps.Planner.ModifyPlan(ctx, p.Plan, unavailable, available)
	a.deps.Recorder.RecordMeta(ctx, userID, out.Meta)
	if err != nil {
		return failure(ActionCreatePlan, err)
	}
	if err := a.deps.Pending.Delete(ctx, pendingID); err != nil {
		a.deps.Logger.Warn().Err(err).Str("pending_id", pendingID).Msg("failed to drop replaced pending plan")
	}
	return a.park(ctx, userID, p.Date, out.Plan, ActionCreatePlan)
}

func (a *Assistant) ModifyWithToken(ctx context.Context, userID, token string, unavailable, available []string) (Result, error) {
	claims, err := a.verify(userID, token)
	if err != nil {
		return Result{}, err
	}
	return a.Modify(ctx, userID, claims.PendingID, unavailable, available)
}

func (a *Assistant) verify(userID, token string) (confirm.Claims, error) {
	claims, err := a.deps.Tokens.Verify(token)
	if err != nil {
		return confirm.Claims{}, err
	}
	if claims.Subject != userID {
		return confirm.Claims{}, fmt.Errorf("%w: issued to another user", confirm.ErrInvalidToken)
	}
	return claims, nil
}

// DailyStatus reports where userID stands on date. The feedback prompt is
// only offered for a future date whose plan has no feedback yet.
func (a *Assistant) DailyStatus(ctx context.Context, userID string, date time.Time) (StatusReport, error) {
	st, err := a.router.resolver.Resolve(ctx, userID, date)
	if err != nil {
		return StatusReport{}, err
	}
	report := StatusReport{Status: st, Greeting: Greeting(st)}
	if st.HasPlan && !st.HasFeedback && st.Date.After(a.Today()) {
		report.FeedbackPrompt = FeedbackPrompt(st)
	}
	return report, nil
}

// FeedbackSummary aggregates the feedback of the last days days up to and
// including today. days <= 0 means a week.
func (a *Assistant) FeedbackSummary(ctx context.Context, userID string, days int, today time.Time) (feedback.Summary, error) {
	if days <= 0 {
		days = defaultSummaryDays
	}
	since := domain.DateOf(today).AddDate(0, 0, -(days - 1))
	records, err := a.deps.Store.ListFeedbackSince(ctx, userID, since)
	if err != nil {
		return feedback.Summary{}, fmt.Errorf("failed to list feedback for %s: %w", userID, err)
	}
	return feedback.Summarize(records), nil
}

// Plan returns the confirmed plan for date.
func (a *Assistant) Plan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error) {
	rec, err := a.deps.Store.GetPlan(ctx, userID, domain.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for %s: %w", userID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("plan for %s on %s: %w", userID, domain.FormatDate(date), domain.ErrNotFound)
	}
	return rec, nil
}

func (a *Assistant) logConversation(ctx context.Context, userID, agent, message string, kind domain.MessageKind) {
	c := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		AgentName: agent,
		Message:   message,
		Kind:      kind,
		Timestamp: a.deps.Now().UTC().Format(domain.TimestampLayout),
	}
	if err := a.deps.Store.AddConversation(ctx, c); err != nil {
		a.deps.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to log conversation")
	}
}

// failure turns model failures into a user-facing error result. Anything
// else is returned as an error.
func failure(action Action, err error) (Result, error) {
	res := Result{Status: StatusError, Action: action}
	switch {
	case errors.Is(err, domain.ErrGenerationFailure):
		res.Message = generationApology
	case errors.Is(err, domain.ErrParseFailure):
		res.Message = parseApology
	case errors.Is(err, domain.ErrProfileMissing):
		res.Action = ActionCollectProfile
		res.Message = "I need to know a bit about you first. Please tell me your name, age and gender."
	default:
		return Result{}, err
	}
	return res, nil
}
