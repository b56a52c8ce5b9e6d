// Package api exposes the diet assistant over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-diet-planner/internal/confirm"
	"ai-diet-planner/internal/daily"
	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/feedback"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	userHeader      = "X-User-ID"
	maxBodyBytes    = 64 << 10
	defaultSumDays  = 7
	requestDeadline = 2 * time.Minute
)

// Assistant is the part of daily.Assistant served over HTTP.
type Assistant interface {
	Handle(ctx context.Context, userID, message string, date time.Time) (daily.Result, error)
	DailyStatus(ctx context.Context, userID string, date time.Time) (daily.StatusReport, error)
	Plan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error)
	ConfirmWithToken(ctx context.Context, userID, token string) (daily.Result, error)
	ModifyWithToken(ctx context.Context, userID, token string, unavailable, available []string) (daily.Result, error)
	SubmitFeedback(ctx context.Context, userID, text string, date time.Time) (daily.Result, error)
	FeedbackSummary(ctx context.Context, userID string, days int, today time.Time) (feedback.Summary, error)
	Today() time.Time
}

// Options mounts optional handlers next to the API.
type Options struct {
	Metrics http.Handler
	Webhook http.Handler
}

type Server struct {
	assistant Assistant
	logger    zerolog.Logger
	opts      Options
}

func NewServer(assistant Assistant, logger zerolog.Logger, opts Options) *Server {
	return &Server{assistant: assistant, logger: logger.With().Str("component", "api").Logger(), opts: opts}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}
	if s.opts.Webhook != nil {
		r.Post("/webhook", s.opts.Webhook.ServeHTTP)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(requestDeadline))
		api.Use(requireUser)

		api.Post("/chat", s.chat)
		api.Get("/daily-status", s.dailyStatus)
		api.Get("/plans/{date}", s.getPlan)
		api.Post("/plans/confirm", s.confirmPlan)
		api.Post("/plans/modify", s.modifyPlan)
		api.Post("/feedback", s.submitFeedback)
		api.Get("/feedback/summary", s.feedbackSummary)
	})
	return r
}

type userKey struct{}

// requireUser rejects requests without a user id header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(userHeader))
		if id == "" {
			writeErr(w, http.StatusUnauthorized, "missing_user", userHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

type chatRequest struct {
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	date, ok := s.dateOrToday(w, req.Date)
	if !ok {
		return
	}

	res, err := s.assistant.Handle(r.Context(), userFrom(r), req.Message, date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) dailyStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateOrToday(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	report, err := s.assistant.DailyStatus(r.Context(), userFrom(r), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	rec, err := s.assistant.Plan(r.Context(), userFrom(r), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{
		UserID:    rec.UserID,
		Date:      domain.FormatDate(rec.Date),
		MealPlan:  rec.Plan,
		CreatedAt: rec.CreatedAt,
	})
}

type planResponse struct {
	UserID    string          `json:"user_id"`
	Date      string          `json:"date"`
	MealPlan  domain.MealPlan `json:"meal_plan"`
	CreatedAt time.Time       `json:"created_at"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

func (s *Server) confirmPlan(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.assistant.ConfirmWithToken(r.Context(), userFrom(r), req.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type modifyRequest struct {
	Token            string   `json:"token"`
	UnavailableItems []string `json:"unavailable_items"`
	AvailableItems   []string `json:"available_items"`
}

func (s *Server) modifyPlan(w http.ResponseWriter, r *http.Request) {
	var req modifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.assistant.ModifyWithToken(r.Context(), userFrom(r), req.Token, req.UnavailableItems, req.AvailableItems)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Date     string `json:"date,omitempty"`
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "feedback is required")
		return
	}
	date, ok := s.dateOrToday(w, req.Date)
	if !ok {
		return
	}

	res, err := s.assistant.SubmitFeedback(r.Context(), userFrom(r), req.Feedback, date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) feedbackSummary(w http.ResponseWriter, r *http.Request) {
	days := defaultSumDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid_days", "days must be a positive integer")
			return
		}
		days = n
	}
	summary, err := s.assistant.FeedbackSummary(r.Context(), userFrom(r), days, s.assistant.Today())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) dateOrToday(w http.ResponseWriter, v string) (time.Time, bool) {
	if v == "" {
		return s.assistant.Today(), true
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// fail maps err to a status code. Details of unexpected errors are logged,
// not returned.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, confirm.ErrInvalidToken):
		writeErr(w, http.StatusForbidden, "invalid_token", "confirmation token is invalid or expired")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Str("user_id", userFrom(r)).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, map[string]apiError{"error": {Code: errCode, Message: message}})
}
