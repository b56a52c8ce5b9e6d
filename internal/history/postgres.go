package history

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresStore keeps history in Postgres for multi-instance deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the history tables if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(postgresSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var (
		p                            domain.UserProfile
		conditions, allergies, prefs []byte
		goal                         string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, name, age, gender, height_cm, weight_kg, bmi,
		       health_conditions, allergies, dietary_preferences,
		       weight_goal, activity_level, updated_at
		FROM users WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Age, &p.Gender, &p.HeightCM, &p.WeightKG, &p.BMI,
			&conditions, &allergies, &prefs, &goal, &p.ActivityLevel, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	p.WeightGoal = domain.WeightGoal(goal)
	if p.HealthConditions, err = decodeList(string(conditions)); err != nil {
		return nil, err
	}
	if p.Allergies, err = decodeList(string(allergies)); err != nil {
		return nil, err
	}
	if p.DietaryPreferences, err = decodeList(string(prefs)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) SaveUserProfile(ctx context.Context, p domain.UserProfile) error {
	conditions, allergies, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (user_id, name, age, gender, height_cm, weight_kg, bmi,
		                   health_conditions, allergies, dietary_preferences,
		                   weight_goal, activity_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10::jsonb, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, age = EXCLUDED.age, gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm, weight_kg = EXCLUDED.weight_kg, bmi = EXCLUDED.bmi,
			health_conditions = EXCLUDED.health_conditions, allergies = EXCLUDED.allergies,
			dietary_preferences = EXCLUDED.dietary_preferences, weight_goal = EXCLUDED.weight_goal,
			activity_level = EXCLUDED.activity_level, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Name, p.Age, p.Gender, p.HeightCM, p.WeightKG, p.BMI,
		conditions, allergies, prefs, string(p.WeightGoal), p.ActivityLevel, updated)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error) {
	var data []byte
	var created time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT meal_plan, created_at FROM diet_plans WHERE user_id = $1 AND plan_date = $2`,
		userID, domain.FormatDate(date)).Scan(&data, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	var plan domain.MealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode stored plan: %w", err)
	}
	return &domain.PlanRecord{UserID: userID, Date: domain.DateOf(date), Plan: plan.Normalize(), CreatedAt: created.UTC()}, nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, rec domain.PlanRecord) error {
	data, err := json.Marshal(rec.Plan.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO diet_plans (user_id, plan_date, meal_plan, created_at) VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (user_id, plan_date) DO UPDATE SET meal_plan = EXCLUDED.meal_plan, created_at = EXCLUDED.created_at`,
		rec.UserID, domain.FormatDate(rec.Date), string(data), nonZero(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFeedback(ctx context.Context, userID string, date time.Time) (*domain.FeedbackRecord, error) {
	records, err := s.queryFeedback(ctx, `
		SELECT user_id, to_char(plan_date, 'YYYY-MM-DD'), feedback_text, analysis, created_at
		FROM feedback WHERE user_id = $1 AND plan_date = $2`,
		userID, domain.FormatDate(date))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (s *PostgresStore) SaveFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	data, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO feedback (user_id, plan_date, feedback_text, analysis, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (user_id, plan_date) DO UPDATE SET
			feedback_text = EXCLUDED.feedback_text, analysis = EXCLUDED.analysis, created_at = EXCLUDED.created_at`,
		rec.UserID, domain.FormatDate(rec.Date), rec.Text, string(data), nonZero(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackRecord, error) {
	return s.queryFeedback(ctx, `
		SELECT user_id, to_char(plan_date, 'YYYY-MM-DD'), feedback_text, analysis, created_at
		FROM feedback WHERE user_id = $1 AND plan_date >= $2
		ORDER BY plan_date`,
		userID, domain.FormatDate(since))
}

func (s *PostgresStore) queryFeedback(ctx context.Context, query string, args ...any) ([]domain.FeedbackRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.FeedbackRecord
	for rows.Next() {
		var (
			rec      domain.FeedbackRecord
			date     string
			analysis []byte
		)
		if err := rows.Scan(&rec.UserID, &date, &rec.Text, &analysis, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if rec.Date, err = domain.ParseDate(date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(analysis, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestConversation(ctx context.Context, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	var kind string
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, user_id, agent_name, message, message_type, sent_at
		FROM conversations WHERE user_id = $1
		ORDER BY sent_at DESC, seq DESC LIMIT 1`, userID).
		Scan(&c.ID, &c.UserID, &c.AgentName, &c.Message, &kind, &c.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	c.Kind = domain.MessageKind(kind)
	return &c, nil
}

func (s *PostgresStore) AddConversation(ctx context.Context, c domain.Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp == "" {
		c.Timestamp = time.Now().UTC().Format(domain.TimestampLayout)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, agent_name, message, message_type, sent_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.AgentName, c.Message, string(c.Kind), c.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to log conversation: %w", err)
	}
	return nil
}

func nonZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
