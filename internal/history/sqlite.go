// Package history persists profiles, confirmed plans, feedback and the
// conversation log. Lookups return nil, nil when nothing is stored.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/google/uuid"
)

// SQLiteStore keeps history in the SQLite database opened by package
// database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, age, gender, height_cm, weight_kg, bmi,
		       health_conditions, allergies, dietary_preferences,
		       weight_goal, activity_level, updated_at
		FROM users WHERE user_id = ?`, userID)

	var (
		p                            domain.UserProfile
		height, weight, bmi          sql.NullFloat64
		conditions, allergies, prefs string
		goal, updatedAt              string
	)
	err := row.Scan(&p.UserID, &p.Name, &p.Age, &p.Gender, &height, &weight, &bmi,
		&conditions, &allergies, &prefs, &goal, &p.ActivityLevel, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	p.HeightCM = nullableFloat(height)
	p.WeightKG = nullableFloat(weight)
	p.BMI = nullableFloat(bmi)
	p.WeightGoal = domain.WeightGoal(goal)
	if p.HealthConditions, err = decodeList(conditions); err != nil {
		return nil, err
	}
	if p.Allergies, err = decodeList(allergies); err != nil {
		return nil, err
	}
	if p.DietaryPreferences, err = decodeList(prefs); err != nil {
		return nil, err
	}
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (s *SQLiteStore) SaveUserProfile(ctx context.Context, p domain.UserProfile) error {
	conditions, allergies, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, name, age, gender, height_cm, weight_kg, bmi,
		                   health_conditions, allergies, dietary_preferences,
		                   weight_goal, activity_level, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			name = excluded.name, age = excluded.age, gender = excluded.gender,
			height_cm = excluded.height_cm, weight_kg = excluded.weight_kg, bmi = excluded.bmi,
			health_conditions = excluded.health_conditions, allergies = excluded.allergies,
			dietary_preferences = excluded.dietary_preferences, weight_goal = excluded.weight_goal,
			activity_level = excluded.activity_level, updated_at = excluded.updated_at`,
		p.UserID, p.Name, p.Age, p.Gender, p.HeightCM, p.WeightKG, p.BMI,
		conditions, allergies, prefs, string(p.WeightGoal), p.ActivityLevel, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, userID string, date time.Time) (*domain.PlanRecord, error) {
	var planJSON, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT meal_plan, created_at FROM diet_plans WHERE user_id = ? AND plan_date = ?`,
		userID, domain.FormatDate(date)).Scan(&planJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	var plan domain.MealPlan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode stored plan: %w", err)
	}
	return &domain.PlanRecord{
		UserID:    userID,
		Date:      domain.DateOf(date),
		Plan:      plan.Normalize(),
		CreatedAt: parseTime(createdAt),
	}, nil
}

// SavePlan stores rec, replacing any plan for the same user and date.
func (s *SQLiteStore) SavePlan(ctx context.Context, rec domain.PlanRecord) error {
	data, err := json.Marshal(rec.Plan.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diet_plans (user_id, plan_date, meal_plan, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, plan_date) DO UPDATE SET meal_plan = excluded.meal_plan, created_at = excluded.created_at`,
		rec.UserID, domain.FormatDate(rec.Date), string(data), formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFeedback(ctx context.Context, userID string, date time.Time) (*domain.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, plan_date, feedback_text, analysis, created_at
		FROM feedback WHERE user_id = ? AND plan_date = ?`,
		userID, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	records, err := scanFeedback(rows)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// SaveFeedback stores rec, replacing earlier feedback for the same date.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	data, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feedback (user_id, plan_date, feedback_text, analysis, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, plan_date) DO UPDATE SET
			feedback_text = excluded.feedback_text, analysis = excluded.analysis, created_at = excluded.created_at`,
		rec.UserID, domain.FormatDate(rec.Date), rec.Text, string(data), formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListFeedbackSince returns feedback for dates on or after since, oldest
// first.
func (s *SQLiteStore) ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, plan_date, feedback_text, analysis, created_at
		FROM feedback WHERE user_id = ? AND plan_date >= ?
		ORDER BY plan_date`,
		userID, domain.FormatDate(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	return scanFeedback(rows)
}

func scanFeedback(rows *sql.Rows) ([]domain.FeedbackRecord, error) {
	defer rows.Close()

	var out []domain.FeedbackRecord
	for rows.Next() {
		var (
			rec                     domain.FeedbackRecord
			date, analysis, created string
		)
		if err := rows.Scan(&rec.UserID, &date, &rec.Text, &analysis, &created); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		d, err := domain.ParseDate(date)
		if err != nil {
			return nil, err
		}
		rec.Date = d
		if err := json.Unmarshal([]byte(analysis), &rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
		}
		rec.CreatedAt = parseTime(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestConversation returns the most recent logged message of userID.
// The timestamp is returned as stored.
func (s *SQLiteStore) LatestConversation(ctx context.Context, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, agent_name, message, message_type, timestamp
		FROM conversations WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC LIMIT 1`, userID).
		Scan(&c.ID, &c.UserID, &c.AgentName, &c.Message, &kind, &c.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	c.Kind = domain.MessageKind(kind)
	return &c, nil
}

// AddConversation appends c to the log. An empty timestamp lets the
// database stamp it.
func (s *SQLiteStore) AddConversation(ctx context.Context, c domain.Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var err error
	if c.Timestamp == "" {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO conversations (id, user_id, agent_name, message, message_type) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.AgentName, c.Message, string(c.Kind))
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO conversations (id, user_id, agent_name, message, message_type, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.AgentName, c.Message, string(c.Kind), c.Timestamp)
	}
	if err != nil {
		return fmt.Errorf("failed to log conversation: %w", err)
	}
	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func encodeLists(p domain.UserProfile) (conditions, allergies, prefs string, err error) {
	if conditions, err = encodeList(p.HealthConditions); err != nil {
		return
	}
	if allergies, err = encodeList(p.Allergies); err != nil {
		return
	}
	prefs, err = encodeList(p.DietaryPreferences)
	return
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(s string) ([]string, error) {
	items := []string{}
	if s == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return items, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
