// Package pending keeps generated plans until the user confirms them.
package pending

import (
	"context"
	"time"

	"ai-diet-planner/internal/domain"
)

// Plan is a generated plan waiting for confirmation.
type Plan struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Date      time.Time       `json:"date"`
	Plan      domain.MealPlan `json:"meal_plan"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store holds pending plans for a limited time. Get fails with
// domain.ErrNotFound for unknown or expired ids.
type Store interface {
	Put(ctx context.Context, p Plan) (string, error)
	Get(ctx context.Context, id string) (*Plan, error)
	Delete(ctx context.Context, id string) error
}
