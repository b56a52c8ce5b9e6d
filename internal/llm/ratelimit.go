package llm

import (
	"context"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"

	"golang.org/x/time/rate"
)

// RateLimited spaces calls to a TextGenerator to stay under a provider's
// requests-per-minute quota. It waits; it never retries.
type RateLimited struct {
	next    TextGenerator
	limiter *rate.Limiter
}

// NewRateLimited wraps next. A non-positive perMinute disables limiting.
func NewRateLimited(next TextGenerator, perMinute int) TextGenerator {
	if perMinute <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *RateLimited) GenerateContent(ctx context.Context, prompt string, maxTokens int) (ContentResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("%w: rate limit wait: %w", domain.ErrGenerationFailure, err)
	}
	return r.next.GenerateContent(ctx, prompt, maxTokens)
}
