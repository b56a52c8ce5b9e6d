package llm

import (
	"context"
	"errors"
	"fmt"

	"ai-diet-planner/internal/domain"
	"ai-diet-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator generates text from a prompt. maxTokens caps the completion
// length; zero leaves it to the backend. Implementations fail with an error
// wrapping domain.ErrGenerationFailure.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, maxTokens int) (ContentResponse, error)
}

// AsGenerationFailure makes sure err is classified as a generation failure.
func AsGenerationFailure(err error) error {
	if err == nil || errors.Is(err, domain.ErrGenerationFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
}
