package metrics

import (
	"context"

	"ai-diet-planner/internal/shared"

	"github.com/rs/zerolog"
)

// Recorder sends each execution to Prometheus and, when a store is set,
// to the execution_metrics table. Store failures are logged only.
type Recorder struct {
	collectors *Collectors
	store      *Store
	logger     zerolog.Logger
}

// NewRecorder builds a Recorder. store may be nil.
func NewRecorder(collectors *Collectors, store *Store, logger zerolog.Logger) *Recorder {
	return &Recorder{collectors: collectors, store: store, logger: logger}
}

func (r *Recorder) RecordMeta(ctx context.Context, userID string, meta shared.AgentMeta) {
	r.collectors.ObserveAgentMeta(meta)
	if r.store == nil {
		return
	}
	if err := r.store.RecordMeta(ctx, meta); err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Str("agent", meta.AgentName).Msg("failed to record execution metric")
	}
}

func (r *Recorder) ObserveDecision(action, rule string) {
	r.collectors.ObserveDecision(action, rule)
}
