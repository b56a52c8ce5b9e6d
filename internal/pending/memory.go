package pending

import (
	"context"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps pending plans in a bounded in-process LRU. Entries
// expire after ttl and the oldest are evicted once size is reached.
type MemoryStore struct {
	cache *expirable.LRU[string, Plan]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, Plan](size, nil, ttl)}
}

func (s *MemoryStore) Put(_ context.Context, p Plan) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.cache.Add(p.ID, p)
	return p.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Plan, error) {
	p, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("pending plan %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}
