package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"truthschool-funnel/internal/app"
)

// VisitStore is a Redis-aware implementation of app.VisitRepository.
// Notes:
//   - Flows hold live timers and callbacks, so visits themselves stay in a
//     local map owned by this instance.
//   - Redis carries a liveness marker per visit so other instances and
//     operators can count open visits across the fleet.
type VisitStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	visits map[string]*app.Visit
}

func NewVisitStore(client *redis.Client, ttl time.Duration) *VisitStore {
	return &VisitStore{
		client: client,
		ttl:    ttl,
		visits: make(map[string]*app.Visit),
	}
}

func (s *VisitStore) Register(visit *app.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[visit.ID] = visit
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(visit.ID), visit.OpenedAt.UTC().Format(time.RFC3339), s.ttl).Err()
}

func (s *VisitStore) Get(id string) (*app.Visit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visit, ok := s.visits[id]
	return visit, ok
}

func (s *VisitStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visits[id]; !ok {
		return
	}
	delete(s.visits, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *VisitStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}

// Touch extends the liveness marker of an open visit.
func (s *VisitStore) Touch(ctx context.Context, id string) error {
	return s.client.Expire(ctx, s.key(id), s.ttl).Err()
}

func (s *VisitStore) key(id string) string {
	return "funnel:visit:" + id
}
