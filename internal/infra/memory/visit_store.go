package memory

import (
	"sync"

	"truthschool-funnel/internal/app"
)

// VisitStore is an in-memory implementation of app.VisitRepository.
type VisitStore struct {
	mu     sync.RWMutex
	visits map[string]*app.Visit
}

func NewVisitStore() *VisitStore {
	return &VisitStore{
		visits: make(map[string]*app.Visit),
	}
}

func (s *VisitStore) Register(visit *app.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[visit.ID] = visit
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
	delete(s.visits, id)
}

func (s *VisitStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}
