package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"truthschool-funnel/internal/domain"
)

// QuestionnaireLoader fetches questionnaire content from a backing store (e.g., Postgres).
type QuestionnaireLoader interface {
	LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
}

// QuestionnaireRepository caches questionnaires with TTL to avoid repeated DB hits.
type QuestionnaireRepository struct {
	loader QuestionnaireLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuestionnaire
}

type cachedQuestionnaire struct {
	questionnaire domain.Questionnaire
	expiresAt     time.Time
}

func NewQuestionnaireRepository(loader QuestionnaireLoader, ttl time.Duration) *QuestionnaireRepository {
	return &QuestionnaireRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestionnaire),
	}
}

func (r *QuestionnaireRepository) GetQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	if q, ok := r.cached(id); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if q, ok := r.cached(id); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuestionnaire(ctx, id)
		if err != nil {
			return domain.Questionnaire{}, err
		}
		if err := q.Validate(); err != nil {
			return domain.Questionnaire{}, err
		}

		r.mu.Lock()
		r.cache[id] = cachedQuestionnaire{
			questionnaire: q,
			expiresAt:     r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Questionnaire{}, err
	}
	return result.(domain.Questionnaire), nil
}

func (r *QuestionnaireRepository) cached(id string) (domain.Questionnaire, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
		return entry.questionnaire, true
	}
	return domain.Questionnaire{}, false
}

func (r *QuestionnaireRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionnaireLoader is a simple loader backed by an in-memory map (built-ins, tests).
type StaticQuestionnaireLoader struct {
	questionnaires map[string]domain.Questionnaire
}

func NewStaticQuestionnaireLoader(questionnaires ...domain.Questionnaire) *StaticQuestionnaireLoader {
	byID := make(map[string]domain.Questionnaire, len(questionnaires))
	for _, q := range questionnaires {
		byID[q.ID] = q
	}
	return &StaticQuestionnaireLoader{questionnaires: byID}
}

func (l *StaticQuestionnaireLoader) LoadQuestionnaire(_ context.Context, id string) (domain.Questionnaire, error) {
	if q, ok := l.questionnaires[id]; ok {
		return q, nil
	}
	return domain.Questionnaire{}, domain.ErrQuestionnaireNotFound
}
