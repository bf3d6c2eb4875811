package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"truthschool-funnel/internal/domain"
)

// QuestionnaireLoader fetches questionnaire content from a backing store (e.g., Postgres).
type QuestionnaireLoader interface {
	LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
}

// QuestionnaireRepository caches questionnaires in Redis and falls back to a loader on cache miss.
// Content is stored as: SET questionnaire:{id} {json} EX ttl
type QuestionnaireRepository struct {
	client *redis.Client
	loader QuestionnaireLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionnaireRepository(client *redis.Client, loader QuestionnaireLoader, ttl time.Duration) *QuestionnaireRepository {
	return &QuestionnaireRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionnaireRepository) GetQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	if q, ok := r.cached(ctx, id); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := r.cached(ctx, id); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuestionnaire(ctx, id)
		if err != nil {
			return domain.Questionnaire{}, err
		}
		if err := q.Validate(); err != nil {
			return domain.Questionnaire{}, err
		}

		if raw, err := json.Marshal(q); err == nil {
			// best-effort: a failed write only costs another load
			_ = r.client.Set(ctx, r.key(id), raw, r.ttlWithJitter()).Err()
		}
		return q, nil
	})
	if err != nil {
		return domain.Questionnaire{}, err
	}
	return result.(domain.Questionnaire), nil
}

func (r *QuestionnaireRepository) cached(ctx context.Context, id string) (domain.Questionnaire, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return domain.Questionnaire{}, false
	}
	var q domain.Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil || q.Validate() != nil {
		return domain.Questionnaire{}, false
	}
	return q, true
}

func (r *QuestionnaireRepository) key(id string) string {
	return "questionnaire:" + id
}

func (r *QuestionnaireRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
