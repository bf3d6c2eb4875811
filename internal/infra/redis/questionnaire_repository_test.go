package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/infra/memory"
	"truthschool-funnel/internal/quiz"
)

func TestQuestionnaireRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuestionnaireLoader: memory.NewStaticQuestionnaireLoader(quiz.CareerFeedback()),
	}
	repo := NewQuestionnaireRepository(client, loader, time.Minute)

	q, err := repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID)
	if err != nil {
		t.Fatalf("get questionnaire: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("questionnaire:" + quiz.CareerFeedbackID) {
		t.Fatalf("expected questionnaire cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID)
	if err != nil {
		t.Fatalf("get cached questionnaire: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Len() != q.Len() || cached.Questions[2].Options[1] != "System Design" {
		t.Fatalf("cached questionnaire differs: %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionnaireLoader
	calls int
}

func (l *countingLoader) LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	l.calls++
	return l.QuestionnaireLoader.LoadQuestionnaire(ctx, id)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
