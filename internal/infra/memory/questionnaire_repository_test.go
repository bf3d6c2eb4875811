package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/quiz"
)

func TestQuestionnaireRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionnaireLoader: NewStaticQuestionnaireLoader(quiz.CareerFeedback()),
	}
	repo := NewQuestionnaireRepository(loader, time.Minute)

	q, err := repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID)
	if err != nil {
		t.Fatalf("get questionnaire: %v", err)
	}
	if q.Len() != 4 {
		t.Fatalf("expected 4 questions, got %d", q.Len())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID); err != nil {
		t.Fatalf("get questionnaire 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionnaireRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		QuestionnaireLoader: NewStaticQuestionnaireLoader(quiz.CareerFeedback()),
	}
	repo := NewQuestionnaireRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID)
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestionnaire(context.Background(), quiz.CareerFeedbackID)
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionnaireRepositoryRejectsInvalid(t *testing.T) {
	repo := NewQuestionnaireRepository(NewStaticQuestionnaireLoader(domain.Questionnaire{ID: "empty"}), time.Minute)
	_, err := repo.GetQuestionnaire(context.Background(), "empty")
	if !errors.Is(err, domain.ErrInvalidQuestionnaire) {
		t.Fatalf("expected invalid questionnaire, got %v", err)
	}

	_, err = repo.GetQuestionnaire(context.Background(), "missing")
	if !errors.Is(err, domain.ErrQuestionnaireNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuestionnaireLoader
	calls int
}

func (l *countingLoader) LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	l.calls++
	return l.QuestionnaireLoader.LoadQuestionnaire(ctx, id)
}
