package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"truthschool-funnel/internal/domain"
)

// QuestionnaireLoader loads questionnaire JSONB from Postgres.
type QuestionnaireLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionnaireLoader(pool *pgxpool.Pool) *QuestionnaireLoader {
	return &QuestionnaireLoader{pool: pool}
}

func (l *QuestionnaireLoader) LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM questionnaires WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Questionnaire{}, fmt.Errorf("%w: %q", domain.ErrQuestionnaireNotFound, id)
	}
	if err != nil {
		return domain.Questionnaire{}, fmt.Errorf("load questionnaire: %w", err)
	}
	var q domain.Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Questionnaire{}, fmt.Errorf("unmarshal questionnaire: %w", err)
	}
	return q, nil
}
