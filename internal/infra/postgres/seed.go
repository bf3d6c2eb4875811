package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"truthschool-funnel/internal/domain"
)

// UpsertQuestionnaire stores q, replacing any previous content with the same id.
func UpsertQuestionnaire(ctx context.Context, db *bun.DB, q domain.Questionnaire) error {
	_, err := insertQuestionnaire(ctx, db, q,
		`ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`)
	return err
}

// EnsureQuestionnaire stores q only if no questionnaire with its id exists yet.
// It reports whether a row was written.
func EnsureQuestionnaire(ctx context.Context, db *bun.DB, q domain.Questionnaire) (bool, error) {
	return insertQuestionnaire(ctx, db, q, `ON CONFLICT (id) DO NOTHING`)
}

func insertQuestionnaire(ctx context.Context, db *bun.DB, q domain.Questionnaire, onConflict string) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return false, fmt.Errorf("marshal questionnaire: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO questionnaires (id, data) VALUES (?, ?::jsonb) `+onConflict,
		q.ID, string(data))
	if err != nil {
		return false, fmt.Errorf("store questionnaire %q: %w", q.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
