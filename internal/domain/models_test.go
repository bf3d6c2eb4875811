package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"truthschool-funnel/internal/domain"
)

func TestQuestionnaireValidate(t *testing.T) {
	valid := domain.Questionnaire{
		ID: "q",
		Questions: []domain.Question{
			{ID: "a", Prompt: "A?", Kind: domain.KindFreeText},
			{ID: "b", Prompt: "B?", Kind: domain.KindSingleChoice, Options: []string{"x", "y"}},
		},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]domain.Questionnaire{
		"empty":     {ID: "q"},
		"duplicate": {ID: "q", Questions: []domain.Question{{ID: "a", Kind: domain.KindFreeText}, {ID: "a", Kind: domain.KindFreeText}}},
		"no id":     {ID: "q", Questions: []domain.Question{{Kind: domain.KindFreeText}}},
		"no opts":   {ID: "q", Questions: []domain.Question{{ID: "a", Kind: domain.KindSingleChoice}}},
		"bad kind":  {ID: "q", Questions: []domain.Question{{ID: "a", Kind: "slider"}}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			err := q.Validate()
			assert.True(t, errors.Is(err, domain.ErrInvalidQuestionnaire), "got %v", err)
		})
	}
}

func TestQuestionLookup(t *testing.T) {
	q := domain.Questionnaire{Questions: []domain.Question{
		{ID: "pick", Kind: domain.KindSingleChoice, Options: []string{"x"}},
	}}
	got, ok := q.Question("pick")
	require.True(t, ok)
	assert.True(t, got.HasOption("x"))
	assert.False(t, got.HasOption("y"))

	_, ok = q.Question("missing")
	assert.False(t, ok)
}
