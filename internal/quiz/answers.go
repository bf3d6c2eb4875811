package quiz

import (
	"fmt"
	"maps"

	"truthschool-funnel/internal/domain"
)

// Answers holds the visitor's answers keyed by question id.
// The zero value is an empty, usable set.
type Answers struct {
	values map[domain.QuestionID]string
}

// Set records value for the question, validating it against the question's kind.
// An empty value clears the answer.
func (a *Answers) Set(q domain.Questionnaire, id domain.QuestionID, value string) error {
	question, ok := q.Question(id)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
	}
	if value == "" {
		delete(a.values, id)
		return nil
	}
	if question.Kind == domain.KindSingleChoice && !question.HasOption(value) {
		return fmt.Errorf("%w: %q for %q", domain.ErrUnknownOption, value, id)
	}
	if a.values == nil {
		a.values = make(map[domain.QuestionID]string)
	}
	a.values[id] = value
	return nil
}

// Get returns the answer for id, or "" when unanswered.
func (a Answers) Get(id domain.QuestionID) string {
	return a.values[id]
}

// Answered reports whether the question has a non-empty answer.
func (a Answers) Answered(id domain.QuestionID) bool {
	return a.values[id] != ""
}

// Len is the number of answered questions.
func (a Answers) Len() int {
	return len(a.values)
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	return Answers{values: maps.Clone(a.values)}
}

// Map exposes a copy of the raw answers.
func (a Answers) Map() map[domain.QuestionID]string {
	out := make(map[domain.QuestionID]string, len(a.values))
	maps.Copy(out, a.values)
	return out
}

// CanAdvance reports whether question may be left: it is answered or optional.
func (a Answers) CanAdvance(question domain.Question) bool {
	return question.Optional || a.Answered(question.ID)
}

// Complete checks every answer against the questionnaire before submission.
// Required questions must be answered and single-choice values must be declared options.
func (a Answers) Complete(q domain.Questionnaire) error {
	for id, value := range a.values {
		question, ok := q.Question(id)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
		}
		if question.Kind == domain.KindSingleChoice && !question.HasOption(value) {
			return fmt.Errorf("%w: %q for %q", domain.ErrUnknownOption, value, id)
		}
	}
	for _, question := range q.Questions {
		if !a.CanAdvance(question) {
			return fmt.Errorf("%w: %q", domain.ErrAnswerRequired, question.ID)
		}
	}
	return nil
}

// Payload renders the answers as feedback fields. Every question appears;
// blank answers are nil so they encode as JSON null.
func (a Answers) Payload(q domain.Questionnaire) map[string]*string {
	out := make(map[string]*string, len(q.Questions))
	for _, question := range q.Questions {
		if value, ok := a.values[question.ID]; ok && value != "" {
			v := value
			out[string(question.ID)] = &v
			continue
		}
		out[string(question.ID)] = nil
	}
	return out
}
