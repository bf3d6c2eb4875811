package domain

import (
	"fmt"
	"slices"
	"time"
)

// QuestionID identifies a question and doubles as its field name in the feedback payload.
type QuestionID string

// QuestionKind selects the input widget and the validation applied to answers.
type QuestionKind string

const (
	KindFreeText     QuestionKind = "free_text"
	KindSingleChoice QuestionKind = "single_choice"
)

// Question models one quiz step.
type Question struct {
	ID       QuestionID   `json:"id"`
	Prompt   string       `json:"prompt"`
	Kind     QuestionKind `json:"kind"`
	Options  []string     `json:"options,omitempty"` // single choice only
	Optional bool         `json:"optional,omitempty"`
}

// HasOption reports whether value is one of the declared options.
func (q Question) HasOption(value string) bool {
	return slices.Contains(q.Options, value)
}

// Questionnaire is the ordered, immutable list of questions shown after the waitlist step.
type Questionnaire struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (q Questionnaire) Len() int {
	return len(q.Questions)
}

// Question looks up a question by id.
func (q Questionnaire) Question(id QuestionID) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Validate checks the questionnaire can drive a flow: at least one question,
// unique ids, and options on every single-choice question.
func (q Questionnaire) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %q has no questions", ErrInvalidQuestionnaire, q.ID)
	}
	seen := make(map[QuestionID]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidQuestionnaire, i)
		}
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuestionnaire, question.ID)
		}
		seen[question.ID] = struct{}{}
		switch question.Kind {
		case KindFreeText:
		case KindSingleChoice:
			if len(question.Options) == 0 {
				return fmt.Errorf("%w: question %q has no options", ErrInvalidQuestionnaire, question.ID)
			}
		default:
			return fmt.Errorf("%w: question %q has unknown kind %q", ErrInvalidQuestionnaire, question.ID, question.Kind)
		}
	}
	return nil
}

// Phase is the coarse position of a visitor in the waitlist flow.
type Phase string

const (
	PhaseCollectingEmail Phase = "collecting_email"
	PhaseQuiz            Phase = "quiz"
	PhaseCompleted       Phase = "completed"
)

// NoticeKind classifies user-visible messages.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticePartial NoticeKind = "partial"
)

// Notice is a toast-style message surfaced to the visitor.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// NewsletterPreferences are the opt-ins sent with a newsletter subscription.
type NewsletterPreferences struct {
	WeeklyUpdates  bool `json:"weekly_updates"`
	ProductUpdates bool `json:"product_updates"`
	CareerTips     bool `json:"career_tips"`
}

// DefaultNewsletterPreferences opts in to everything.
func DefaultNewsletterPreferences() NewsletterPreferences {
	return NewsletterPreferences{WeeklyUpdates: true, ProductUpdates: true, CareerTips: true}
}

// VisitInfo is a snapshot-friendly view of an open page visit.
type VisitInfo struct {
	ID        string    `json:"id"`
	OpenedAt  time.Time `json:"openedAt"`
	Phase     Phase     `json:"phase"`
	Navigated bool      `json:"navigated"`
}
