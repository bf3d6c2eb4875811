package flow

import (
	"net/url"

	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/quiz"
)

const (
	// NewsletterPath is where a completed flow hands off.
	NewsletterPath = "/newsletter"
	// HomePath is where "skip for now" goes.
	HomePath = "/"
)

// State is the single source of truth for one page visit.
type State struct {
	Phase      domain.Phase
	EmailInput string
	EmailValid bool
	// Email is frozen once the waitlist call succeeds.
	Email string
	// PendingEmail is the address of the waitlist call in flight.
	PendingEmail string

	// QuestionIndex is meaningful only while Phase is PhaseQuiz.
	QuestionIndex int
	Answers       quiz.Answers

	SubmissionInFlight bool
	RedirectArmed      bool
	Countdown          int
	Navigated          bool

	Notice *domain.Notice
}

// NewState returns the state of a fresh visit.
func NewState() State {
	return State{Phase: domain.PhaseCollectingEmail}
}

// Clone returns a copy that shares nothing mutable with s.
func (s State) Clone() State {
	out := s
	out.Answers = s.Answers.Clone()
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return out
}

// NewsletterTarget builds the hand-off location for email.
func NewsletterTarget(email string) string {
	return NewsletterPath + "?" + url.Values{"email": {email}}.Encode()
}
