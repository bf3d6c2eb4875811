package flow

import (
	"fmt"

	"truthschool-funnel/internal/apiclient"
	"truthschool-funnel/internal/countdown"
	"truthschool-funnel/internal/domain"
)

const (
	welcomeTitle       = "Welcome to TheTruthSchool!"
	welcomeFallback    = "You're now on the early access list. Please help us by answering a few questions."
	waitlistFailTitle  = "Something went wrong"
	waitlistFailDesc   = "Please try again or contact us if the problem persists."
	thanksTitle        = "Thank you!"
	thanksDesc         = "Your feedback helps us build better tools for you!"
	feedbackFailTitle  = "Feedback submission failed"
	feedbackFailPrefix = "We've saved your email, but couldn't record your feedback"
)

// Machine holds the immutable inputs of the reducer.
type Machine struct {
	Questionnaire domain.Questionnaire
	CountdownFrom int
}

// NewMachine validates the questionnaire before it can drive a flow.
func NewMachine(q domain.Questionnaire, countdownFrom int) (Machine, error) {
	if err := q.Validate(); err != nil {
		return Machine{}, err
	}
	if countdownFrom <= 0 {
		countdownFrom = countdown.DefaultFrom
	}
	return Machine{Questionnaire: q, CountdownFrom: countdownFrom}, nil
}

// Reduce applies ev to s. A non-nil error means the event was rejected and the
// returned state is s unchanged.
func (m Machine) Reduce(s State, ev Event) (State, Command, error) {
	next := s.Clone()
	switch ev := ev.(type) {
	case EmailChanged:
		if s.Phase != domain.PhaseCollectingEmail {
			return s, nil, fmt.Errorf("%w: email is frozen", domain.ErrWrongPhase)
		}
		next.EmailInput = ev.Value
		next.EmailValid = domain.IsValidEmail(ev.Value)
		return next, nil, nil

	case EmailSubmitted:
		if s.Phase != domain.PhaseCollectingEmail {
			return s, nil, domain.ErrWrongPhase
		}
		if s.SubmissionInFlight {
			return s, nil, domain.ErrSubmissionInFlight
		}
		if !s.EmailValid {
			return s, nil, domain.ErrInvalidEmail
		}
		next.SubmissionInFlight = true
		next.PendingEmail = s.EmailInput
		next.Notice = nil
		return next, SubmitWaitlist{Email: s.EmailInput}, nil

	case WaitlistSucceeded:
		if s.Phase != domain.PhaseCollectingEmail || !s.SubmissionInFlight {
			return s, nil, domain.ErrWrongPhase
		}
		next.Phase = domain.PhaseQuiz
		next.QuestionIndex = 0
		next.Email = s.PendingEmail
		next.PendingEmail = ""
		next.SubmissionInFlight = false
		next.Notice = &domain.Notice{Kind: domain.NoticeSuccess, Title: welcomeTitle, Description: orDefault(ev.Message, welcomeFallback)}
		return next, nil, nil

	case WaitlistFailed:
		if s.Phase != domain.PhaseCollectingEmail || !s.SubmissionInFlight {
			return s, nil, domain.ErrWrongPhase
		}
		next.PendingEmail = ""
		next.SubmissionInFlight = false
		next.Notice = &domain.Notice{Kind: domain.NoticeError, Title: waitlistFailTitle, Description: orDefault(apiclient.MessageOf(ev.Err), waitlistFailDesc)}
		return next, nil, nil

	case AnswerChanged:
		if s.Phase != domain.PhaseQuiz {
			return s, nil, domain.ErrWrongPhase
		}
		if s.SubmissionInFlight {
			return s, nil, domain.ErrSubmissionInFlight
		}
		if err := next.Answers.Set(m.Questionnaire, ev.ID, ev.Value); err != nil {
			return s, nil, err
		}
		return next, nil, nil

	case NextRequested:
		if s.Phase != domain.PhaseQuiz {
			return s, nil, domain.ErrWrongPhase
		}
		if s.SubmissionInFlight {
			return s, nil, domain.ErrSubmissionInFlight
		}
		current := m.Questionnaire.Questions[s.QuestionIndex]
		if !s.Answers.CanAdvance(current) {
			return s, nil, fmt.Errorf("%w: %q", domain.ErrAnswerRequired, current.ID)
		}
		if s.QuestionIndex < m.Questionnaire.Len()-1 {
			next.QuestionIndex++
			return next, nil, nil
		}
		if err := s.Answers.Complete(m.Questionnaire); err != nil {
			return s, nil, err
		}
		next.SubmissionInFlight = true
		next.Notice = nil
		return next, SubmitFeedback{Email: s.Email, Answers: s.Answers.Payload(m.Questionnaire)}, nil

	case FeedbackSucceeded:
		if s.Phase != domain.PhaseQuiz || !s.SubmissionInFlight {
			return s, nil, domain.ErrWrongPhase
		}
		next.Phase = domain.PhaseCompleted
		next.SubmissionInFlight = false
		next.RedirectArmed = true
		next.Countdown = m.CountdownFrom
		next.Notice = &domain.Notice{Kind: domain.NoticeSuccess, Title: thanksTitle, Description: thanksDesc}
		return next, ArmRedirect{From: m.CountdownFrom}, nil

	case FeedbackFailed:
		if s.Phase != domain.PhaseQuiz || !s.SubmissionInFlight {
			return s, nil, domain.ErrWrongPhase
		}
		next.SubmissionInFlight = false
		next.Notice = &domain.Notice{Kind: domain.NoticePartial, Title: feedbackFailTitle, Description: partialFailure(ev.Err)}
		return next, nil, nil

	case CountdownTicked:
		if s.Phase != domain.PhaseCompleted {
			return s, nil, domain.ErrWrongPhase
		}
		if s.Navigated {
			return s, nil, nil
		}
		next.Countdown = ev.Remaining
		return next, nil, nil

	case CountdownElapsed, ContinueRequested:
		return m.navigate(s, next, NewsletterTarget(s.Email))

	case SkipRequested:
		return m.navigate(s, next, HomePath)
	}
	return s, nil, fmt.Errorf("unknown event %T", ev)
}

// navigate is the single check-and-set of the Navigated flag.
func (m Machine) navigate(s, next State, target string) (State, Command, error) {
	if s.Phase != domain.PhaseCompleted {
		return s, nil, domain.ErrWrongPhase
	}
	if s.Navigated {
		return s, nil, domain.ErrAlreadyNavigated
	}
	next.Navigated = true
	next.RedirectArmed = false
	return next, Navigate{Target: target}, nil
}

func partialFailure(err error) string {
	msg := apiclient.MessageOf(err)
	if msg == "" {
		return feedbackFailPrefix + ". We'll follow up with you directly."
	}
	return fmt.Sprintf("%s (%s). You can try sending it again.", feedbackFailPrefix, msg)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
