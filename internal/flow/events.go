package flow

import "truthschool-funnel/internal/domain"

// Event is an input to the reducer: a user action or the outcome of a command.
type Event interface {
	isEvent()
}

type (
	EmailChanged      struct{ Value string }
	EmailSubmitted    struct{}
	WaitlistSucceeded struct{ Message string }
	WaitlistFailed    struct{ Err error }
	AnswerChanged     struct {
		ID    domain.QuestionID
		Value string
	}
	NextRequested     struct{}
	FeedbackSucceeded struct{ Message string }
	FeedbackFailed    struct{ Err error }
	CountdownTicked   struct{ Remaining int }
	CountdownElapsed  struct{}
	ContinueRequested struct{}
	SkipRequested     struct{}
)

func (EmailChanged) isEvent()      {}
func (EmailSubmitted) isEvent()    {}
func (WaitlistSucceeded) isEvent() {}
func (WaitlistFailed) isEvent()    {}
func (AnswerChanged) isEvent()     {}
func (NextRequested) isEvent()     {}
func (FeedbackSucceeded) isEvent() {}
func (FeedbackFailed) isEvent()    {}
func (CountdownTicked) isEvent()   {}
func (CountdownElapsed) isEvent()  {}
func (ContinueRequested) isEvent() {}
func (SkipRequested) isEvent()     {}

// Command is a side effect requested by the reducer. A nil Command means none.
type Command interface {
	isCommand()
}

type (
	SubmitWaitlist struct{ Email string }
	SubmitFeedback struct {
		Email   string
		Answers map[string]*string
	}
	ArmRedirect struct{ From int }
	Navigate    struct{ Target string }
)

func (SubmitWaitlist) isCommand() {}
func (SubmitFeedback) isCommand() {}
func (ArmRedirect) isCommand()    {}
func (Navigate) isCommand()       {}
