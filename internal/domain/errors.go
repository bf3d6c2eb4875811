package domain

import "errors"

var (
	// ErrInvalidEmail is returned when an address does not match the accepted email pattern.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrAnswerRequired is returned when a required question is left blank.
	ErrAnswerRequired = errors.New("answer required")
	// ErrUnknownQuestion indicates an answer was given for a question outside the questionnaire.
	ErrUnknownQuestion = errors.New("question not found")
	// ErrUnknownOption indicates a single-choice answer that is not one of the declared options.
	ErrUnknownOption = errors.New("option not found")
	// ErrSubmissionInFlight is returned when a step is submitted while its request is still pending.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrWrongPhase is returned when an action does not apply to the current flow phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrAlreadyNavigated is returned once the flow has handed off to the next page.
	ErrAlreadyNavigated = errors.New("flow already navigated away")
	// ErrQuestionnaireNotFound indicates the questionnaire content could not be loaded.
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	// ErrInvalidQuestionnaire indicates questionnaire content that cannot drive a flow.
	ErrInvalidQuestionnaire = errors.New("invalid questionnaire")
	// ErrVisitNotFound is returned when a visit id is not registered.
	ErrVisitNotFound = errors.New("visit not found")
)
