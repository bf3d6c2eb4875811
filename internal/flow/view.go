package flow

import "truthschool-funnel/internal/domain"

// View is what the page renders for a state.
type View struct {
	Phase         domain.Phase                 `json:"phase"`
	EmailInput    string                       `json:"emailInput,omitempty"`
	EmailValid    bool                         `json:"emailValid"`
	Email         string                       `json:"email,omitempty"`
	QuestionIndex int                          `json:"questionIndex"`
	QuestionCount int                          `json:"questionCount"`
	Question      *domain.Question             `json:"question,omitempty"`
	Answers       map[domain.QuestionID]string `json:"answers,omitempty"`
	CanAdvance    bool                         `json:"canAdvance"`
	LastQuestion  bool                         `json:"lastQuestion"`
	Submitting    bool                         `json:"submitting"`
	RedirectArmed bool                         `json:"redirectArmed"`
	Countdown     int                          `json:"countdown,omitempty"`
	Notice        *domain.Notice               `json:"notice,omitempty"`
}

// View projects s for rendering.
func (m Machine) View(s State) View {
	v := View{
		Phase:         s.Phase,
		EmailInput:    s.EmailInput,
		EmailValid:    s.EmailValid,
		Email:         s.Email,
		QuestionCount: m.Questionnaire.Len(),
		Submitting:    s.SubmissionInFlight,
		RedirectArmed: s.RedirectArmed,
		Countdown:     s.Countdown,
		Notice:        s.Notice,
	}
	switch s.Phase {
	case domain.PhaseCollectingEmail:
		v.CanAdvance = s.EmailValid && !s.SubmissionInFlight
	case domain.PhaseQuiz:
		q := m.Questionnaire.Questions[s.QuestionIndex]
		v.QuestionIndex = s.QuestionIndex
		v.Question = &q
		v.Answers = s.Answers.Map()
		v.CanAdvance = s.Answers.CanAdvance(q) && !s.SubmissionInFlight
		v.LastQuestion = s.QuestionIndex == m.Questionnaire.Len()-1
	case domain.PhaseCompleted:
		v.CanAdvance = !s.Navigated
	}
	return v
}
