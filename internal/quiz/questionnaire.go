package quiz

import "truthschool-funnel/internal/domain"

// CareerFeedbackID is the id of the questionnaire shown after joining the waitlist.
const CareerFeedbackID = "career-feedback"

const (
	Frustration        domain.QuestionID = "frustration"
	AICoachHelp        domain.QuestionID = "ai_coach_help"
	ConfidenceArea     domain.QuestionID = "confidence_area"
	AdditionalFeatures domain.QuestionID = "additional_features"
)

// CareerFeedback returns the built-in four step questionnaire.
func CareerFeedback() domain.Questionnaire {
	return domain.Questionnaire{
		ID: CareerFeedbackID,
		Questions: []domain.Question{
			{
				ID:     Frustration,
				Prompt: "What's the single most frustrating part of your job search right now?",
				Kind:   domain.KindFreeText,
			},
			{
				ID:     AICoachHelp,
				Prompt: "If you could have an AI career coach, what is the first thing you would ask it for help with?",
				Kind:   domain.KindFreeText,
			},
			{
				ID:     ConfidenceArea,
				Prompt: "When preparing for technical interviews, which area do you feel least confident in?",
				Kind:   domain.KindSingleChoice,
				Options: []string{
					"Data Structures & Algorithms",
					"System Design",
					"Explaining Your Thought Process",
					"Company-Specific Questions",
				},
			},
			{
				ID:       AdditionalFeatures,
				Prompt:   "Is there anything else you'd love to see in a job preparation platform?",
				Kind:     domain.KindFreeText,
				Optional: true,
			},
		},
	}
}
