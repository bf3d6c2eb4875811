package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/newsletter"
)

// NewsletterHandler backs the newsletter page the funnel redirects to.
type NewsletterHandler struct {
	subscriber newsletter.Subscriber
	log        zerolog.Logger
}

func NewNewsletterHandler(subscriber newsletter.Subscriber, log zerolog.Logger) *NewsletterHandler {
	return &NewsletterHandler{subscriber: subscriber, log: log}
}

type subscribeRequest struct {
	Email       string                        `json:"email"`
	Preferences *domain.NewsletterPreferences `json:"preferences"`
}

type toggleRequest struct {
	subscribeRequest
	Preference string `json:"preference"`
}

// Form returns the form pre-filled from the query string.
func (h *NewsletterHandler) Form(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newsletter.NewForm(r.URL.Query()).View())
}

// Toggle flips one preference of the posted form and returns the updated view.
func (h *NewsletterHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form := formFrom(req.subscribeRequest)
	if err := form.Toggle(req.Preference); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, form.View())
}

// Subscribe submits the form.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form := formFrom(req)
	if err := form.Subscribe(r.Context(), h.subscriber); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrSubmissionInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	view := form.View()
	if !view.Subscribed {
		h.log.Warn().Str("reason", view.Notice.Description).Msg("newsletter subscription failed")
		writeJSON(w, http.StatusBadGateway, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// formFrom rebuilds the page state the client posted. Missing preferences mean "all on".
func formFrom(req subscribeRequest) *newsletter.Form {
	form := newsletter.NewForm(nil)
	form.SetEmail(domain.NormalizeEmail(req.Email))
	if req.Preferences != nil {
		form.SetPreferences(*req.Preferences)
	}
	return form
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
