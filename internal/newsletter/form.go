package newsletter

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"truthschool-funnel/internal/apiclient"
	"truthschool-funnel/internal/domain"
)

// Preference names accepted by Toggle.
const (
	WeeklyUpdates  = "weekly_updates"
	ProductUpdates = "product_updates"
	CareerTips     = "career_tips"
)

const (
	welcomeTitle    = "Welcome aboard!"
	welcomeFallback = "Check your email for a welcome message."
	failTitle       = "Subscription failed"
	failFallback    = "Please try again or contact us if the problem persists."
)

// Subscriber is the part of the API client the form calls.
type Subscriber interface {
	SubmitNewsletter(ctx context.Context, email string, prefs domain.NewsletterPreferences) (apiclient.Response, error)
}

// Form is the newsletter signup page state.
type Form struct {
	mu          sync.Mutex
	email       string
	preferences domain.NewsletterPreferences
	inFlight    bool
	subscribed  bool
	notice      *domain.Notice
}

// NewForm builds the page state, pre-filling the email from the "email" query parameter.
func NewForm(query url.Values) *Form {
	return &Form{
		email:       domain.NormalizeEmail(query.Get("email")),
		preferences: domain.DefaultNewsletterPreferences(),
	}
}

// View is the rendered form.
type View struct {
	Email       string                       `json:"email"`
	EmailValid  bool                         `json:"emailValid"`
	Preferences domain.NewsletterPreferences `json:"preferences"`
	Submitting  bool                         `json:"submitting"`
	Subscribed  bool                         `json:"subscribed"`
	Notice      *domain.Notice               `json:"notice,omitempty"`
}

func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return View{
		Email:       f.email,
		EmailValid:  domain.IsValidEmail(f.email),
		Preferences: f.preferences,
		Submitting:  f.inFlight,
		Subscribed:  f.subscribed,
		Notice:      f.notice,
	}
}

func (f *Form) SetEmail(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = value
}

// SetPreferences replaces every opt-in at once.
func (f *Form) SetPreferences(p domain.NewsletterPreferences) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preferences = p
}

// Toggle flips one preference.
func (f *Form) Toggle(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch name {
	case WeeklyUpdates:
		f.preferences.WeeklyUpdates = !f.preferences.WeeklyUpdates
	case ProductUpdates:
		f.preferences.ProductUpdates = !f.preferences.ProductUpdates
	case CareerTips:
		f.preferences.CareerTips = !f.preferences.CareerTips
	default:
		return fmt.Errorf("unknown preference %q", name)
	}
	return nil
}

// Subscribe sends the form. Remote failures land in the notice; only rejected
// actions return an error.
func (f *Form) Subscribe(ctx context.Context, sub Subscriber) error {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	if !domain.IsValidEmail(f.email) {
		f.mu.Unlock()
		return domain.ErrInvalidEmail
	}
	f.inFlight = true
	f.notice = nil
	email, prefs := f.email, f.preferences
	f.mu.Unlock()

	resp, err := sub.SubmitNewsletter(ctx, email, prefs)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		f.notice = &domain.Notice{Kind: domain.NoticeError, Title: failTitle, Description: orDefault(apiclient.MessageOf(err), failFallback)}
		return nil
	}
	f.subscribed = true
	f.notice = &domain.Notice{Kind: domain.NoticeSuccess, Title: welcomeTitle, Description: orDefault(resp.Message, welcomeFallback)}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
