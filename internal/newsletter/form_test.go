package newsletter_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"truthschool-funnel/internal/apiclient"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/newsletter"
)

type fakeSubscriber struct {
	calls int
	email string
	prefs domain.NewsletterPreferences
	err   error
}

func (f *fakeSubscriber) SubmitNewsletter(_ context.Context, email string, prefs domain.NewsletterPreferences) (apiclient.Response, error) {
	f.calls++
	f.email, f.prefs = email, prefs
	if f.err != nil {
		return apiclient.Response{}, f.err
	}
	return apiclient.Response{Message: "Successfully subscribed to TheTruthSchool newsletter!"}, nil
}

func TestFormPrefillsFromQuery(t *testing.T) {
	query, err := url.ParseQuery("email=jane%40x.com")
	require.NoError(t, err)

	view := newsletter.NewForm(query).View()
	assert.Equal(t, "jane@x.com", view.Email)
	assert.True(t, view.EmailValid)
	assert.Equal(t, domain.DefaultNewsletterPreferences(), view.Preferences)
	assert.False(t, view.Subscribed)
}

func TestFormSubscribe(t *testing.T) {
	form := newsletter.NewForm(url.Values{"email": {"jane@x.com"}})
	require.NoError(t, form.Toggle(newsletter.ProductUpdates))

	sub := &fakeSubscriber{}
	require.NoError(t, form.Subscribe(context.Background(), sub))

	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, "jane@x.com", sub.email)
	assert.False(t, sub.prefs.ProductUpdates)
	assert.True(t, sub.prefs.WeeklyUpdates)

	view := form.View()
	assert.True(t, view.Subscribed)
	require.NotNil(t, view.Notice)
	assert.Equal(t, domain.NoticeSuccess, view.Notice.Kind)
}

func TestFormRejectsInvalidEmail(t *testing.T) {
	form := newsletter.NewForm(url.Values{})
	sub := &fakeSubscriber{}
	assert.ErrorIs(t, form.Subscribe(context.Background(), sub), domain.ErrInvalidEmail)
	assert.Zero(t, sub.calls)
}

func TestFormSurfacesRemoteFailure(t *testing.T) {
	form := newsletter.NewForm(url.Values{"email": {"jane@x.com"}})
	sub := &fakeSubscriber{err: &apiclient.RequestFailedError{Status: 0, Message: apiclient.NetworkErrorMessage}}

	require.NoError(t, form.Subscribe(context.Background(), sub))
	view := form.View()
	assert.False(t, view.Subscribed)
	assert.False(t, view.Submitting)
	require.NotNil(t, view.Notice)
	assert.Equal(t, domain.NoticeError, view.Notice.Kind)
	assert.Equal(t, apiclient.NetworkErrorMessage, view.Notice.Description)
}

func TestFormToggleUnknown(t *testing.T) {
	form := newsletter.NewForm(url.Values{})
	assert.Error(t, form.Toggle("daily_spam"))
}
