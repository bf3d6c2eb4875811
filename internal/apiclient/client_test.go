package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"truthschool-funnel/internal/domain"
)

type recorded struct {
	path        string
	contentType string
	body        map[string]any
}

func newAPI(t *testing.T, status int, respBody string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		calls = append(calls, recorded{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: body})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSubmitWaitlistSuccess(t *testing.T) {
	srv, calls := newAPI(t, http.StatusOK, `{"message":"Successfully joined the waitlist!","success":true}`)
	client := New(Config{BaseURL: srv.URL + "/"})

	resp, err := client.SubmitWaitlist(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Successfully joined the waitlist!", resp.Message)
	assert.True(t, resp.Success)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/api/waitlist", call.path)
	assert.Equal(t, "application/json", call.contentType)
	assert.Equal(t, "jane@x.com", call.body["email"])
}

func TestSubmitFeedbackSendsNullForBlankFields(t *testing.T) {
	srv, calls := newAPI(t, http.StatusCreated, `{"message":"Feedback submitted successfully!","status":"ok"}`)
	client := New(Config{BaseURL: srv.URL})

	answer := "too many rejections"
	resp, err := client.SubmitFeedback(context.Background(), FeedbackRequest{
		Email: "jane@x.com",
		Fields: map[string]*string{
			"frustration":         &answer,
			"additional_features": nil,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	body := (*calls)[0].body
	assert.Equal(t, "/api/feedback", (*calls)[0].path)
	assert.Equal(t, "jane@x.com", body["email"])
	assert.Equal(t, "too many rejections", body["frustration"])
	v, present := body["additional_features"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestSubmitNewsletterSendsPreferences(t *testing.T) {
	srv, calls := newAPI(t, http.StatusCreated, `{"message":"Successfully subscribed to TheTruthSchool newsletter!"}`)
	client := New(Config{BaseURL: srv.URL})

	prefs := domain.DefaultNewsletterPreferences()
	prefs.ProductUpdates = false
	_, err := client.SubmitNewsletter(context.Background(), "jane@x.com", prefs)
	require.NoError(t, err)

	body := (*calls)[0].body
	assert.Equal(t, "/api/newsletter", (*calls)[0].path)
	assert.Equal(t, map[string]any{
		"weekly_updates":  true,
		"product_updates": false,
		"career_tips":     true,
	}, body["preferences"])
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Invalid email format","success":false}`, "Invalid email format"},
		{"detail field", http.StatusInternalServerError, `{"detail":"Failed to join waitlist: boom"}`, "Failed to join waitlist: boom"},
		{"no payload", http.StatusBadGateway, ``, "HTTP 502: Bad Gateway"},
		{"html payload", http.StatusNotFound, `<html>nope</html>`, "HTTP 404: Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newAPI(t, tc.status, tc.body)
			client := New(Config{BaseURL: srv.URL})

			_, err := client.SubmitWaitlist(context.Background(), "jane@x.com")
			var reqErr *RequestFailedError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tc.status, reqErr.Status)
			assert.Equal(t, tc.message, reqErr.Message)
			assert.False(t, IsNetworkError(err))
		})
	}
}

func TestTransportFailureIsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := client.SubmitWaitlist(context.Background(), "jane@x.com")

	var reqErr *RequestFailedError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.Status)
	assert.Equal(t, NetworkErrorMessage, reqErr.Message)
	assert.True(t, IsNetworkError(err))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.SubmitWaitlist(context.Background(), "jane@x.com")
	assert.True(t, IsNetworkError(err), "got %v", err)
}

func TestInvalidSuccessBody(t *testing.T) {
	srv, _ := newAPI(t, http.StatusOK, `not json`)
	client := New(Config{BaseURL: srv.URL})

	_, err := client.SubmitWaitlist(context.Background(), "jane@x.com")
	assert.Equal(t, http.StatusOK, StatusOf(err))
	assert.Equal(t, "invalid response body", MessageOf(err))
}
