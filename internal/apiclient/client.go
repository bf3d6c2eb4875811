package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"truthschool-funnel/internal/domain"
)

const (
	waitlistPath   = "/api/waitlist"
	feedbackPath   = "/api/feedback"
	newsletterPath = "/api/newsletter"

	// DefaultTimeout bounds a single round trip when the config leaves it unset.
	DefaultTimeout = 10 * time.Second
)

// Config describes how to reach the marketing API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Response is the success body returned by every endpoint.
type Response struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
	Success bool   `json:"success,omitempty"`
}

// FeedbackRequest carries the frozen email and one field per question.
type FeedbackRequest struct {
	Email  string
	Fields map[string]*string
}

// MarshalJSON flattens the answer fields next to the email.
func (r FeedbackRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		body[k] = v
	}
	body["email"] = r.Email
	return json.Marshal(body)
}

type waitlistRequest struct {
	Email string `json:"email"`
}

type newsletterRequest struct {
	Email       string                       `json:"email"`
	Preferences domain.NewsletterPreferences `json:"preferences"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Client performs single request/response round trips against the marketing API.
// It never retries; callers decide what to do with a RequestFailedError.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitWaitlist registers email for early access.
func (c *Client) SubmitWaitlist(ctx context.Context, email string) (Response, error) {
	return c.post(ctx, waitlistPath, waitlistRequest{Email: email})
}

// SubmitFeedback sends the whole answer set for a registered email.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) (Response, error) {
	return c.post(ctx, feedbackPath, req)
}

// SubmitNewsletter subscribes email with the given preferences.
func (c *Client) SubmitNewsletter(ctx context.Context, email string, prefs domain.NewsletterPreferences) (Response, error) {
	return c.post(ctx, newsletterPath, newsletterRequest{Email: email, Preferences: prefs})
}

func (c *Client) post(ctx context.Context, path string, body any) (Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("api request did not complete")
		return Response{}, &RequestFailedError{Status: 0, Message: NetworkErrorMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Int("status", resp.StatusCode).Msg("api response truncated")
		return Response{}, &RequestFailedError{Status: 0, Message: NetworkErrorMessage}
	}
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp, raw)}
	}

	var out Response
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, &RequestFailedError{Status: resp.StatusCode, Message: "invalid response body"}
	}
	return out, nil
}

// errorMessage prefers the "error" field, then "detail", then a generic status line.
func errorMessage(resp *http.Response, raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp))
}

func statusText(resp *http.Response) string {
	// resp.Status is "404 Not Found"; keep the reason phrase only.
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
