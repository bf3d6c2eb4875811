package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"truthschool-funnel/internal/apiclient"
	"truthschool-funnel/internal/countdown"
	"truthschool-funnel/internal/domain"
)

// ErrClosed is returned for actions on a flow whose visit has ended.
var ErrClosed = errors.New("flow closed")

// Gateway is the part of the API client the flow calls.
type Gateway interface {
	SubmitWaitlist(ctx context.Context, email string) (apiclient.Response, error)
	SubmitFeedback(ctx context.Context, req apiclient.FeedbackRequest) (apiclient.Response, error)
}

// Navigator hands the visitor off to another page.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Controller runs one visit's flow. Reducer steps are serialized by a mutex;
// network calls run outside it and the in-flight flag rejects duplicates.
type Controller struct {
	machine   Machine
	gateway   Gateway
	navigator Navigator
	redirect  countdown.Config
	log       zerolog.Logger

	mu          sync.Mutex
	state       State
	timer       *countdown.Timer
	closed      bool
	subscribers map[chan State]struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock drives the redirect countdown from clock, mostly for tests.
func WithClock(clock countdown.Clock) Option {
	return func(c *Controller) { c.redirect.Clock = clock }
}

// WithTickInterval overrides the one second countdown step.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) { c.redirect.Interval = d }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func NewController(machine Machine, gateway Gateway, navigator Navigator, opts ...Option) *Controller {
	c := &Controller{
		machine:     machine,
		gateway:     gateway,
		navigator:   navigator,
		log:         zerolog.Nop(),
		state:       NewState(),
		subscribers: make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.redirect.From = machine.CountdownFrom
	return c
}

// Machine returns the reducer driving this controller.
func (c *Controller) Machine() Machine {
	return c.machine
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// View renders the current state.
func (c *Controller) View() View {
	return c.machine.View(c.Snapshot())
}

// SetEmail records a keystroke in the email field.
func (c *Controller) SetEmail(value string) error {
	_, err := c.dispatch(EmailChanged{Value: value})
	return err
}

// SubmitEmail joins the waitlist. Remote failures are surfaced as a notice on
// the state, not returned; only rejected actions return an error.
func (c *Controller) SubmitEmail(ctx context.Context) error {
	cmd, err := c.dispatch(EmailSubmitted{})
	if err != nil {
		return err
	}
	c.execute(ctx, cmd)
	return nil
}

// Answer records the answer for a question.
func (c *Controller) Answer(id domain.QuestionID, value string) error {
	_, err := c.dispatch(AnswerChanged{ID: id, Value: value})
	return err
}

// Next advances the quiz, or submits it from the last question.
func (c *Controller) Next(ctx context.Context) error {
	cmd, err := c.dispatch(NextRequested{})
	if err != nil {
		return err
	}
	c.execute(ctx, cmd)
	return nil
}

// Continue skips the rest of the countdown and navigates now.
func (c *Controller) Continue() error {
	cmd, err := c.dispatch(ContinueRequested{})
	if err != nil {
		return err
	}
	c.execute(context.Background(), cmd)
	return nil
}

// Skip leaves the completed flow for the home page.
func (c *Controller) Skip() error {
	cmd, err := c.dispatch(SkipRequested{})
	if err != nil {
		return err
	}
	c.execute(context.Background(), cmd)
	return nil
}

// Close ends the visit: the countdown is released and subscribers are closed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Cancel()
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// Subscribe streams state changes, starting with the current state.
// Slow readers only see the latest state. The caller must invoke cancel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.state.Clone()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) dispatch(ev Event) (Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	next, cmd, err := c.machine.Reduce(c.state, ev)
	if err != nil {
		return nil, err
	}
	c.state = next
	c.broadcastLocked()
	return cmd, nil
}

func (c *Controller) execute(ctx context.Context, cmd Command) {
	switch cmd := cmd.(type) {
	case nil:
	case SubmitWaitlist:
		resp, err := c.gateway.SubmitWaitlist(ctx, cmd.Email)
		if err != nil {
			c.log.Warn().Err(err).Int("status", apiclient.StatusOf(err)).Bool("network", apiclient.IsNetworkError(err)).Msg("waitlist submission failed")
			c.settle(WaitlistFailed{Err: err})
			return
		}
		c.log.Info().Msg("joined waitlist")
		c.settle(WaitlistSucceeded{Message: resp.Message})
	case SubmitFeedback:
		resp, err := c.gateway.SubmitFeedback(ctx, apiclient.FeedbackRequest{Email: cmd.Email, Fields: cmd.Answers})
		if err != nil {
			c.log.Warn().Err(err).Int("status", apiclient.StatusOf(err)).Bool("network", apiclient.IsNetworkError(err)).Msg("feedback submission failed after waitlist succeeded")
			c.settle(FeedbackFailed{Err: err})
			return
		}
		c.log.Info().Msg("feedback recorded")
		arm, err := c.dispatch(FeedbackSucceeded{Message: resp.Message})
		if err != nil {
			c.log.Debug().Err(err).Msg("feedback result dropped")
			return
		}
		c.execute(ctx, arm)
	case ArmRedirect:
		c.armRedirect()
	case Navigate:
		c.mu.Lock()
		ev := c.log.Info().Str("target", cmd.Target)
		if c.timer != nil {
			ev = ev.Bool("countdown_elapsed", c.timer.Fired()).Int("remaining", c.timer.Remaining())
			c.timer.Cancel()
		}
		c.mu.Unlock()
		ev.Msg("navigating")
		c.navigator.Navigate(cmd.Target)
	}
}

// settle records the outcome of a network call; results arriving after Close are dropped.
func (c *Controller) settle(ev Event) {
	if _, err := c.dispatch(ev); err != nil {
		c.log.Debug().Err(err).Msg("request outcome dropped")
	}
}

func (c *Controller) armRedirect() {
	timer := countdown.New(c.redirect,
		func(remaining int) { c.settle(CountdownTicked{Remaining: remaining}) },
		func() {
			cmd, err := c.dispatch(CountdownElapsed{})
			if err != nil {
				return
			}
			c.execute(context.Background(), cmd)
		},
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Navigated {
		return
	}
	// one countdown per visit
	if c.timer != nil && c.timer.Running() {
		c.log.Warn().Msg("countdown already running")
		return
	}
	c.timer = timer
	if err := timer.Start(); err != nil {
		c.log.Error().Err(err).Msg("countdown not started")
	}
}

func (c *Controller) broadcastLocked() {
	snapshot := c.state.Clone()
	for ch := range c.subscribers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale state so the newest one always lands
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
