// Package countdowntest provides a manually stepped clock for countdown tests.
package countdowntest

import (
	"sync"
	"testing"
	"time"

	"truthschool-funnel/internal/countdown"
)

// Clock hands out tickers whose ticks are delivered by the test.
type Clock struct {
	mu     sync.Mutex
	ticker *Ticker
	ready  chan struct{}
}

func New() *Clock {
	return &Clock{ready: make(chan struct{})}
}

func (c *Clock) NewTicker(time.Duration) countdown.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.ticker == nil
	c.ticker = &Ticker{ch: make(chan time.Time)}
	if first {
		close(c.ready)
	}
	return c.ticker
}

// Tick delivers one tick and blocks until the countdown goroutine received it.
func (c *Clock) Tick(tb testing.TB) {
	tb.Helper()
	if !c.TryTick(2 * time.Second) {
		tb.Fatal("countdown did not receive tick")
	}
}

// TryTick delivers one tick unless nobody receives it within wait.
func (c *Clock) TryTick(wait time.Duration) bool {
	timeout := time.After(wait)
	select {
	case <-c.ready:
	case <-timeout:
		return false
	}
	c.mu.Lock()
	ticker := c.ticker
	c.mu.Unlock()
	select {
	case ticker.ch <- time.Now():
		return true
	case <-timeout:
		return false
	}
}

// Started reports whether a ticker was ever requested.
func (c *Clock) Started() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Stopped reports whether the latest ticker was released.
func (c *Clock) Stopped() bool {
	c.mu.Lock()
	ticker := c.ticker
	c.mu.Unlock()
	if ticker == nil {
		return false
	}
	return ticker.stopped()
}

type Ticker struct {
	ch     chan time.Time
	mu     sync.Mutex
	isStop bool
}

func (t *Ticker) C() <-chan time.Time { return t.ch }

func (t *Ticker) Stop() {
	t.mu.Lock()
	t.isStop = true
	t.mu.Unlock()
}

func (t *Ticker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isStop
}
