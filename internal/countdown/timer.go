package countdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultFrom is the number of seconds shown before the redirect fires.
	DefaultFrom     = 5
	DefaultInterval = time.Second
)

// ErrAlreadyStarted is returned when Start is called twice on the same timer.
var ErrAlreadyStarted = errors.New("countdown already started")

const (
	stateIdle int32 = iota
	stateRunning
	stateFired
	stateCancelled
)

type Config struct {
	From     int
	Interval time.Duration
	Clock    Clock
}

func (c Config) withDefaults() Config {
	if c.From <= 0 {
		c.From = DefaultFrom
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// Timer counts down once per interval and calls onElapsed exactly once when it
// reaches zero. The ticker is held from Start until the timer fires or is
// cancelled, whichever happens first.
type Timer struct {
	cfg       Config
	onTick    func(remaining int)
	onElapsed func()

	state     atomic.Int32
	remaining atomic.Int32

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New builds an idle timer. onTick may be nil.
func New(cfg Config, onTick func(remaining int), onElapsed func()) *Timer {
	cfg = cfg.withDefaults()
	if onTick == nil {
		onTick = func(int) {}
	}
	t := &Timer{
		cfg:       cfg,
		onTick:    onTick,
		onElapsed: onElapsed,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	t.remaining.Store(int32(cfg.From))
	return t
}

// Start arms the countdown.
func (t *Timer) Start() error {
	if !t.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrAlreadyStarted
	}
	ticker := t.cfg.Clock.NewTicker(t.cfg.Interval)
	go t.run(ticker)
	return nil
}

func (t *Timer) run(ticker Ticker) {
	defer close(t.done)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C():
		}
		if t.state.Load() != stateRunning {
			return
		}
		left := t.remaining.Add(-1)
		if left > 0 {
			t.onTick(int(left))
			continue
		}
		t.remaining.Store(0)
		if t.state.CompareAndSwap(stateRunning, stateFired) {
			t.onTick(0)
			t.onElapsed()
		}
		return
	}
}

// Cancel releases the timer. It reports true when it prevented the firing.
// Safe to call from any goroutine, including from inside onElapsed, and on an
// idle timer.
func (t *Timer) Cancel() bool {
	cancelled := t.state.CompareAndSwap(stateRunning, stateCancelled)
	if !cancelled && t.state.CompareAndSwap(stateIdle, stateCancelled) {
		close(t.done)
	}
	t.stopOnce.Do(func() { close(t.stop) })
	return cancelled
}

// Remaining is the number of seconds left on the display.
func (t *Timer) Remaining() int {
	return int(t.remaining.Load())
}

// Fired reports whether onElapsed has been invoked.
func (t *Timer) Fired() bool {
	return t.state.Load() == stateFired
}

// Running reports whether the countdown is armed and has not finished.
func (t *Timer) Running() bool {
	return t.state.Load() == stateRunning
}

// Done is closed once the timer has released its ticker.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
