package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// manualClock is a Scheduler whose time only moves on Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	fired   bool
	stopped bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance fires due timers in order. Callbacks run without the clock lock so
// they may schedule further timers.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// recorder collects effects.
type recorder struct {
	mu      sync.Mutex
	effects []Effect
}

func (r *recorder) Apply(e Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
}

func (r *recorder) All() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect(nil), r.effects...)
}

func (r *recorder) Types() []EffectType {
	var types []EffectType
	for _, e := range r.All() {
		types = append(types, e.Type)
	}
	return types
}

func (r *recorder) OfType(t EffectType) []Effect {
	var out []Effect
	for _, e := range r.All() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = nil
}

// newInteractiveSession returns a session that has finished booting, with the
// recorder cleared.
func newInteractiveSession(t *testing.T, opts ...Option) (*Session, *recorder) {
	t.Helper()

	rec := &recorder{}
	clock := &manualClock{}
	opts = append([]Option{WithScheduler(clock)}, opts...)
	s := NewSession(rec, Prompt{Dir: HomeDir, Command: "cat resources/views/errors/404.blade.php"}, opts...)

	s.Start(context.Background())
	clock.Advance(time.Second)
	require.Equal(t, PhaseInteractive, s.Phase())

	rec.Reset()
	return s, rec
}

// lastResult returns the fragment of the newest result entry.
func lastResult(t *testing.T, s *Session) string {
	t.Helper()

	out := s.Snapshot().Output
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Kind == EntryResult {
			return out[i].HTML
		}
	}
	t.Fatal("no result entry in output")
	return ""
}
