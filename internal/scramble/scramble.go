// Package scramble produces the "decoding" text effect: a string whose
// characters settle left to right out of random glyphs over a fixed number
// of frames. Runs are keyed by element; starting a run for a key cancels
// and waits out the previous run for that key, so animations on one element
// never overlap.
package scramble

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultGlyphs are drawn for unsettled positions.
const DefaultGlyphs = `!<>-_\/[]{}=+*^?#`

const (
	DefaultInterval = 30 * time.Millisecond
	DefaultFrames   = 20
	DefaultMaxRuns  = 8
)

// ErrTooManyRuns is returned by Run when a new key would exceed the run limit.
var ErrTooManyRuns = errors.New("scramble: too many concurrent runs")

// Scrambler runs keyed scramble animations.
type Scrambler struct {
	mu   sync.Mutex
	runs map[string]*run

	interval time.Duration
	frames   int
	maxRuns  int
	glyphs   []rune
	intn     func(n int) int
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scrambler.
type Option func(*Scrambler)

// WithInterval sets the time between frames.
func WithInterval(d time.Duration) Option {
	return func(s *Scrambler) { s.interval = d }
}

// WithFrames sets how many frames a run takes to settle.
func WithFrames(n int) Option {
	return func(s *Scrambler) { s.frames = n }
}

// WithMaxRuns caps how many keys may animate at once; n <= 0 means no cap.
func WithMaxRuns(n int) Option {
	return func(s *Scrambler) { s.maxRuns = n }
}

// WithGlyphs sets the random glyph alphabet.
func WithGlyphs(glyphs string) Option {
	return func(s *Scrambler) { s.glyphs = []rune(glyphs) }
}

// WithIntn replaces the random source, for deterministic output.
func WithIntn(fn func(n int) int) Option {
	return func(s *Scrambler) { s.intn = fn }
}

// New creates a Scrambler.
func New(opts ...Option) *Scrambler {
	s := &Scrambler{
		runs:     make(map[string]*run),
		interval: DefaultInterval,
		frames:   DefaultFrames,
		maxRuns:  DefaultMaxRuns,
		glyphs:   []rune(DefaultGlyphs),
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.frames < 1 {
		s.frames = 1
	}
	if len(s.glyphs) == 0 {
		s.glyphs = []rune(DefaultGlyphs)
	}
	return s
}

// Settled returns how many leading characters of an n-character target show
// through at frame i (1-based). The last frame settles everything.
func (s *Scrambler) Settled(n, i int) int {
	if i >= s.frames {
		return n
	}
	return (n*i + s.frames - 1) / s.frames
}

// Frame renders target with the first settled characters in place and the
// rest replaced by glyphs. Whitespace is never scrambled.
func (s *Scrambler) Frame(target []rune, settled int) string {
	out := make([]rune, len(target))
	for i, r := range target {
		switch {
		case i < settled, r == ' ', r == '\t', r == '\n':
			out[i] = r
		default:
			out[i] = s.glyphs[s.intn(len(s.glyphs))]
		}
	}
	return string(out)
}

// Sequence returns every frame of a run without waiting between them.
func (s *Scrambler) Sequence(target string) []string {
	runes := []rune(target)
	frames := make([]string, 0, s.frames)
	for i := 1; i <= s.frames; i++ {
		frames = append(frames, s.Frame(runes, s.Settled(len(runes), i)))
	}
	return frames
}

// Run animates target for key, calling emit once per frame. It cancels any
// earlier run for the same key and waits for it to stop before the first
// frame. Run blocks until the text has settled (nil) or the run is
// cancelled, by ctx or by a newer run (the context error). A key that is not
// already running is refused with ErrTooManyRuns once the cap is reached.
func (s *Scrambler) Run(ctx context.Context, key, target string, emit func(string)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{cancel: cancel, done: make(chan struct{})}
	defer close(r.done)

	s.mu.Lock()
	prev := s.runs[key]
	if prev == nil && s.maxRuns > 0 && len(s.runs) >= s.maxRuns {
		s.mu.Unlock()
		return ErrTooManyRuns
	}
	s.runs[key] = r
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.runs[key] == r {
			delete(s.runs, key)
		}
		s.mu.Unlock()
	}()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	runes := []rune(target)
	for i := 1; i <= s.frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		emit(s.Frame(runes, s.Settled(len(runes), i)))
	}
	return nil
}

// Stop cancels the run for key, if any, and waits for it to finish.
func (s *Scrambler) Stop(key string) {
	s.mu.Lock()
	r := s.runs[key]
	s.mu.Unlock()

	if r != nil {
		r.cancel()
		<-r.done
	}
}

// Close cancels every run and waits for them.
func (s *Scrambler) Close() {
	s.mu.Lock()
	runs := make([]*run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.Unlock()

	for _, r := range runs {
		r.cancel()
		<-r.done
	}
}

// Active returns the number of runs in flight.
func (s *Scrambler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
