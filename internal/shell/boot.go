package shell

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseBooting Phase = iota
	PhaseInteractive
)

// String returns the phase name used in logs and session listings.
func (p Phase) String() string {
	switch p {
	case PhaseBooting:
		return "booting"
	case PhaseInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// BootStep reveals one block after a delay measured from the previous step.
type BootStep struct {
	Delay time.Duration
	Block Block
}

// BootSequence is the fixed reveal choreography of the error page.
var BootSequence = []BootStep{
	{Delay: 500 * time.Millisecond, Block: BlockInitialCommand},
	{Delay: 300 * time.Millisecond, Block: BlockErrorOutput},
	{Delay: 100 * time.Millisecond, Block: BlockSuggestedActions},
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d. The default uses time.AfterFunc; tests
// inject a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Start runs the startup sequence. Each step is scheduled only after the
// previous one has fired; cancelling ctx abandons the remaining steps. A
// session boots at most once, later calls are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bootStarted {
		return
	}
	s.bootStarted = true
	s.bootCtx = ctx

	stop := context.AfterFunc(ctx, s.abandonBoot)
	s.stopBootWatch = stop

	s.scheduleStep(0)
}

// scheduleStep must be called with s.mu held.
func (s *Session) scheduleStep(i int) {
	if s.bootCtx.Err() != nil {
		return
	}
	if i == len(BootSequence) {
		s.finishBoot()
		return
	}

	step := BootSequence[i]
	s.pending = s.scheduler.AfterFunc(step.Delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.pending = nil
		if s.bootCtx.Err() != nil {
			return
		}
		s.setVisible(step.Block, true)
		s.scheduleStep(i + 1)
	})
}

// finishBoot must be called with s.mu held.
func (s *Session) finishBoot() {
	if s.stopBootWatch != nil {
		s.stopBootWatch()
		s.stopBootWatch = nil
	}
	s.phase = PhaseInteractive
	s.setVisible(BlockInputLine, true)
	s.emit(Effect{Type: EffectFocus})
	s.logger.Debug("boot complete")
	if s.hooks.BootCompleted != nil {
		s.hooks.BootCompleted()
	}
}

func (s *Session) abandonBoot() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
		s.logger.Debug("boot abandoned", zap.Error(s.bootCtx.Err()))
	}
}
