package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootRevealsBlocksInOrder(t *testing.T) {
	rec := &recorder{}
	clock := &manualClock{}
	booted := 0
	s := NewSession(rec, Prompt{}, WithScheduler(clock), WithHooks(Hooks{
		BootCompleted: func() { booted++ },
	}))

	s.Start(context.Background())
	assert.Empty(t, rec.All(), "nothing is revealed before the first delay")

	clock.Advance(499 * time.Millisecond)
	assert.Empty(t, rec.All())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []Effect{{Type: EffectReveal, Block: BlockInitialCommand}}, rec.All())
	assert.Equal(t, PhaseBooting, s.Phase())

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, Effect{Type: EffectReveal, Block: BlockErrorOutput}, rec.All()[1])

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []Effect{
		{Type: EffectReveal, Block: BlockInitialCommand},
		{Type: EffectReveal, Block: BlockErrorOutput},
		{Type: EffectReveal, Block: BlockSuggestedActions},
		{Type: EffectReveal, Block: BlockInputLine},
		{Type: EffectFocus},
	}, rec.All())

	assert.Equal(t, PhaseInteractive, s.Phase())
	assert.Equal(t, 1, booted)
	assert.Zero(t, clock.Pending())

	state := s.Snapshot()
	for _, b := range []Block{BlockInitialCommand, BlockErrorOutput, BlockSuggestedActions, BlockInputLine} {
		assert.True(t, state.Visible[b], "block %s should be visible", b)
	}
}

func TestBootSchedulesOneStepAtATime(t *testing.T) {
	clock := &manualClock{}
	s := NewSession(nil, Prompt{}, WithScheduler(clock))

	s.Start(context.Background())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, clock.Pending())
}

func TestBootCancelledAbandonsRemainingSteps(t *testing.T) {
	rec := &recorder{}
	clock := &manualClock{}
	s := NewSession(rec, Prompt{}, WithScheduler(clock))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	clock.Advance(500 * time.Millisecond)
	require.Len(t, rec.All(), 1)

	cancel()
	clock.Advance(5 * time.Second)

	assert.Len(t, rec.All(), 1, "no further reveals after cancellation")
	assert.Equal(t, PhaseBooting, s.Phase())

	assert.Eventually(t, func() bool { return clock.Pending() == 0 }, time.Second, 5*time.Millisecond,
		"pending timer is stopped")
}

func TestBootWithCancelledContextDoesNothing(t *testing.T) {
	rec := &recorder{}
	clock := &manualClock{}
	s := NewSession(rec, Prompt{}, WithScheduler(clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
	clock.Advance(time.Second)

	assert.Empty(t, rec.All())
	assert.Zero(t, clock.Pending())
	assert.Equal(t, PhaseBooting, s.Phase())
}

func TestStartTwiceIsNoop(t *testing.T) {
	rec := &recorder{}
	clock := &manualClock{}
	s := NewSession(rec, Prompt{}, WithScheduler(clock))

	s.Start(context.Background())
	s.Start(context.Background())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Second)
	assert.Len(t, rec.OfType(EffectFocus), 1)
	assert.Len(t, rec.OfType(EffectReveal), 4)
}

func TestBootWithRealScheduler(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec, Prompt{})

	s.Start(context.Background())

	assert.Eventually(t, func() bool { return s.Phase() == PhaseInteractive }, 3*time.Second, 10*time.Millisecond)
	assert.Len(t, rec.OfType(EffectReveal), 4)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "booting", PhaseBooting.String())
	assert.Equal(t, "interactive", PhaseInteractive.String())
	assert.Equal(t, "unknown", Phase(7).String())
}
