package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/scorchos/site/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewStoreActions(t *testing.T) {
	v := NewViewStore()
	visitor := id.NewViewID()

	assert.False(t, v.Get(visitor).TerminalOpen)
	assert.True(t, v.Open(visitor).TerminalOpen)
	assert.True(t, v.Open(visitor).TerminalOpen)
	assert.False(t, v.Toggle(visitor).TerminalOpen)
	assert.True(t, v.Toggle(visitor).TerminalOpen)
	assert.False(t, v.Close(visitor).TerminalOpen)
	assert.Equal(t, 1, v.Len())
}

func TestViewStoreIsPerVisitor(t *testing.T) {
	v := NewViewStore()
	a, b := id.NewViewID(), id.NewViewID()

	v.Open(a)

	assert.True(t, v.Get(a).TerminalOpen)
	assert.False(t, v.Get(b).TerminalOpen)
}

func TestViewStoreApply(t *testing.T) {
	v := NewViewStore()
	visitor := id.NewViewID()

	tests := []struct {
		action string
		want   bool
	}{
		{"open", true},
		{"toggle", false},
		{"toggle", true},
		{"close", false},
	}
	for _, tt := range tests {
		state, err := v.Apply(visitor, tt.action)
		require.NoError(t, err)
		assert.Equal(t, tt.want, state.TerminalOpen, tt.action)
	}

	_, err := v.Apply(visitor, "maximize")
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestViewStorePrune(t *testing.T) {
	v := NewViewStore()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	old := id.NewViewID()
	v.Open(old)
	now = now.Add(time.Hour)
	recent := id.NewViewID()
	v.Open(recent)

	assert.Equal(t, 1, v.Prune(now.Add(-30*time.Minute)))
	assert.False(t, v.Get(old).TerminalOpen)
	assert.True(t, v.Get(recent).TerminalOpen)
}
