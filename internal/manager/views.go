package manager

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scorchos/site/internal/shared/id"
)

// ErrUnknownAction is returned for a view action other than open, close or toggle.
var ErrUnknownAction = errors.New("unknown view action")

// ViewState is what one visitor sees across page loads.
type ViewState struct {
	TerminalOpen bool `json:"terminal_open"`
}

type viewEntry struct {
	state   ViewState
	touched time.Time
}

// ViewStore holds view state per visitor.
type ViewStore struct {
	mu     sync.Mutex
	states map[id.ViewID]*viewEntry
	now    func() time.Time
}

// NewViewStore creates an empty store.
func NewViewStore() *ViewStore {
	return &ViewStore{
		states: make(map[id.ViewID]*viewEntry),
		now:    time.Now,
	}
}

// Get returns the state of a visitor; unknown visitors get the zero state.
func (v *ViewStore) Get(viewID id.ViewID) ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.states[viewID]; ok {
		return e.state
	}
	return ViewState{}
}

// Open shows the terminal panel.
func (v *ViewStore) Open(viewID id.ViewID) ViewState {
	return v.update(viewID, func(s *ViewState) { s.TerminalOpen = true })
}

// Close hides the terminal panel.
func (v *ViewStore) Close(viewID id.ViewID) ViewState {
	return v.update(viewID, func(s *ViewState) { s.TerminalOpen = false })
}

// Toggle flips the terminal panel.
func (v *ViewStore) Toggle(viewID id.ViewID) ViewState {
	return v.update(viewID, func(s *ViewState) { s.TerminalOpen = !s.TerminalOpen })
}

// Apply runs the named action.
func (v *ViewStore) Apply(viewID id.ViewID, action string) (ViewState, error) {
	switch action {
	case "open":
		return v.Open(viewID), nil
	case "close":
		return v.Close(viewID), nil
	case "toggle":
		return v.Toggle(viewID), nil
	default:
		return ViewState{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func (v *ViewStore) update(viewID id.ViewID, fn func(*ViewState)) ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	e, ok := v.states[viewID]
	if !ok {
		e = &viewEntry{}
		v.states[viewID] = e
	}
	fn(&e.state)
	e.touched = v.now()
	return e.state
}

// Prune drops visitors not seen since cutoff.
func (v *ViewStore) Prune(cutoff time.Time) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for viewID, e := range v.states {
		if e.touched.Before(cutoff) {
			delete(v.states, viewID)
			n++
		}
	}
	return n
}

// Len returns the number of tracked visitors.
func (v *ViewStore) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.states)
}
