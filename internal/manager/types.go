package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scorchos/site/internal/drag"
	"github.com/scorchos/site/internal/scramble"
	"github.com/scorchos/site/internal/shared/id"
	"github.com/scorchos/site/internal/shell"
)

var (
	// ErrSessionNotFound is returned for an unknown or closed session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the session cap is reached.
	ErrTooManySessions = errors.New("too many sessions")
)

// CreateParams describe the page a session belongs to.
type CreateParams struct {
	Code       int
	Path       string
	RemoteAddr string
	Prompt     shell.Prompt
}

// Record is one live session and everything its page view owns: the
// shell, the pointer listener bus with the terminal window's draggable, the
// optional modal window and the scrambler for hover effects.
type Record struct {
	ID         id.SessionID
	Code       int
	Path       string
	RemoteAddr string
	StartedAt  time.Time

	Session   *shell.Session
	Bus       *drag.Bus
	Terminal  *drag.Draggable
	Scrambler *scramble.Scrambler

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	modal    *drag.ModalWindow
	lastSeen time.Time
	closed   bool
}

// Context is cancelled when the session closes.
func (r *Record) Context() context.Context {
	return r.ctx
}

// Start runs the boot sequence; closing the session abandons it.
func (r *Record) Start() {
	r.Session.Start(r.ctx)
}

// Modal returns the modal window, creating it for viewport on first use.
func (r *Record) Modal(viewport drag.Size) *drag.ModalWindow {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.modal == nil {
		r.modal = drag.NewModalWindow(r.Bus, drag.DefaultModalConfig(), viewport)
	}
	return r.modal
}

// ActiveModal returns the modal window, or nil when it is not open.
func (r *Record) ActiveModal() *drag.ModalWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modal
}

// CloseModal tears the modal down.
func (r *Record) CloseModal() {
	r.mu.Lock()
	m := r.modal
	r.modal = nil
	r.mu.Unlock()

	if m != nil {
		m.Teardown()
	}
}

// LastSeen returns the time of the last client activity.
func (r *Record) LastSeen() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSeen
}

// Closed reports whether the session has been closed.
func (r *Record) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *Record) touch(now time.Time) {
	r.mu.Lock()
	r.lastSeen = now
	r.mu.Unlock()
}

// close releases everything the session holds. It reports false when the
// session was already closed.
func (r *Record) close() bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.Terminal.Teardown()
	r.CloseModal()
	r.Scrambler.Close()
	return true
}

// SessionInfo is the public representation of a session. Path and
// RemoteAddr identify the visitor and stay out of the JSON.
type SessionInfo struct {
	ID         string    `json:"id"`
	Code       int       `json:"code"`
	Path       string    `json:"-"`
	RemoteAddr string    `json:"-"`
	Phase      string    `json:"phase"`
	Dir        string    `json:"dir"`
	Commands   int       `json:"commands"`
	StartedAt  time.Time `json:"started_at"`
	LastSeen   time.Time `json:"last_seen"`
	Active     bool      `json:"active"`
}

// Info snapshots the record.
func (r *Record) Info() SessionInfo {
	state := r.Session.Snapshot()
	return SessionInfo{
		ID:         r.ID.String(),
		Code:       r.Code,
		Path:       r.Path,
		RemoteAddr: r.RemoteAddr,
		Phase:      state.Phase,
		Dir:        state.Dir,
		Commands:   len(state.History),
		StartedAt:  r.StartedAt,
		LastSeen:   r.LastSeen(),
		Active:     !r.Closed(),
	}
}
