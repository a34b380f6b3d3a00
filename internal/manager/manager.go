package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scorchos/site/internal/drag"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/scramble"
	"github.com/scorchos/site/internal/shared/id"
	"github.com/scorchos/site/internal/shell"
	"go.uber.org/zap"
)

// Close reasons passed to Options.OnClose.
const (
	ReasonClient   = "client"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

// Options configure a Manager.
type Options struct {
	MaxSessions int
	IdleTimeout time.Duration
	Logger      *logging.Logger

	// SessionOptions are applied to every new shell session.
	SessionOptions []shell.Option
	// Hooks are installed on every new shell session.
	Hooks shell.Hooks
	// OnOpen and OnClose observe the session count. Either may be nil.
	OnOpen  func()
	OnClose func(reason string, lifetime time.Duration)

	now func() time.Time
}

// Manager manages terminal sessions
type Manager struct {
	sessions sync.Map // map[id.SessionID]*Record
	count    atomic.Int64

	opts   Options
	logger *logging.Logger
	views  *ViewStore
}

// New creates a session manager.
func New(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Manager{
		opts:   opts,
		logger: opts.Logger.Component("manager"),
		views:  NewViewStore(),
	}
}

// Views returns the visitor view state store.
func (m *Manager) Views() *ViewStore {
	return m.views
}

// Create registers a new session rendering to surface. The session is not
// started; call Record.Start once the surface is ready.
func (m *Manager) Create(params CreateParams, surface shell.Surface) (*Record, error) {
	if n := m.count.Add(1); m.opts.MaxSessions > 0 && n > int64(m.opts.MaxSessions) {
		m.count.Add(-1)
		m.logger.Warn("session limit reached", zap.Int("max", m.opts.MaxSessions))
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, m.opts.MaxSessions)
	}

	sessionID := id.NewSessionID()
	now := m.opts.now()
	logger := m.opts.Logger.Session(sessionID.String(), params.Code)

	opts := append([]shell.Option{
		shell.WithLogger(logger),
		shell.WithHooks(m.opts.Hooks),
	}, m.opts.SessionOptions...)

	ctx, cancel := context.WithCancel(context.Background())
	bus := drag.NewBus()
	rec := &Record{
		ID:         sessionID,
		Code:       params.Code,
		Path:       params.Path,
		RemoteAddr: params.RemoteAddr,
		StartedAt:  now,
		Session:    shell.NewSession(surface, params.Prompt, opts...),
		Bus:        bus,
		Scrambler:  scramble.New(),
		ctx:        ctx,
		cancel:     cancel,
		lastSeen:   now,
	}
	rec.Terminal = drag.New(bus, drag.WithBounds(drag.Unbounded))

	m.sessions.Store(sessionID, rec)
	if m.opts.OnOpen != nil {
		m.opts.OnOpen()
	}

	m.logger.Info("session created",
		zap.String("session_id", sessionID.String()),
		zap.Int("code", params.Code),
		zap.String("path", params.Path),
		zap.String("remote_addr", params.RemoteAddr))

	return rec, nil
}

// Get returns the live session with the given id.
func (m *Manager) Get(sessionID id.SessionID) (*Record, error) {
	value, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return value.(*Record), nil
}

// Touch records client activity on a session.
func (m *Manager) Touch(sessionID id.SessionID) error {
	rec, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	rec.touch(m.opts.now())
	return nil
}

// Close terminates a session
func (m *Manager) Close(sessionID id.SessionID) error {
	return m.closeWithReason(sessionID, ReasonClient)
}

func (m *Manager) closeWithReason(sessionID id.SessionID, reason string) error {
	value, ok := m.sessions.LoadAndDelete(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rec := value.(*Record)
	if !rec.close() {
		return nil
	}
	m.count.Add(-1)

	lifetime := m.opts.now().Sub(rec.StartedAt)
	if m.opts.OnClose != nil {
		m.opts.OnClose(reason, lifetime)
	}
	m.logger.Info("session closed",
		zap.String("session_id", sessionID.String()),
		zap.String("reason", reason),
		zap.Duration("lifetime", lifetime))
	return nil
}

// List returns all live sessions, oldest first.
func (m *Manager) List() []SessionInfo {
	var sessions []SessionInfo

	m.sessions.Range(func(_, value any) bool {
		sessions = append(sessions, value.(*Record).Info())
		return true
	})

	slices.SortFunc(sessions, func(a, b SessionInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return sessions
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return int(m.count.Load())
}

// Reap closes sessions idle for longer than the idle timeout and prunes
// stale view state. It returns the number of sessions closed.
func (m *Manager) Reap() int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.opts.now().Add(-m.opts.IdleTimeout)

	var idle []id.SessionID
	m.sessions.Range(func(key, value any) bool {
		if value.(*Record).LastSeen().Before(cutoff) {
			idle = append(idle, key.(id.SessionID))
		}
		return true
	})

	reaped := 0
	for _, sessionID := range idle {
		if err := m.closeWithReason(sessionID, ReasonIdle); err == nil {
			reaped++
		}
	}

	if pruned := m.views.Prune(cutoff); pruned > 0 {
		m.logger.Debug("view state pruned", zap.Int("count", pruned))
	}
	return reaped
}

// Run reaps idle sessions until ctx is cancelled, then closes every
// remaining session.
func (m *Manager) Run(ctx context.Context) {
	interval := time.Minute
	if half := m.opts.IdleTimeout / 2; half > 0 && half < interval {
		interval = half
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			if n := m.Reap(); n > 0 {
				m.logger.Info("idle sessions reaped", zap.Int("count", n))
			}
		}
	}
}

// CloseAll terminates every session.
func (m *Manager) CloseAll() {
	m.sessions.Range(func(key, _ any) bool {
		_ = m.closeWithReason(key.(id.SessionID), ReasonShutdown)
		return true
	})
}
