package shell

import (
	"context"
	"maps"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/scorchos/site/internal/logging"
	"go.uber.org/zap"
)

// Prompt holds the two labels the hosting page supplies for the echoed
// "last command" block, e.g. Dir "~/scorchOS" and Command
// "cat resources/views/errors/404.blade.php".
type Prompt struct {
	Dir     string `json:"dir"`
	Command string `json:"command"`
}

// Hooks observe session activity. Any hook may be nil.
type Hooks struct {
	// CommandExecuted reports the lower-cased command name and whether it is known.
	CommandExecuted func(name string, known bool)
	// Navigated reports the target of a navigate effect, or "reload".
	Navigated func(target string)
	// BootCompleted fires once the session becomes interactive.
	BootCompleted func()
}

// Session is one terminal instance: boot sequencer, input reader, command
// dispatcher, filesystem navigator, output log and history. Every entry
// point takes the session lock, so events are handled one at a time in
// arrival order.
type Session struct {
	mu sync.Mutex

	surface   Surface
	fs        Filesystem
	scheduler Scheduler
	logger    *logging.Logger
	hooks     Hooks
	renderer  Renderer
	prompt    Prompt

	dir     string
	history History
	output  []Entry
	phase   Phase
	visible map[Block]bool
	input   string

	bootStarted   bool
	bootCtx       context.Context
	stopBootWatch func() bool
	pending       Timer
}

// Option configures a Session.
type Option func(*Session)

// WithFilesystem replaces the embedded directory table.
func WithFilesystem(fs Filesystem) Option {
	return func(s *Session) { s.fs = fs }
}

// WithScheduler replaces the wall clock used by the startup sequence.
func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.scheduler = sched }
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithHooks installs activity observers.
func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// NewSession creates a booting session bound to surface.
func NewSession(surface Surface, prompt Prompt, opts ...Option) *Session {
	s := &Session{
		surface:   surface,
		scheduler: realScheduler{},
		logger:    logging.NewNop(),
		prompt:    prompt,
		phase:     PhaseBooting,
		visible: map[Block]bool{
			BlockInitialCommand:   false,
			BlockErrorOutput:      false,
			BlockSuggestedActions: false,
			BlockInputLine:        false,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.surface == nil {
		s.surface = nopSurface{}
	}
	if s.fs == nil {
		s.fs = DefaultFilesystem()
	}

	s.dir = HomeDir
	if !s.fs.IsDir(HomeDir) {
		s.dir = RootDir
	}
	return s
}

// Direction is a history recall direction.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection maps "up"/"down" (and the browser key names) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "up", "arrowup":
		return Up, true
	case "down", "arrowdown":
		return Down, true
	default:
		return Up, false
	}
}

// Submit handles the Enter key. A non-empty trimmed line is appended to the
// history and dispatched; the input field is cleared either way. Input is
// ignored while the session is still booting, since the input line is hidden.
func (s *Session) Submit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInteractive {
		s.logger.Debug("input ignored while booting")
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed != "" {
		s.history.Push(trimmed)
		s.execute(trimmed)
	}
	s.setInput("")
}

// Navigate recalls a history entry into the input field.
func (s *Session) Navigate(d Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInteractive {
		return
	}

	var (
		line string
		ok   bool
	)
	if d == Up {
		line, ok = s.history.Up()
	} else {
		line, ok = s.history.Down()
	}
	if ok {
		s.setInput(line)
	}
}

// Click handles a click in the terminal body: the input regains focus unless
// the user is selecting text.
func (s *Session) Click(hasSelection bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hasSelection || s.phase != PhaseInteractive {
		return
	}
	s.emit(Effect{Type: EffectFocus})
}

// State is a point-in-time copy of the session.
type State struct {
	Dir     string         `json:"dir"`
	Phase   string         `json:"phase"`
	History []string       `json:"history"`
	Cursor  int            `json:"cursor"`
	Output  []Entry        `json:"output"`
	Visible map[Block]bool `json:"visible"`
	Input   string         `json:"input"`
	Prompt  Prompt         `json:"prompt"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Dir:     s.dir,
		Phase:   s.phase.String(),
		History: s.history.Entries(),
		Cursor:  s.history.Cursor(),
		Output:  append([]Entry(nil), s.output...),
		Visible: maps.Clone(s.visible),
		Input:   s.input,
		Prompt:  s.prompt,
	}
}

// Dir returns the current directory.
func (s *Session) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Prompt returns the labels supplied by the hosting page.
func (s *Session) Prompt() Prompt {
	return s.prompt
}

// The helpers below must be called with s.mu held.

func (s *Session) emit(e Effect) {
	s.surface.Apply(e)
}

func (s *Session) setInput(value string) {
	s.input = value
	s.emit(Effect{Type: EffectSetInput, Value: value, Caret: caretEnd(value)})
}

func (s *Session) setVisible(b Block, visible bool) {
	s.visible[b] = visible
	t := EffectHide
	if visible {
		t = EffectReveal
	}
	s.emit(Effect{Type: t, Block: b})
}

func (s *Session) appendEcho(dir, command string) {
	s.output = append(s.output, Entry{Kind: EntryEcho, Dir: dir, Command: command})
	s.emit(Effect{Type: EffectAppendEcho, HTML: s.renderer.Echo(dir, command)})
}

func (s *Session) appendResult(fragment string) {
	s.output = append(s.output, Entry{Kind: EntryResult, HTML: fragment})
	s.emit(Effect{Type: EffectAppendResult, HTML: s.renderer.Result(fragment)})
}

func (s *Session) clearOutput() {
	s.output = nil
	s.emit(Effect{Type: EffectClearOutput})
}

func (s *Session) navigate(url string) {
	s.logger.Info("navigate", zap.String("url", url))
	s.emit(Effect{Type: EffectNavigate, URL: url})
	if s.hooks.Navigated != nil {
		s.hooks.Navigated(url)
	}
}

func (s *Session) reload() {
	s.logger.Info("reload")
	s.emit(Effect{Type: EffectReload})
	if s.hooks.Navigated != nil {
		s.hooks.Navigated("reload")
	}
}

// caretEnd is the end-of-line caret offset in UTF-16 code units, the unit
// the browser's selection API counts in.
func caretEnd(value string) int {
	return len(utf16.Encode([]rune(value)))
}
