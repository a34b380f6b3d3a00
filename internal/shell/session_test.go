package shell

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func TestNewSessionStartsInHomeDir(t *testing.T) {
	s := NewSession(nil, Prompt{Dir: "~/scorchOS", Command: "cat 404"})

	state := s.Snapshot()
	assert.Equal(t, HomeDir, state.Dir)
	assert.Equal(t, "booting", state.Phase)
	assert.Empty(t, state.History)
	assert.Empty(t, state.Output)
	assert.Equal(t, "cat 404", state.Prompt.Command)
	for b, visible := range state.Visible {
		assert.False(t, visible, "block %s starts hidden", b)
	}
}

func TestNewSessionFallsBackToRoot(t *testing.T) {
	s := NewSession(nil, Prompt{}, WithFilesystem(Filesystem{RootDir: {"a"}}))
	assert.Equal(t, RootDir, s.Dir())
}

func TestSubmitIgnoredWhileBooting(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec, Prompt{}, WithScheduler(&manualClock{}))
	s.Start(context.Background())

	s.Submit("pwd")
	s.Navigate(Up)
	s.Click(false)

	assert.Empty(t, rec.All())
	assert.Empty(t, s.Snapshot().History)
}

func TestSubmitRecordsHistoryAndEcho(t *testing.T) {
	s, rec := newInteractiveSession(t)

	lines := []string{"pwd", "  whoami  ", "ls", "nonsense"}
	for _, l := range lines {
		s.Submit(l)
	}

	state := s.Snapshot()
	assert.Equal(t, []string{"pwd", "whoami", "ls", "nonsense"}, state.History)
	assert.Equal(t, len(state.History), state.Cursor)
	assert.Len(t, rec.OfType(EffectAppendEcho), 4)

	echoes := 0
	for _, e := range state.Output {
		if e.Kind == EntryEcho {
			echoes++
		}
	}
	assert.Equal(t, 4, echoes)
	assert.Equal(t, "whoami", state.Output[2].Command)
}

func TestSubmitEmptyInput(t *testing.T) {
	s, rec := newInteractiveSession(t)

	s.Submit("")
	s.Submit("   \t ")

	assert.Equal(t, []EffectType{EffectSetInput, EffectSetInput}, rec.Types())
	state := s.Snapshot()
	assert.Empty(t, state.History)
	assert.Empty(t, state.Output)
}

func TestSubmitEffectOrder(t *testing.T) {
	s, rec := newInteractiveSession(t)

	s.Submit("pwd")

	assert.Equal(t, []EffectType{EffectAppendEcho, EffectAppendResult, EffectScroll, EffectSetInput}, rec.Types())
	last := rec.All()[3]
	assert.Equal(t, "", last.Value)
	assert.Equal(t, 0, last.Caret)
}

func TestHistoryNavigation(t *testing.T) {
	s, rec := newInteractiveSession(t)
	for _, l := range []string{"a", "b", "c"} {
		s.Submit(l)
	}
	rec.Reset()

	s.Navigate(Up)
	s.Navigate(Up)
	s.Navigate(Up)
	s.Navigate(Up)
	s.Navigate(Down)

	var got []string
	for _, e := range rec.OfType(EffectSetInput) {
		got = append(got, e.Value)
	}
	assert.Equal(t, []string{"c", "b", "a", "a", "b"}, got)

	last := rec.OfType(EffectSetInput)[4]
	assert.Equal(t, 1, last.Caret, "caret sits at the end of the recalled line")
}

func TestRecalledCaretCountsUTF16Units(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{line: "pwd", want: 3},
		{line: "echo héllo", want: 10},
		{line: "echo 🔥", want: 7},
		{line: "echo 🔥🔥", want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, rec := newInteractiveSession(t)
			s.Submit(tt.line)
			rec.Reset()

			s.Navigate(Up)

			set := rec.OfType(EffectSetInput)
			require.Len(t, set, 1)
			assert.Equal(t, tt.line, set[0].Value)
			assert.Equal(t, tt.want, set[0].Caret)
		})
	}
}

func TestHistoryDownPastEnd(t *testing.T) {
	s, rec := newInteractiveSession(t)
	s.Submit("pwd")
	rec.Reset()

	s.Navigate(Up)
	s.Navigate(Down)
	s.Navigate(Down)

	inputs := rec.OfType(EffectSetInput)
	require.Len(t, inputs, 3)
	assert.Equal(t, "pwd", inputs[0].Value)
	assert.Equal(t, "", inputs[1].Value)
	assert.Equal(t, "", inputs[2].Value)
	assert.Equal(t, 1, s.Snapshot().Cursor)
}

func TestHistoryNavigationWithoutEntries(t *testing.T) {
	s, rec := newInteractiveSession(t)

	s.Navigate(Up)
	s.Navigate(Down)

	assert.Empty(t, rec.All())
}

func TestClickFocusesInput(t *testing.T) {
	s, rec := newInteractiveSession(t)

	s.Click(true)
	assert.Empty(t, rec.All(), "selecting text keeps focus where it is")

	s.Click(false)
	assert.Equal(t, []EffectType{EffectFocus}, rec.Types())
}

func TestHooks(t *testing.T) {
	var (
		executed  []string
		unknown   []string
		navigated []string
	)
	s, _ := newInteractiveSession(t, WithHooks(Hooks{
		CommandExecuted: func(name string, known bool) {
			if known {
				executed = append(executed, name)
			} else {
				unknown = append(unknown, name)
			}
		},
		Navigated: func(target string) { navigated = append(navigated, target) },
	}))

	s.Submit("PWD")
	s.Submit("foo bar")
	s.Submit("cd /about")
	s.Submit("sudo retry")

	assert.Equal(t, []string{"pwd", "cd", "sudo"}, executed)
	assert.Equal(t, []string{"foo"}, unknown)
	assert.Equal(t, []string{"/about", "reload"}, navigated)
}

func TestPanicInCommandIsContained(t *testing.T) {
	s, rec := newInteractiveSession(t, WithHooks(Hooks{
		CommandExecuted: func(string, bool) { panic("boom") },
	}))

	s.Submit("pwd")

	assert.Equal(t, []EffectType{EffectAppendEcho, EffectAppendResult, EffectScroll, EffectSetInput}, rec.Types())
	assert.Contains(t, lastResult(t, s), "internal error while running pwd")

	// the session keeps working
	assert.NotPanics(t, func() { s.Navigate(Up) })
	assert.Equal(t, "pwd", s.Snapshot().Input)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"ArrowUp", Up, true},
		{"down", Down, true},
		{"ARROWDOWN", Down, true},
		{"left", Up, false},
		{"", Up, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDirection(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSurfaceFunc(t *testing.T) {
	var got []Effect
	s, _ := newInteractiveSession(t)
	s.surface = SurfaceFunc(func(e Effect) { got = append(got, e) })

	s.Click(false)
	assert.Equal(t, []Effect{{Type: EffectFocus}}, got)
}
