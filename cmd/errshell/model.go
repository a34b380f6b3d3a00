package main

import (
	"fmt"
	"html"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/scorchos/site/internal/shell"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	chromeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	strict = bluemonday.StrictPolicy()
	breaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n")
)

// plainText strips a rendered fragment down to terminal text.
func plainText(fragment string) string {
	return html.UnescapeString(strict.Sanitize(breaks.Replace(fragment)))
}

// defaultSuggestions mirrors the suggested actions on the error page.
var defaultSuggestions = []string{"cd /home", "sudo retry --force"}

// page is the static part of the error page.
type page struct {
	Hostname    string
	Title       string
	Code        int
	Terminal    string
	Suggestions []string
}

type model struct {
	session *shell.Session
	queue   *queue
	page    page

	visible map[shell.Block]bool
	output  []string
	input   string

	// navigated is the URL of the navigate effect that ended the program.
	navigated string
	reloads   int
}

func newModel(session *shell.Session, q *queue, p page) model {
	return model{
		session: session,
		queue:   q,
		page:    p,
		visible: make(map[shell.Block]bool),
	}
}

func (m model) Init() tea.Cmd {
	return m.queue.wait()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case effectsMsg:
		for _, e := range msg {
			m = m.apply(e)
		}
		if m.navigated != "" {
			return m, tea.Quit
		}
		return m, m.queue.wait()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.session.Submit(m.input)
		case tea.KeyUp:
			m.session.Navigate(shell.Up)
		case tea.KeyDown:
			m.session.Navigate(shell.Down)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

// apply renders one effect into the model.
func (m model) apply(e shell.Effect) model {
	switch e.Type {
	case shell.EffectAppendEcho, shell.EffectAppendResult:
		m.output = append(m.output, plainText(e.HTML))
	case shell.EffectClearOutput:
		m.output = nil
	case shell.EffectReveal:
		m.visible[e.Block] = true
	case shell.EffectHide:
		m.visible[e.Block] = false
	case shell.EffectSetInput:
		m.input = e.Value
	case shell.EffectNavigate:
		m.navigated = e.URL
	case shell.EffectReload:
		m.reloads++
	}
	return m
}

func (m model) View() string {
	var b strings.Builder
	prompt := m.session.Prompt()

	fmt.Fprintf(&b, "%s\n\n", chromeStyle.Render(fmt.Sprintf("user — user@%s — -zsh — 80x24", m.page.Hostname)))

	if m.visible[shell.BlockInitialCommand] {
		fmt.Fprintf(&b, "%s %s\n", promptStyle.Render(prompt.Dir+" $"), commandStyle.Render(prompt.Command))
	}
	if m.visible[shell.BlockErrorOutput] {
		fmt.Fprintf(&b, "%s\n%s\n", titleStyle.Render(fmt.Sprintf("%d %s", m.page.Code, m.page.Title)), m.page.Terminal)
	}
	if m.visible[shell.BlockSuggestedActions] {
		b.WriteString(chromeStyle.Render("Suggested actions:") + "\n")
		for _, s := range m.page.Suggestions {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}

	for _, line := range m.output {
		b.WriteString(line + "\n")
	}

	if m.visible[shell.BlockInputLine] {
		fmt.Fprintf(&b, "%s %s█\n", promptStyle.Render(m.session.Dir()+" $"), m.input)
	}
	if m.reloads > 0 {
		b.WriteString(statusStyle.Render(fmt.Sprintf("[reload requested ×%d]", m.reloads)) + "\n")
	}
	return b.String()
}
