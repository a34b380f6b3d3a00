package shell

import (
	"strings"
)

// Theme colours of the scorchOS shell.
const (
	colorAccent = "text-[#2ab193]"
	colorMuted  = "text-[#64748b]"
	colorText   = "text-[#ccfbf1]"
	colorLink   = "text-[#60a5fa]"
	colorError  = "text-[#ff5f56]"
)

// PromptSymbol precedes every echoed command.
const PromptSymbol = "➜"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes user-supplied text safe to place inside HTML.
func Escape(s string) string {
	return escaper.Replace(s)
}

// EntryKind tells echo entries from result entries.
type EntryKind string

const (
	EntryEcho   EntryKind = "echo"
	EntryResult EntryKind = "result"
)

// Entry is one item of the output log. Echo entries keep the directory that
// was current when the command was submitted; result entries carry an
// already escaped HTML fragment.
type Entry struct {
	Kind    EntryKind `json:"kind"`
	Dir     string    `json:"dir,omitempty"`
	Command string    `json:"command,omitempty"`
	HTML    string    `json:"html,omitempty"`
}

// Renderer turns log entries into the markup appended to the output container.
type Renderer struct{}

// Echo renders a command echo: prompt, directory, "$" and the escaped command.
func (Renderer) Echo(dir, command string) string {
	var b strings.Builder
	b.WriteString(`<div class="flex flex-wrap gap-x-3 gap-y-1 mb-1">`)
	b.WriteString(span(colorAccent+" font-bold", PromptSymbol))
	b.WriteString(span(colorAccent+" font-bold", Escape(dir)))
	b.WriteString(span(colorMuted, "$"))
	b.WriteString(span(colorText, Escape(command)))
	b.WriteString(`</div>`)
	return b.String()
}

// Result wraps an escaped fragment in the result container.
func (Renderer) Result(fragment string) string {
	return `<div class="mb-4 ` + colorText + ` opacity-90 whitespace-pre-wrap">` + fragment + `</div>`
}

// Entry renders any log entry.
func (r Renderer) Entry(e Entry) string {
	if e.Kind == EntryEcho {
		return r.Echo(e.Dir, e.Command)
	}
	return r.Result(e.HTML)
}

// span wraps already escaped content.
func span(class, content string) string {
	return `<span class="` + class + `">` + content + `</span>`
}

func errorLine(content string) string {
	return span(colorError, content)
}

func mutedLine(content string) string {
	return span(colorMuted, content)
}

func fileToken(name string) string {
	return span(colorText, Escape(name))
}

func dirToken(name string) string {
	return span(colorLink+" font-bold", Escape(name)+"/")
}
