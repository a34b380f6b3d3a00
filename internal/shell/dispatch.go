package shell

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type command struct {
	name    string
	summary string
	run     func(s *Session, args []string)
}

// commands is listed in help order. It is filled in init because cmdHelp
// reads it.
var (
	commands     []command
	commandIndex map[string]*command
)

func init() {
	commands = []command{
		{"cd", "Change directory", (*Session).cmdCd},
		{"ls", "List directory contents", (*Session).cmdLs},
		{"clear", "Clear the terminal screen", (*Session).cmdClear},
		{"pwd", "Print working directory", (*Session).cmdPwd},
		{"whoami", "Print current user", (*Session).cmdWhoami},
		{"cat", "Concatenate and print files", (*Session).cmdCat},
		{"sudo", "Execute a command as another user", (*Session).cmdSudo},
		{"echo", "Write arguments to the output", (*Session).cmdEcho},
		{"history", "Show command history", (*Session).cmdHistory},
		{"exit", "Leave the terminal", (*Session).cmdExit},
		{"help", "", (*Session).cmdHelp},
	}

	commandIndex = make(map[string]*command, len(commands))
	for i := range commands {
		commandIndex[commands[i].name] = &commands[i]
	}
}

// Commands returns the names of all recognised commands in help order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}
	return names
}

// execute parses and runs one trimmed, non-empty line. The echo is tagged
// with the directory current at submission time. Must be called with s.mu held.
func (s *Session) execute(line string) {
	dir := s.dir
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	s.appendEcho(dir, line)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("command panicked", zap.String("command", name), zap.Any("panic", r))
			s.appendResult(errorLine("zsh: internal error while running " + Escape(name)))
		}
		s.emit(Effect{Type: EffectScroll})
	}()

	cmd, ok := commandIndex[name]
	if s.hooks.CommandExecuted != nil {
		s.hooks.CommandExecuted(name, ok)
	}
	if !ok {
		s.logger.Debug("command not found", zap.String("command", name))
		s.appendResult(errorLine("zsh: command not found: " + Escape(name)))
		return
	}

	s.logger.Debug("command", zap.String("command", name), zap.Int("args", len(args)))
	cmd.run(s, args)
}

func (s *Session) cmdHelp([]string) {
	var b strings.Builder
	b.WriteString(span(colorAccent, "Available commands:"))
	for _, c := range commands {
		if c.summary == "" {
			continue
		}
		b.WriteString("\n  ")
		b.WriteString(span(colorLink, c.name))
		b.WriteString(strings.Repeat(" ", max(1, 9-len(c.name))))
		b.WriteString(c.summary)
	}
	s.appendResult(b.String())
}

func (s *Session) cmdClear([]string) {
	s.clearOutput()
	s.setVisible(BlockInitialCommand, false)
	s.setVisible(BlockErrorOutput, false)
	s.setVisible(BlockSuggestedActions, false)
}

func (s *Session) cmdLs([]string) {
	children := s.fs.Children(s.dir)
	tokens := make([]string, 0, len(children))
	for _, name := range children {
		if IsFileName(name) {
			tokens = append(tokens, fileToken(name))
		} else {
			tokens = append(tokens, dirToken(name))
		}
	}
	s.appendResult(strings.Join(tokens, "  "))
}

func (s *Session) cmdPwd([]string) {
	s.appendResult(Escape(s.dir))
}

func (s *Session) cmdWhoami([]string) {
	s.appendResult("user")
}

func (s *Session) cmdSudo(args []string) {
	if len(args) > 0 && args[0] == "retry" {
		s.reload()
		return
	}
	s.appendResult(errorLine("Password required for sudo. Access denied."))
}

func (s *Session) cmdExit([]string) {
	s.navigate("/")
}

func (s *Session) cmdEcho(args []string) {
	s.appendResult(Escape(strings.Join(args, " ")))
}

func (s *Session) cmdHistory([]string) {
	entries := s.history.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%5d  %s", i+1, Escape(e))
	}
	s.appendResult(strings.Join(lines, "\n"))
}

func (s *Session) cmdCat(args []string) {
	if len(args) == 0 {
		s.appendResult(mutedLine("usage: cat file ..."))
		return
	}

	lines := make([]string, 0, len(args))
	for _, arg := range args {
		name := Escape(arg)
		switch {
		case s.fs.Contains(s.dir, arg) && IsFileName(arg):
			lines = append(lines, mutedLine("cat: "+name+": permission denied (simulated)"))
		case s.fs.Contains(s.dir, arg):
			lines = append(lines, errorLine("cat: "+name+": Is a directory"))
		default:
			lines = append(lines, errorLine("cat: "+name+": No such file or directory"))
		}
	}
	s.appendResult(strings.Join(lines, "\n"))
}

// absoluteRoutes maps absolute cd targets to site pages.
var absoluteRoutes = map[string]string{
	"/home":      "/",
	"/about":     "/about",
	"/portfolio": "/portfolio",
}

// cmdCd evaluates the cd rules in priority order; the first match wins.
// Relative targets are never entered: a listed child is reported as
// permission denied, anything else as missing.
func (s *Session) cmdCd(args []string) {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	switch {
	case path == "" || path == RootDir:
		s.dir = RootDir
		s.navigate("/")

	case path == "..":
		if s.dir == RootDir {
			s.appendResult("Already at root level for this session.")
			return
		}
		s.dir = RootDir

	case strings.HasPrefix(path, "/"):
		if url, ok := absoluteRoutes[path]; ok {
			s.navigate(url)
			return
		}
		s.appendResult(errorLine("cd: no such file or directory: " + Escape(path)))

	default:
		if s.fs.Contains(s.dir, strings.Replace(path, "/", "", 1)) {
			s.appendResult(mutedLine("cd: " + Escape(path) + ": permission denied (simulated)"))
			return
		}
		s.appendResult(errorLine("cd: no such file or directory: " + Escape(path)))
	}
}
