package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scorchos/site/internal/pages"
	"github.com/scorchos/site/internal/shell"
)

func main() {
	code := flag.Int("code", 404, "Error code to show")
	path := flag.String("path", "/missing", "Request path shown in the error output")
	flag.Parse()

	if err := run(*code, *path); err != nil {
		fmt.Fprintln(os.Stderr, "errshell:", err)
		os.Exit(1)
	}
}

func run(code int, path string) error {
	catalog, err := pages.DefaultCatalog()
	if err != nil {
		return err
	}
	entry, err := catalog.Lookup(code)
	if err != nil {
		return fmt.Errorf("%w (known: %v)", err, catalog.Codes())
	}
	fragment, err := catalog.Terminal(code, pages.RequestInfo{Path: path, IP: "127.0.0.1", SessionID: "local"})
	if err != nil {
		return err
	}

	q := newQueue()
	session := shell.NewSession(q, pages.PromptFor(code))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session.Start(ctx)

	m := newModel(session, q, page{
		Hostname:    pages.DefaultSite().Hostname,
		Title:       entry.Title,
		Code:        entry.Code,
		Terminal:    plainText(string(fragment)),
		Suggestions: defaultSuggestions,
	})

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("run terminal: %w", err)
	}
	if fm, ok := final.(model); ok && fm.navigated != "" {
		fmt.Println("navigate:", fm.navigated)
	}
	return nil
}
