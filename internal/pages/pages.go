// Package pages renders the site's HTML: the terminal error page, whose
// shell is driven over a WebSocket, and the minimal site pages the shell
// navigates to.
package pages

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scorchos/site/internal/shell"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ShellPath is the WebSocket endpoint the error page connects to.
const ShellPath = "/shell/ws"

// Site describes the chrome shared by every page.
type Site struct {
	Name     string
	Hostname string
	Branch   string
	Commit   string
}

// DefaultSite returns the chrome of the scorchOS site.
func DefaultSite() Site {
	return Site{
		Name:     "Daniel Schmier",
		Hostname: "scorchOS",
		Branch:   "main",
		Commit:   "31ab968",
	}
}

// ErrorPageData is the view model of the terminal error page.
type ErrorPageData struct {
	Site        Site
	Code        int
	Title       string
	Message     string
	Description string
	Terminal    template.HTML
	LastLogin   string
	Prompt      shell.Prompt
	ShellURL    string
	Commands    []string
}

// SitePage names a page of the site.
type SitePage string

const (
	PageHome      SitePage = "home"
	PageAbout     SitePage = "about"
	PagePortfolio SitePage = "portfolio"
	PageCaseStudy SitePage = "case-study"
)

// SitePageData is the view model of a site page.
type SitePageData struct {
	Site         Site
	Page         SitePage
	Title        string
	Slug         string
	TerminalOpen bool
}

// Renderer executes the page templates.
type Renderer struct {
	tmpl    *template.Template
	catalog *Catalog
	site    Site
	now     func() time.Time
}

// NewRenderer parses the embedded templates.
func NewRenderer(catalog *Catalog, site Site) (*Renderer, error) {
	tmpl, err := template.New("pages").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, catalog: catalog, site: site, now: time.Now}, nil
}

// Catalog returns the error catalog.
func (r *Renderer) Catalog() *Catalog {
	return r.catalog
}

// PromptFor returns the labels of the echoed "last command" for code.
func PromptFor(code int) shell.Prompt {
	return shell.Prompt{
		Dir:     shell.HomeDir,
		Command: "cat resources/views/errors/" + strconv.Itoa(code) + ".blade.php",
	}
}

// ShellURL returns the WebSocket URL for a session showing code for path.
func ShellURL(code int, path string) string {
	q := url.Values{}
	q.Set("code", strconv.Itoa(code))
	q.Set("path", path)
	return ShellPath + "?" + q.Encode()
}

// ErrorData builds the view model for code.
func (r *Renderer) ErrorData(code int, info RequestInfo) (ErrorPageData, error) {
	page, err := r.catalog.Lookup(code)
	if err != nil {
		return ErrorPageData{}, err
	}

	now := r.now()
	if info.Time.IsZero() {
		info.Time = now
	}
	if info.TxID == "" {
		info.TxID = uuid.NewString()[:8]
	}

	fragment, err := r.catalog.Terminal(code, info)
	if err != nil {
		return ErrorPageData{}, err
	}

	return ErrorPageData{
		Site:        r.site,
		Code:        page.Code,
		Title:       page.Title,
		Message:     page.Message,
		Description: page.Description,
		Terminal:    fragment,
		LastLogin:   now.Format("Mon Jan 02 15:04:05"),
		Prompt:      PromptFor(code),
		ShellURL:    ShellURL(code, "/"+strings.TrimPrefix(info.Path, "/")),
		Commands:    shell.Commands(),
	}, nil
}

// ErrorPage renders the terminal error page for code.
func (r *Renderer) ErrorPage(w io.Writer, code int, info RequestInfo) error {
	data, err := r.ErrorData(code, info)
	if err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(w, "error.html.tmpl", data); err != nil {
		return fmt.Errorf("render error page %d: %w", code, err)
	}
	return nil
}

// SitePage renders one of the site pages.
func (r *Renderer) SitePage(w io.Writer, data SitePageData) error {
	data.Site = r.site
	if data.Title == "" {
		data.Title = pageTitle(data.Page, data.Slug)
	}
	if err := r.tmpl.ExecuteTemplate(w, "site.html.tmpl", data); err != nil {
		return fmt.Errorf("render page %s: %w", data.Page, err)
	}
	return nil
}

func pageTitle(p SitePage, slug string) string {
	switch p {
	case PageAbout:
		return "About"
	case PagePortfolio:
		return "Portfolio"
	case PageCaseStudy:
		return "Case Study: " + slug
	default:
		return "Design Engineer"
	}
}
