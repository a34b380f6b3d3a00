package pages

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
)

// ErrUnknownCode is returned for a status code without a catalog entry.
var ErrUnknownCode = errors.New("unknown error code")

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrorPage is one catalog entry.
type ErrorPage struct {
	Code        int    `yaml:"code"`
	Title       string `yaml:"title"`
	Message     string `yaml:"message"`
	Description string `yaml:"description"`
	Terminal    string `yaml:"terminal"`

	tmpl *template.Template
}

// RequestInfo carries the request details interpolated into the terminal
// fragment of an error page.
type RequestInfo struct {
	// Path is the request path without its leading slash.
	Path      string
	IP        string
	SessionID string
	TxID      string
	Time      time.Time
}

// Catalog holds the error pages by status code.
type Catalog struct {
	pages  map[int]*ErrorPage
	policy *bluemonday.Policy
}

// NewPolicy returns the sanitizer for terminal fragments: user generated
// content rules plus class attributes for the colour spans.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}

// LoadCatalog parses a YAML list of error pages.
func LoadCatalog(data []byte) (*Catalog, error) {
	var entries []*ErrorPage
	if err := yaml.UnmarshalWithOptions(data, &entries, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("parse error catalog: %w", err)
	}

	c := &Catalog{
		pages:  make(map[int]*ErrorPage, len(entries)),
		policy: NewPolicy(),
	}
	for _, e := range entries {
		if e.Code < 400 || e.Code > 599 {
			return nil, fmt.Errorf("parse error catalog: invalid status code %d", e.Code)
		}
		if _, dup := c.pages[e.Code]; dup {
			return nil, fmt.Errorf("parse error catalog: duplicate code %d", e.Code)
		}
		tmpl, err := template.New(fmt.Sprint(e.Code)).Option("missingkey=error").Parse(e.Terminal)
		if err != nil {
			return nil, fmt.Errorf("parse terminal fragment for %d: %w", e.Code, err)
		}
		e.tmpl = tmpl
		c.pages[e.Code] = e
	}
	return c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
})

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return loadDefault()
}

// Lookup returns the page for code.
func (c *Catalog) Lookup(code int) (*ErrorPage, error) {
	p, ok := c.pages[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return p, nil
}

// Codes returns the catalog codes in ascending order.
func (c *Catalog) Codes() []int {
	codes := make([]int, 0, len(c.pages))
	for code := range c.pages {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Terminal renders and sanitizes the terminal fragment of code.
func (c *Catalog) Terminal(code int, info RequestInfo) (template.HTML, error) {
	p, err := c.Lookup(code)
	if err != nil {
		return "", err
	}

	info.Path = strings.TrimPrefix(info.Path, "/")
	if info.Time.IsZero() {
		info.Time = time.Now()
	}

	var b strings.Builder
	if err := p.tmpl.Execute(&b, info); err != nil {
		return "", fmt.Errorf("render terminal fragment for %d: %w", code, err)
	}
	return template.HTML(c.policy.Sanitize(b.String())), nil
}
