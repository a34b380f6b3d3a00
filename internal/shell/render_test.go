package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<script>", "&lt;script&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"it's", "it&#039;s"},
		{"&lt;", "&amp;lt;"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestRendererEcho(t *testing.T) {
	var r Renderer

	html := r.Echo("~/scorchOS", "ls <dir>")
	doc := parseFragment(t, html)

	spans := doc.Find("span")
	assert.Equal(t, 4, spans.Length())
	assert.Equal(t, PromptSymbol, spans.Eq(0).Text())
	assert.Equal(t, "~/scorchOS", spans.Eq(1).Text())
	assert.Equal(t, "$", spans.Eq(2).Text())
	assert.Equal(t, "ls <dir>", spans.Eq(3).Text())
	assert.NotContains(t, html, "<dir>")
}

func TestRendererEntry(t *testing.T) {
	var r Renderer

	echo := r.Entry(Entry{Kind: EntryEcho, Dir: "~", Command: "pwd"})
	assert.Equal(t, r.Echo("~", "pwd"), echo)

	result := r.Entry(Entry{Kind: EntryResult, HTML: "<span>x</span>"})
	assert.True(t, strings.HasPrefix(result, "<div"))
	assert.Contains(t, result, "whitespace-pre-wrap")
	assert.Contains(t, result, "<span>x</span>")
}
