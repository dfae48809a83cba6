package web

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var helpRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// No html.WithUnsafe(): raw HTML in docs stays escaped.
		html.WithHardWraps(),
	),
)

// helpIDs namespaces heading ids under the topic's section so every topic can
// share one page: "## Keys" in gestures becomes #help-gestures-keys.
type helpIDs struct {
	prefix string
	seen   map[string]int
}

func newHelpIDs(topic string) *helpIDs {
	return &helpIDs{prefix: "help-" + slug(topic) + "-", seen: map[string]int{}}
}

func (h *helpIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	s := slug(string(value))
	if s == "" {
		s = "section"
	}
	id := h.prefix + s
	n := h.seen[id]
	h.seen[id] = n + 1
	if n > 0 {
		id = fmt.Sprintf("%s-%d", id, n)
	}
	return []byte(id)
}

func (h *helpIDs) Put(value []byte) {
	h.seen[string(value)]++
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// renderHelpHTML renders one docs topic for the /help page.
func renderHelpHTML(topic, src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	ctx := parser.NewContext(parser.WithIDs(newHelpIDs(topic)))
	var b bytes.Buffer
	if err := helpRenderer.Convert([]byte(src), &b, parser.WithContext(ctx)); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(b.String())
}
