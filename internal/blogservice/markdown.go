package blogservice

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// renderMarkdown converts post content to HTML after removing script blocks.
// Content that fails to convert is returned unchanged.
func renderMarkdown(input string) string {
	input = sanitizeMarkdown(input)
	if strings.TrimSpace(input) == "" {
		return ""
	}

	var b strings.Builder
	if err := markdown.Convert([]byte(input), &b); err != nil {
		return input
	}
	return b.String()
}
