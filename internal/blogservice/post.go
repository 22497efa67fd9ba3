package blogservice

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultCategory = "General"
	DefaultAuthor   = "Yu-Sheng Tzou"
	// AllCategories is the category filter value that disables filtering.
	AllCategories = "All"

	wordsPerMinute = 200
	excerptLength  = 150
)

var (
	nonSlugRX    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespaceRX = regexp.MustCompile(`\s+`)
)

// Slugify lowercases title, strips everything but letters, digits, underscores,
// hyphens and whitespace, and joins the remaining words with hyphens.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugRX.ReplaceAllString(s, "")
	s = whitespaceRX.ReplaceAllString(s, "-")
	return s
}

func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadTime estimates reading time at 200 words per minute, rounded up.
func ReadTime(content string) string {
	minutes := (WordCount(content) + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}

// Excerpt returns the first 150 runes of content, marked with an ellipsis when cut.
func Excerpt(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= excerptLength {
		return content
	}
	return string([]rune(content)[:excerptLength]) + "..."
}

// ParsePublished interprets the published flag sent by the admin form.
func ParsePublished(s string) bool {
	return s == "true"
}
