package feature

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`http\S+|www\S+`)
	markdownPattern = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// CleanText lowercases, strips URLs and markdown links, and collapses
// whitespace to single spaces. Counting that depends on line breaks or raw
// punctuation happens before cleaning.
func CleanText(text string) string {
	t := strings.ToLower(text)
	t = urlPattern.ReplaceAllString(t, "")
	t = markdownPattern.ReplaceAllString(t, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(t, " "))
}
