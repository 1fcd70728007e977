// Package sanitizer cleans HTML that reaches outgoing messages.
package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6]|blockquote|pre|table)>`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	inlineSpace   = regexp.MustCompile(`[ \t]+`)
)

func initPolicies() {
	initOnce.Do(func() { strictPolicy = bluemonday.StrictPolicy() })
}

// StripHTML removes every tag and returns unescaped text on a single line,
// suitable for subjects and headers.
func StripHTML(s string) string {
	initPolicies()
	text := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// HTMLToText converts an HTML body into a plain-text alternative.
// Block boundaries become line breaks; all markup is removed.
func HTMLToText(s string) string {
	initPolicies()
	s = blockBoundary.ReplaceAllStringFunc(s, func(tag string) string { return tag + "\n" })
	text := html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
