package mailer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"|", `\|`,
		"<", `\<`,
		">", `\>`,
	)

	// Backslash before ASCII punctuation, as CommonMark defines escapes.
	markdownEscapePattern = regexp.MustCompile("\\\\([!-/:-@\\[-`{-~])")
)

// EscapeMarkdown makes caller-supplied text render literally inside a
// markdown template: no emphasis, links, code spans or extra table cells.
// Non-string values are formatted with fmt.Sprint.
func EscapeMarkdown(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	return markdownEscaper.Replace(s)
}

// UnescapeMarkdown drops backslash escapes for the plain-text body.
func UnescapeMarkdown(s string) string {
	return markdownEscapePattern.ReplaceAllString(s, "$1")
}
