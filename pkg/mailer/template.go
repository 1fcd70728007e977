package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterDelimiter opens and closes the YAML block at the top of a template.
var frontmatterDelimiter = []byte("---")

// Template is a parsed template file: YAML frontmatter plus a markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// Subject returns the frontmatter "Subject" value, if set.
func (t *Template) Subject() string {
	return t.stringField("Subject")
}

// Preheader returns the frontmatter "Preheader" value, if set.
func (t *Template) Preheader() string {
	return t.stringField("Preheader")
}

func (t *Template) stringField(key string) string {
	if t == nil || t.Metadata == nil {
		return ""
	}
	v, _ := t.Metadata[key].(string)
	return strings.TrimSpace(v)
}

// ParseTemplate splits content into frontmatter metadata and markdown body.
// Content without a leading delimiter is treated as body only.
func ParseTemplate(content []byte) (*Template, error) {
	if !bytes.HasPrefix(content, frontmatterDelimiter) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(content[len(frontmatterDelimiter):], "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	head, body, found := bytes.Cut(rest, frontmatterDelimiter)
	if !found {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	body = trimLeadingNewline(body)

	metadata := map[string]any{}
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}

// trimLeadingNewline drops exactly one line ending (\n or \r\n).
func trimLeadingNewline(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}
