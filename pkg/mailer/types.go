package mailer

import "fmt"

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Providers convert them to their own format:
//   - Postmark: first tag name only
//   - Resend: name-value pairs (presence-only tags become name="true")
//   - SMTP: X-Tags header
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Priority is an advisory delivery priority passed to the provider as headers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Headers returns the conventional priority headers understood by most mail clients.
// Normal (and unknown) priority yields nil so that no headers are added.
func (p Priority) Headers() map[string]string {
	switch p {
	case PriorityHigh:
		return map[string]string{"X-Priority": "1 (Highest)", "Importance": "High"}
	case PriorityLow:
		return map[string]string{"X-Priority": "5 (Lowest)", "Importance": "Low"}
	default:
		return nil
	}
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string // Custom headers
	Tags        Tags              // Provider-specific tags/categories
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text alternative
	From        string            // Override default sender (if provider allows)
	ReplyTo     string            // Reply-to address
	Priority    Priority          // Advisory priority, mapped to provider headers
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients
	Attachments []Attachment      // File attachments
}

// AllHeaders merges priority headers with custom headers.
// Custom headers win on conflict.
func (e *Email) AllHeaders() map[string]string {
	prio := e.Priority.Headers()
	if len(prio) == 0 && len(e.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(prio)+len(e.Headers))
	for k, v := range prio {
		out[k] = v
	}
	for k, v := range e.Headers {
		out[k] = v
	}
	return out
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string `json:"filename"`             // Display name for the attachment
	ContentType string `json:"content_type"`         // MIME type (e.g., "application/pdf")
	ContentID   string `json:"content_id,omitempty"` // Optional Content-ID for inline attachments
	Content     []byte `json:"content"`              // Raw file content
}
