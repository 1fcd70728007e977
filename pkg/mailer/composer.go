package mailer

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
)

// Composer turns templates and data into ready-to-send Emails.
// It never talks to a provider; pair it with a Sender.
type Composer struct {
	renderer *Renderer
	config   Config
}

// NewComposer creates a Composer backed by renderer.
func NewComposer(renderer *Renderer, cfg Config) *Composer {
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "base.html"
	}
	if cfg.FallbackSubject == "" {
		cfg.FallbackSubject = "Notification"
	}
	return &Composer{renderer: renderer, config: cfg}
}

// ComposeParams contains parameters for building a templated email.
type ComposeParams struct {
	To       []string // At least one recipient
	Template string   // Template filename (e.g., "stock_alert.md")
	Data     any      // Template data, also used for the subject template

	// Optional overrides
	Subject     string            // Override template subject
	Layout      string            // Override default layout
	From        string            // Override default sender
	ReplyTo     string            // Reply-to address
	Priority    Priority          // Advisory priority
	Headers     map[string]string // Extra headers
	Tags        Tags              // Provider tags
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Compose renders a template into an Email.
// Subject resolution: params.Subject > template frontmatter > config fallback.
// The chosen subject is itself executed as a template against params.Data.
func (c *Composer) Compose(params ComposeParams) (*Email, error) {
	to := compact(params.To)
	if len(to) == 0 {
		return nil, ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = c.config.DefaultLayout
	}

	result, err := c.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		subject = result.Subject
	}
	if subject == "" {
		subject = c.config.FallbackSubject
	}

	subject, err = c.renderer.ExecuteString("subject", subject, params.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	if strings.TrimSpace(subject) == "" {
		subject = c.config.FallbackSubject
	}

	priority := params.Priority
	if !priority.Valid() {
		priority = PriorityNormal
	}

	return &Email{
		To:          to,
		Subject:     strings.TrimSpace(subject),
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     params.ReplyTo,
		Priority:    priority,
		Headers:     params.Headers,
		Tags:        params.Tags,
		CC:          params.CC,
		BCC:         params.BCC,
		Attachments: params.Attachments,
	}, nil
}

// Finalize validates a pre-built email and fills in the plain-text body
// from HTML when it is missing.
func (c *Composer) Finalize(email *Email) (*Email, error) {
	if email == nil || len(compact(email.To)) == 0 {
		return nil, ErrNoRecipient
	}
	if strings.TrimSpace(email.Subject) == "" {
		return nil, ErrNoSubject
	}
	if strings.TrimSpace(email.HTML) == "" {
		return nil, ErrNoContent
	}

	out := *email
	out.To = compact(email.To)
	if out.Text == "" {
		out.Text = sanitizer.HTMLToText(out.HTML)
	}
	if !out.Priority.Valid() {
		out.Priority = PriorityNormal
	}
	return &out, nil
}

// compact trims addresses and drops empty ones.
func compact(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
