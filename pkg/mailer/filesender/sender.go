// Package filesender writes outgoing emails to disk instead of delivering them.
// Each message produces a .html body and a .json envelope, which makes it
// handy for local development and for previewing templates.
package filesender

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Config holds file sender configuration.
type Config struct {
	Dir string `env:"MAILER_FILE_DIR" envDefault:"./tmp/emails"`
}

// Sender implements mailer.Sender by writing files into a directory.
type Sender struct {
	dir string
	now func() time.Time
}

// New creates a file sender. The directory is created on first send.
func New(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("%w: file sender directory is required", mailer.ErrInvalidConfig)
	}
	return &Sender{dir: cfg.Dir, now: time.Now}, nil
}

// envelope is the JSON sidecar written next to the HTML body.
type envelope struct {
	MessageID   string            `json:"message_id"`
	Timestamp   string            `json:"timestamp"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	From        string            `json:"from,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	Priority    mailer.Priority   `json:"priority,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", mailer.NewDeliveryError(mailer.Classify(err), err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindConnectivity, fmt.Errorf("filesender: create dir: %w", err))
	}

	now := s.now()
	id := uuid.NewString()
	base := fmt.Sprintf("%s_%s_%s", now.Format("2006_01_02_150405"), id[:8], sanitizeFilename(email.Subject))

	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(email.HTML), 0o644); err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindConnectivity, fmt.Errorf("filesender: write html: %w", err))
	}

	env := envelope{
		MessageID: id,
		Timestamp: now.Format(time.RFC3339),
		To:        email.To,
		CC:        email.CC,
		BCC:       email.BCC,
		From:      email.From,
		ReplyTo:   email.ReplyTo,
		Subject:   email.Subject,
		Priority:  email.Priority,
		Headers:   email.AllHeaders(),
		Text:      email.Text,
	}
	for _, a := range email.Attachments {
		env.Attachments = append(env.Attachments, a.Filename)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindUnknown, fmt.Errorf("filesender: marshal: %w", err))
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), data, 0o644); err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindConnectivity, fmt.Errorf("filesender: write json: %w", err))
	}

	return id, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeFilename turns a subject into a short lowercase slug.
func sanitizeFilename(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "_")
	}
	if s == "" {
		return "email"
	}
	return s
}
