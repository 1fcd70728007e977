// Package postmark delivers mailer.Email messages through Postmark's transactional API.
package postmark

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Postmark API error codes that carry a known meaning.
// https://postmarkapp.com/developer/api/overview#error-codes
const (
	codeInvalidToken      = 10
	codeSenderSignature   = 400
	codeInactiveRecipient = 406
	codeInvalidEmail      = 300
	codeAccountPending    = 412
	codeRateLimited       = 429
)

// Sender implements mailer.Sender using Postmark.
type Sender struct {
	client *postmark.Client
	config Config
}

// New creates a Postmark-backed sender.
// The server token is required; the account token is only needed for
// account-level API calls and may be empty.
func New(cfg Config) (*Sender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", mailer.ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: postmark sender email is required", mailer.ErrInvalidConfig)
	}
	return &Sender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	resp, err := s.client.SendEmail(ctx, s.buildEmail(email))
	if err != nil {
		return "", mailer.NewDeliveryError(mailer.Classify(err), fmt.Errorf("postmark: %w", err))
	}
	if resp.ErrorCode > 0 {
		return "", mailer.NewDeliveryError(
			classifyCode(int64(resp.ErrorCode)),
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return resp.MessageID, nil
}

func (s *Sender) buildEmail(email *mailer.Email) postmark.Email {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	pm := postmark.Email{
		From:       from,
		To:         strings.Join(email.To, ","),
		Cc:         strings.Join(email.CC, ","),
		Bcc:        strings.Join(email.BCC, ","),
		Subject:    email.Subject,
		HTMLBody:   email.HTML,
		TextBody:   email.Text,
		ReplyTo:    email.ReplyTo,
		Tag:        firstTag(email.Tags),
		TrackOpens: s.config.TrackOpens,
	}

	headers := email.AllHeaders()
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pm.Headers = append(pm.Headers, postmark.Header{Name: name, Value: headers[name]})
	}

	for _, a := range email.Attachments {
		pm.Attachments = append(pm.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
		})
	}

	return pm
}

// firstTag picks a deterministic tag since Postmark accepts only one.
func firstTag(tags mailer.Tags) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

func classifyCode(code int64) mailer.ErrorKind {
	switch code {
	case codeInvalidToken, codeAccountPending:
		return mailer.ErrorKindAuth
	case codeInvalidEmail, codeInactiveRecipient, codeSenderSignature:
		return mailer.ErrorKindRejected
	case codeRateLimited:
		return mailer.ErrorKindConnectivity
	default:
		return mailer.ErrorKindUnknown
	}
}
