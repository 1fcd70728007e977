package resend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: resend requires api key and sender email", mailer.ErrInvalidConfig)
	}
	client := resend.NewClient(cfg.APIKey)
	if cfg.Timeout > 0 {
		client = resend.NewCustomClient(&http.Client{Timeout: cfg.Timeout}, cfg.APIKey)
	}
	return &Sender{client: client, config: cfg}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	req := s.buildRequest(email)

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", mailer.NewDeliveryError(classify(err), fmt.Errorf("resend: %w", err))
	}

	return resp.Id, nil
}

func (s *Sender) buildRequest(email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	replyTo := email.ReplyTo
	if replyTo == "" {
		replyTo = s.config.ReplyTo
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: replyTo,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: email.AllHeaders(),
	}
	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}
	if len(email.Tags) > 0 {
		req.Tags = convertTags(email.Tags)
	}
	return req
}

// classify inspects Resend API error text, which carries the HTTP status
// and message but no typed code.
func classify(err error) mailer.ErrorKind {
	if kind := mailer.Classify(err); kind != mailer.ErrorKindUnknown {
		return kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return mailer.ErrorKindAuth
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"),
		strings.Contains(msg, "500"), strings.Contains(msg, "502"), strings.Contains(msg, "503"):
		return mailer.ErrorKindConnectivity
	case strings.Contains(msg, "422"), strings.Contains(msg, "validation"), strings.Contains(msg, "invalid"):
		return mailer.ErrorKindRejected
	default:
		return mailer.ErrorKindUnknown
	}
}

func convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return result
}

func convertTags(tags mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{Name: name, Value: tagValue(value)})
	}
	return result
}

// tagValue converts any value to a string for Resend's tag API.
// Presence-only tags (struct{}{}) become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
