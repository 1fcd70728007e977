// Package smtp delivers mailer.Email messages through an SMTP relay.
package smtp

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Sender implements mailer.Sender over SMTP.
// A fresh connection is dialed per message.
type Sender struct {
	config Config
}

// New validates cfg and returns a Sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", mailer.ErrInvalidConfig)
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("%w: smtp sender address is required", mailer.ErrInvalidConfig)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Sender{config: cfg}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	msg, err := s.buildMessage(email)
	if err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindRejected, err)
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return "", mailer.NewDeliveryError(mailer.ErrorKindConnectivity, fmt.Errorf("smtp: client: %w", err))
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", mailer.NewDeliveryError(classify(err), fmt.Errorf("smtp: %w", err))
	}

	return msg.GetMessageID(), nil
}

func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.config.Port)}
	if s.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.config.Timeout))
	}
	if s.config.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}
	return opts
}

func (s *Sender) buildMessage(email *mailer.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if email.From != "" {
		if err := msg.From(email.From); err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
	} else if err := msg.FromFormat(s.config.FromName, s.config.FromEmail); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}

	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("bcc: %w", err)
		}
	}

	replyTo := email.ReplyTo
	if replyTo == "" {
		replyTo = s.config.ReplyTo
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}

	msg.Subject(email.Subject)
	msg.SetMessageID()
	msg.SetImportance(importance(email.Priority))
	for k, v := range email.Headers {
		msg.SetGenHeader(mail.Header(k), v)
	}
	if len(email.Tags) > 0 {
		msg.SetGenHeader(mail.Header("X-Tags"), tagList(email.Tags)...)
	}

	if email.Text != "" {
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	} else {
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	}

	for _, a := range email.Attachments {
		opts := []mail.FileOption{mail.WithFileContentType(mail.ContentType(a.ContentType))}
		var err error
		if a.ContentID != "" {
			err = msg.EmbedReader(a.ContentID, bytes.NewReader(a.Content), opts...)
		} else {
			err = msg.AttachReader(a.Filename, bytes.NewReader(a.Content), opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
	}

	return msg, nil
}

func importance(p mailer.Priority) mail.Importance {
	switch p {
	case mailer.PriorityHigh:
		return mail.ImportanceHigh
	case mailer.PriorityLow:
		return mail.ImportanceLow
	default:
		return mail.ImportanceNormal
	}
}

func tagList(tags mailer.Tags) []string {
	out := make([]string, 0, len(tags))
	for name, v := range tags {
		switch val := v.(type) {
		case nil, struct{}:
			out = append(out, name)
		default:
			out = append(out, fmt.Sprintf("%s=%v", name, val))
		}
	}
	return out
}

// classify maps go-mail send failures onto mailer error kinds.
func classify(err error) mailer.ErrorKind {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		switch {
		case sendErr.Reason == mail.ErrSMTPMailFrom || sendErr.Reason == mail.ErrSMTPRcptTo:
			if sendErr.IsTemp() {
				return mailer.ErrorKindConnectivity
			}
			return mailer.ErrorKindRejected
		case sendErr.IsTemp():
			return mailer.ErrorKindConnectivity
		}
	}
	return mailer.Classify(err)
}
