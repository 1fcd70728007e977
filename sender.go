package dispatch

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/i18n"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/mailer/filesender"
	"github.com/dmitrymomot/dispatch/pkg/mailer/postmark"
	"github.com/dmitrymomot/dispatch/pkg/mailer/resend"
	"github.com/dmitrymomot/dispatch/pkg/mailer/smtp"
)

// NewSender builds the mail provider selected by cfg.MailerDriver.
func NewSender(cfg Config) (mailer.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MailerDriver)) {
	case DriverSMTP:
		return smtp.New(cfg.SMTP)
	case DriverResend:
		return resend.New(cfg.Resend)
	case DriverPostmark:
		return postmark.New(cfg.Postmark)
	case DriverFile, "":
		return filesender.New(cfg.File)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.MailerDriver)
	}
}

// LocaleFormat resolves cfg.Locale to number, money and date formatting.
// An empty locale selects the shop's house format.
func LocaleFormat(cfg Config) (*i18n.LocaleFormat, error) {
	tag := strings.TrimSpace(cfg.Locale)
	if tag == "" {
		return i18n.FormatStore(), nil
	}
	lf, ok := i18n.FormatFor(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, cfg.Locale)
	}
	return lf, nil
}
