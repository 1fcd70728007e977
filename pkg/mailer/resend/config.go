package resend

import "time"

// Config selects the Resend account and the default From and Reply-To
// used for notifications that do not set their own.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
	ReplyTo     string `env:"RESEND_REPLY_TO"`

	// Timeout bounds each API call, independent of the caller's context.
	Timeout time.Duration `env:"RESEND_TIMEOUT" envDefault:"15s"`
}
