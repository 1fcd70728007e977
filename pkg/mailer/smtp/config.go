package smtp

import "time"

// Config holds SMTP relay settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host      string        `env:"SMTP_HOST"`
	Port      int           `env:"SMTP_PORT" envDefault:"587"`
	Secure    bool          `env:"SMTP_SECURE" envDefault:"false"` // implicit TLS (usually port 465)
	Username  string        `env:"SMTP_USERNAME"`
	Password  string        `env:"SMTP_PASSWORD"`
	FromEmail string        `env:"SMTP_FROM_EMAIL"`
	FromName  string        `env:"SMTP_FROM_NAME" envDefault:"Print Shop"`
	ReplyTo   string        `env:"SMTP_REPLY_TO"`
	Timeout   time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
}
