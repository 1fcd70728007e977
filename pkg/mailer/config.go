package mailer

// Config holds Composer defaults. FallbackSubject is used when neither the
// caller nor the template provides a subject; DefaultLayout wraps templates
// that do not name a layout of their own.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
}
