package dispatch

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/dispatch/internal/api"
	"github.com/dmitrymomot/dispatch/pkg/db"
	"github.com/dmitrymomot/dispatch/pkg/events"
	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/mailer/filesender"
	"github.com/dmitrymomot/dispatch/pkg/mailer/postmark"
	"github.com/dmitrymomot/dispatch/pkg/mailer/resend"
	"github.com/dmitrymomot/dispatch/pkg/mailer/smtp"
	"github.com/dmitrymomot/dispatch/pkg/notify"
	"github.com/dmitrymomot/dispatch/pkg/redis"
)

// Mailer drivers accepted by MAILER_DRIVER.
const (
	DriverSMTP     = "smtp"
	DriverResend   = "resend"
	DriverPostmark = "postmark"
	DriverFile     = "file"
)

// History backends accepted by HISTORY_BACKEND.
const (
	HistoryMemory   = "memory"
	HistoryRedis    = "redis"
	HistoryPostgres = "postgres"
)

// Config is the full service configuration, loaded from the environment
// with config.Load.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	MailerDriver string `env:"MAILER_DRIVER" envDefault:"file"`

	Brand          string        `env:"NOTIFY_BRAND" envDefault:"Print Shop"`
	Locale         string        `env:"NOTIFY_LOCALE" envDefault:"store"`
	AdminEmails    []string      `env:"NOTIFY_ADMIN_EMAILS" envSeparator:","`
	Delay          time.Duration `env:"NOTIFY_DELAY" envDefault:"1s"`
	SendTimeout    time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"30s"`
	PriorityOrder  bool          `env:"NOTIFY_PRIORITY_ORDERING" envDefault:"false"`
	RetryEnabled   bool          `env:"NOTIFY_RETRY" envDefault:"false"`
	BulkWorkers    int           `env:"NOTIFY_BULK_CONCURRENCY" envDefault:"0"`
	AlertCooldown  time.Duration `env:"NOTIFY_ALERT_COOLDOWN" envDefault:"0s"`
	BacklogLimit   int           `env:"NOTIFY_BACKLOG_LIMIT" envDefault:"10000"`
	Durable        bool          `env:"NOTIFY_DURABLE" envDefault:"false"`
	DigestSchedule string        `env:"NOTIFY_DIGEST_SCHEDULE"`
	DashboardURL   string        `env:"NOTIFY_DASHBOARD_URL"`

	HistoryBackend  string `env:"HISTORY_BACKEND" envDefault:"memory"`
	HistoryCapacity int    `env:"HISTORY_CAPACITY" envDefault:"1000"`

	Retry    notify.RetryPolicy
	Log      logger.Config
	API      api.Config
	Mailer   mailer.Config
	SMTP     smtp.Config
	Resend   resend.Config
	Postmark postmark.Config
	File     filesender.Config
	DB       db.Config
	Redis    redis.Config
	Events   events.Config
	Jobs     job.Config
}

// DefaultConfig returns the configuration with every default applied and
// nothing read from the environment.
func DefaultConfig() Config {
	var cfg Config
	// Defaults are static tags; parsing an empty environment cannot fail.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}
