package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/db"
	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/notify"
)

const previewRecipient = "preview@example.com"

func loadEnvFiles(paths []string) error {
	if err := config.LoadEnv(paths...); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

func loadConfig() (dispatch.Config, error) {
	var cfg dispatch.Config
	if err := config.Load(&cfg); err != nil {
		return cfg, cli.Exit(err.Error(), 2)
	}
	return cfg, nil
}

// cliLogger writes human-readable logs to stderr so stdout stays clean for
// command output.
func cliLogger(cfg dispatch.Config) *slog.Logger {
	opts := append(logger.FromConfig(cfg.Log),
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(os.Stderr),
	)
	return logger.New(opts...)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, the dispatch queue and the job workers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides HTTP_ADDR"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := dispatch.New(
				dispatch.WithConfig(cfg),
				dispatch.WithContext(c.Context),
				dispatch.WithAddress(c.String("addr")),
			)
			if err != nil {
				return err
			}
			return app.Run(c.Context)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply history and job schema migrations",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled() {
				return cli.Exit("DATABASE_CONN_URL is not set", 2)
			}
			log := cliLogger(cfg)

			pool, err := db.Connect(c.Context, cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(c.Context, pool, cfg.DB.MigrationsTable, log); err != nil {
				return err
			}
			return job.Migrate(c.Context, pool, log)
		},
	}
}

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "notification kind (run the kinds command for the list)", Required: true},
		&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Value: "{}", Usage: "payload as JSON, or @file to read it from a file"},
		&cli.StringFlag{Name: "subject", Usage: "override the template subject"},
		&cli.StringFlag{Name: "priority", Value: string(notify.PriorityNormal), Usage: "high, normal or low"},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "render one notification and send it immediately",
		Flags: append(requestFlags(),
			&cli.StringSliceFlag{Name: "to", Aliases: []string{"t"}, Usage: "recipient `EMAIL` (repeatable)", Required: true},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			req, err := requestFromFlags(c, c.StringSlice("to"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if err := req.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			req = req.Normalize()

			sender, err := dispatch.NewSender(cfg)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}
			log := cliLogger(cfg)
			email, err := resolver.Resolve(req)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			res := notify.NewTransport(sender,
				notify.WithLogger(log),
				notify.WithSendTimeout(cfg.SendTimeout),
			).Deliver(c.Context, req, email)
			if !res.OK() {
				return cli.Exit(fmt.Sprintf("send failed (%s): %v", res.ErrorKind, res.Err), 1)
			}
			fmt.Fprintln(c.App.Writer, res.MessageID)
			return nil
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "render a notification and print it without sending",
		Flags: append(requestFlags(),
			&cli.BoolFlag{Name: "text", Usage: "print the plain-text body instead of HTML"},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			req, err := requestFromFlags(c, []string{previewRecipient})
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}
			email, err := resolver.Resolve(req)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return writePreview(c.App.Writer, email.Subject, email.HTML, email.Text, c.Bool("text"))
		},
	}
}

func kindsCommand() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "list notification kinds",
		Action: func(c *cli.Context) error {
			for _, k := range notify.Kinds() {
				fmt.Fprintln(c.App.Writer, k)
			}
			return nil
		},
	}
}

func newResolver(cfg dispatch.Config) (*notify.TemplateResolver, error) {
	locale, err := dispatch.LocaleFormat(cfg)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	return notify.NewTemplateResolver(
		notify.WithLocale(locale),
		notify.WithBrand(cfg.Brand),
		notify.WithFallbackSubject(cfg.Mailer.FallbackSubject),
	), nil
}

func requestFromFlags(c *cli.Context, recipients []string) (notify.Request, error) {
	kind, err := notify.ParseKind(c.String("kind"))
	if err != nil {
		return notify.Request{}, err
	}
	priority, err := notify.ParsePriority(c.String("priority"))
	if err != nil {
		return notify.Request{}, err
	}
	raw, err := readData(c.String("data"))
	if err != nil {
		return notify.Request{}, err
	}
	payload, err := notify.DecodePayload(kind, raw)
	if err != nil {
		return notify.Request{}, err
	}
	return notify.NewRequest(payload, recipients...).
		WithPriority(priority).
		WithSubject(c.String("subject")), nil
}

// readData returns s as JSON, or the contents of the named file when s
// starts with "@".
func readData(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	if path, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		s = string(b)
	}
	if s == "" {
		s = "{}"
	}
	if !json.Valid([]byte(s)) {
		return nil, errors.New("payload is not valid JSON")
	}
	return json.RawMessage(s), nil
}

func writePreview(w io.Writer, subject, html, text string, plain bool) error {
	body := html
	if plain {
		body = text
	}
	_, err := fmt.Fprintf(w, "Subject: %s\n\n%s\n", subject, body)
	return err
}
