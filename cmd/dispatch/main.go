// Command dispatch runs the notification service and offers one-off
// send and preview helpers for operators and template authors.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newApp().RunContext(ctx, os.Args)
	logger.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "dispatch",
		Usage:   "print shop notification service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "load variables from `FILE` before reading configuration (repeatable)",
			},
		},
		// main maps errors to exit codes; keep cli from exiting on its own.
		ExitErrHandler: func(*cli.Context, error) {},
		Before: func(c *cli.Context) error {
			return loadEnvFiles(c.StringSlice("env-file"))
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			sendCommand(),
			previewCommand(),
			kindsCommand(),
		},
	}
}
