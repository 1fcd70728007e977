package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/job"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Run starts the queue, the job manager and the HTTP server, then blocks
// until ctx is cancelled, SIGINT or SIGTERM arrives, or the server fails.
//
// Shutdown order: HTTP server, queue drain, job manager, shutdown hooks,
// connections. Requests still pending when the drain budget runs out are
// dropped and reported as such.
func (a *App) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = a.baseCtx
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:              a.addr,
		Handler:           a.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	// Components outlive the signal context; shutdown stops them explicitly.
	runCtx := context.WithoutCancel(ctx)
	if err := a.queue.Start(runCtx); err != nil {
		return errors.Join(err, a.shutdown(nil))
	}
	if a.jobs != nil {
		if err := a.jobs.Start(runCtx); err != nil {
			return errors.Join(err, a.shutdown(nil))
		}
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(err, a.shutdown(nil))
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, a.shutdown(nil))
		}
	case <-ctx.Done():
	}

	return a.shutdown(server)
}

func (a *App) shutdown(server *http.Server) error {
	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	a.logger.Info("shutting down")
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	// Half the budget goes to draining so Stop and the hooks still get time.
	drainCtx, drainCancel := context.WithTimeout(ctx, timeout/2)
	if err := a.queue.WaitIdle(drainCtx); err != nil {
		a.logger.Warn("queue drain incomplete",
			slog.Int("pending", a.queue.Len()),
			logger.Error(err),
		)
	}
	drainCancel()
	if err := a.queue.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil && !errors.Is(err, job.ErrNotStarted) {
			errs = append(errs, err)
		}
	}

	for _, hook := range a.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			a.logger.Error("shutdown hook failed", logger.Error(err))
		}
	}

	if err := a.close(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Error("shutdown completed with errors", logger.Errors(errs...))
		return errors.Join(errs...)
	}

	a.logger.Info("shutdown completed", logger.Duration(time.Since(start)))
	return nil
}
