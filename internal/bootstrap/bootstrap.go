// Package bootstrap holds the startup plumbing shared by the api, worker and
// outbox-publisher binaries.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/instance"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

// Process is one running binary: its config, its logger and a context that
// ends on SIGINT or SIGTERM.
type Process struct {
	Name string
	Cfg  *config.Config
	Log  *logger.Logger
	Ctx  context.Context
	stop context.CancelFunc
	exit func(int)
}

// Start reads .env when present, loads config and builds the configured
// logger. It exits the process when config is invalid.
func Start(name string) *Process {
	p := &Process{Name: name, exit: os.Exit}
	p.Log = logger.New(logger.Options{ServiceName: name})

	if err := godotenv.Load(); err != nil {
		p.Log.Debug(context.Background(), "no .env file, using the process environment")
	}
	cfg, err := config.Load()
	p.Must("load config", err)
	cfg.Service.Kind = name
	p.Cfg = cfg

	p.Log = logger.New(logger.Options{
		ServiceName: name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	p.Ctx = p.Log.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"service":  name,
		"instance": instance.GetID(),
	})
	p.stop = stop
	return p
}

// Must logs err as a startup failure for step and exits.
func (p *Process) Must(step string, err error) {
	if err == nil {
		return
	}
	ctx := p.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	p.Log.Error(ctx, p.Name+": "+step+" failed", err)
	p.exit(1)
}

// Close closes c, logging rather than returning the error. Meant for defer.
func (p *Process) Close(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		p.Log.Error(context.Background(), "close "+what, err)
	}
}

// Stop releases the signal handler.
func (p *Process) Stop() {
	if p.stop != nil {
		p.stop()
	}
}

// Serve runs srv until it fails or the process context ends, then shuts it
// down within grace.
func (p *Process) Serve(srv *http.Server, grace time.Duration) error {
	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err, ok := <-failed:
		if ok {
			return err
		}
		return nil
	case <-p.Ctx.Done():
		p.Log.Info(p.Ctx, "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ServeMetrics exposes the default Prometheus registry on addr in the
// background. An empty addr disables it.
func (p *Process) ServeMetrics(addr string) {
	if addr == "" {
		return
	}
	srv := &http.Server{Addr: addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := p.Serve(srv, 5*time.Second); err != nil {
			p.Log.Error(p.Ctx, "metrics server stopped", err)
		}
	}()
}
