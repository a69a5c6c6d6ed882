package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"EconDash/internal/domain/models"
	"EconDash/pkg/config"
	xhttp "EconDash/pkg/http"
	applogger "EconDash/pkg/logger"
)

// Loader produces the yearly dataset.
type Loader interface {
	Load(ctx context.Context) models.Result
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	loader      Loader
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, loader Loader, h xhttp.Handler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, loader: loader, httpHandler: h}
}

// Run starts the HTTP server, warms the dataset cache and blocks until
// interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !a.cfg.HasProviderCredential() {
		a.log.Warn(models.MessageMissingKey)
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log.With(applogger.String("component", "http"))),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Warm the cache so the first dashboard request is served immediately.
	go func() {
		res := a.loader.Load(ctx)
		a.log.Info("initial dataset load finished",
			applogger.String("status", string(res.Status)),
			applogger.String("reason", string(res.Reason)),
			applogger.Int("years", len(res.Rows)),
		)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// RunOnce runs the pipeline a single time and writes the yearly table to w.
func (a *App) RunOnce(ctx context.Context, w io.Writer) error {
	res := a.loader.Load(ctx)
	if !res.Available() {
		msg := res.Message
		if msg == "" {
			msg = models.MessageUnavailable
		}
		return errors.New(msg)
	}
	return WriteYearlyTable(w, res.Rows)
}

// WriteYearlyTable renders rows as an aligned text table.
func WriteYearlyTable(w io.Writer, rows []models.YearlyAggregate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tGDP\tCPI\tUnemployment\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.2f\t\n", r.Year, r.GDP, r.CPI, r.Unemployment)
	}
	return tw.Flush()
}

func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
