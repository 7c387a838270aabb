package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"vcc/internal/platform/config"
	"vcc/internal/platform/httpserver"
	"vcc/internal/platform/logger"
)

const throttleIdle = 10 * time.Minute

// main loads configuration, wires the application and keeps the server
// lifecycle small. Business logic lives in the internal service packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.Logging)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close(log)

	if err := app.bootstrapAdmin(ctx, cfg.Admin); err != nil {
		return err
	}

	scheduler := cron.New()
	if _, err := app.limiter.ScheduleSweep(scheduler, "@every 5m"); err != nil {
		return err
	}
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if n := app.throttle.Sweep(throttleIdle); n > 0 {
			log.Debug("swept idle client throttles", "count", n)
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	srv := httpserver.New(cfg.Server.Addr, app.router, log)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting vcc", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// Drain queued emails after the last request has finished.
	if err := app.mailer.Close(shutdownCtx); err != nil {
		log.Warn("notification queue not drained", "error", err)
	}
	return nil
}
