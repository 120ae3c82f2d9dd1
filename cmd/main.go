// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/config"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/database"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/handler"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/repository"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/service"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	configureLogger(log, cfg)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

func configureLogger(log *logrus.Logger, cfg config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to PostgreSQL and migrate ──────────────────────────────
	pool, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	opts := service.Options{Log: log, StoreTimeout: cfg.StoreTimeout}
	h := handler.New(handler.Services{
		Users:      service.NewUserService(repository.NewUserRepository(pool), cfg.BcryptCost, opts),
		Events:     service.NewEventService(repository.NewEventRepository(pool), opts),
		Attendance: service.NewAttendanceService(repository.NewAttendanceRepository(pool), opts),
		Resources:  service.NewResourceService(repository.NewResourceRepository(pool), opts),
	}, log)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.NewRouter(h, handler.NewRateLimiter(cfg.RateLimit)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
