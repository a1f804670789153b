package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/TNTKien/repo-timeline/internal/api"
	"github.com/TNTKien/repo-timeline/internal/config"
	"github.com/TNTKien/repo-timeline/internal/logger"
	"github.com/TNTKien/repo-timeline/internal/session"
	"github.com/TNTKien/repo-timeline/internal/timeline"
	"github.com/TNTKien/repo-timeline/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gh, err := upstream.NewClient(upstream.Config{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
		Timeout: cfg.GitHub.Timeout,
	})
	if err != nil {
		log.Errorw("failed to create github client", "error", err)
		return
	}
	if cfg.GitHub.Token == "" {
		log.Warnw("GITHUB_TOKEN not set, using unauthenticated rate limits")
	}

	svc := timeline.NewService(gh, log)
	h := api.NewHandler(log, svc, session.NewStore(), api.Options{
		DefaultPerPage: cfg.Timeline.DefaultPerPage,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	app := api.NewApp(log, h)

	go func() {
		log.Infow("starting repo-timeline server", "addr", cfg.ServerAddr())
		if err := app.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warnw("server shutdown", "error", err, "timeout", cfg.Server.ShutdownTimeout)
	}
}
