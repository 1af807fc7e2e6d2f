package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore-admin/internal/adapter"
	"bookstore-admin/internal/config"
	"bookstore-admin/internal/console"
	"bookstore-admin/internal/core"
	"bookstore-admin/internal/telemetry"
	"bookstore-admin/pkg/http_client"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	shutdown := telemetry.Setup("bookstore-admin", logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := http_client.CreateHTTPClient(cfg.HTTPTimeout)
	store := adapter.NewFileTokenStore(cfg.TokenFile)
	strictness := core.StrictValidation
	if !cfg.StrictOrderValidation {
		strictness = core.LenientValidation
	}

	app := console.NewApp(console.AppConfig{
		Admin:      adapter.NewGateway(cfg.AdminAPIURL, client, store, logger),
		Auth:       adapter.NewGateway(cfg.AuthAPIURL, client, nil, logger),
		Store:      store,
		Notifier:   console.Notifier{W: os.Stdout},
		Strictness: strictness,
		Logger:     logger,
	})
	return console.Run(ctx, app, os.Args[1:], os.Stdout, os.Stderr)
}
