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

	"bookstore-admin/internal/adapter"
	"bookstore-admin/internal/config"
	"bookstore-admin/internal/telemetry"
)

// devapi serves an in-memory admin and auth API on one port, for running
// the console without the real backend.
func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	shutdownTracing := telemetry.Setup("bookstore-devapi", logger)

	api := adapter.NewDevAPI(adapter.WithLogger(logger))
	if cfg.DevAPISeed {
		if err := api.Seed(context.Background()); err != nil {
			logger.Error("seed", "err", err)
			os.Exit(1)
		}
		logger.Info("seeded demo data", "email", adapter.SeedEmail)
	}

	server := &http.Server{
		Addr:         ":" + cfg.DevAPIPort,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("devapi listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", "err", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("telemetry shutdown", "err", err)
	}
}
