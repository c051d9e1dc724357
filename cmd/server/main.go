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

	"undercover/internal/app"
	"undercover/internal/config"
	"undercover/internal/storage/postgres"
	httpTransport "undercover/internal/transport/http"
	"undercover/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting undercover game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"catchRule", cfg.Game.CatchRule,
	)

	var (
		hubOpts    []app.Option
		serverOpts []httpTransport.Option
		store      *postgres.Store
	)
	// exit releases the database pool before leaving; os.Exit skips defers.
	exit := func(code int) {
		if store != nil {
			store.Close()
		}
		os.Exit(code)
	}
	if cfg.Database.URL != "" {
		var err error
		store, err = openStore(cfg)
		if err != nil {
			logger.Error("database unavailable", "error", err)
			os.Exit(1)
		}

		hubOpts = append(hubOpts, app.WithSettingsSource(store, cfg.Database.Timeout))
		serverOpts = append(serverOpts, httpTransport.WithSettingsStore(store))
		logger.Info("room settings loaded from database")
	} else {
		logger.Info("no database configured, rooms start with default settings")
	}

	// Create connection gateway and game hub
	gateway := ws.NewGateway(logger)
	hub, err := app.NewHub(cfg.Game, gateway, logger, hubOpts...)
	if err != nil {
		logger.Error("failed to create hub", "error", err)
		exit(1)
	}
	hub.RegisterHandlers(gateway)

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, gateway, logger, serverOpts...)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting connections, then close rooms so players get
	// room_closed before their sockets drop.
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Close()
	if err := gateway.CloseAll(ctx); err != nil {
		logger.Warn("connections still open at shutdown", "count", gateway.ConnectionCount())
	}

	if store != nil {
		store.Close()
	}

	logger.Info("server stopped")
}

func openStore(cfg *config.Config) (*postgres.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
