package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventpass/internal/client"
	"eventpass/internal/config"
	"eventpass/internal/repository"
	"eventpass/internal/server"
	"eventpass/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	db, err := repository.Open(cfg.StoragePath)
	if err != nil {
		logger.Error("open local storage", "error", err)
		os.Exit(1)
	}

	credentialRepo := repository.NewCredentialRepository(db)
	orderCache := repository.NewOrderCacheRepository(db)
	ticketCache := repository.NewTicketCacheRepository(db)

	backend := client.NewBackend(&cfg.Backend, credentialRepo, logger)

	sessions := service.NewSessionService(backend, credentialRepo, logger)
	events := service.NewEventService(backend)
	orders := service.NewOrderService(backend, sessions, orderCache, logger)
	tickets := service.NewTicketService(backend, sessions, ticketCache, logger)
	payments := service.NewPaymentService(backend, sessions, logger)

	// Restore a persisted session before the surface accepts traffic so
	// no request ever observes a half-restored state.
	if err := sessions.Restore(context.Background()); err != nil {
		logger.Error("restore session", "error", err)
		os.Exit(1)
	}

	warmCaches(sessions, orders, tickets, logger)

	srv := server.NewServer(sessions, events, orders, tickets, payments, logger)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info("starting HTTP surface", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}

// warmCaches refreshes the offline copies of the restored user's
// orders and tickets. Best effort: failures only log.
func warmCaches(sessions service.SessionService, orders service.OrderService, tickets service.TicketService, logger *slog.Logger) {
	if sessions.CurrentUser() == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := orders.List(ctx)
		return err
	})
	g.Go(func() error {
		_, err := tickets.FetchUserTickets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn("cache warm-up incomplete", "error", err)
	}
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
