package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/config"
	"github.com/eventra/event-ticketing/internal/handler"
	"github.com/eventra/event-ticketing/internal/notify"
	"github.com/eventra/event-ticketing/internal/repository"
	"github.com/eventra/event-ticketing/internal/router"
	"github.com/eventra/event-ticketing/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	store := repository.NewMongo(client, cfg.MongoDB)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDB)

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and caching disabled")
	}

	dispatcher := notify.NewQueueDispatcher(cfg.AMQPURL, logger)
	if cfg.AMQPURL != "" {
		go notify.StartConsumer(ctx, cfg.AMQPURL, logger)
	} else {
		logger.Warn("no broker configured; notifications use the in-process buffer")
	}

	authSvc := service.NewAuthService(store.Accounts(), store.Tokens(),
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost)
	eventSvc := service.NewEventService(store.Events(), dispatcher)
	bookingSvc := service.NewBookingService(store.Events(), store.Bookings(), dispatcher, logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(authSvc, logger),
		Events:   handler.NewEventHandler(eventSvc, logger),
		Bookings: handler.NewBookingHandler(bookingSvc, logger),
		Logger:   logger,
		Redis:    rdb,
		Cfg:      cfg,
	})

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil {
			logger.Info("server stopped", "reason", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("error disconnecting from MongoDB", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("server exited")
}

func setupLogger(cfg config.Config) *slog.Logger {
	var h slog.Handler
	if cfg.Env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h)
}
