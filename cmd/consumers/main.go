package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/consumers"
	"boxoffice/internal/logger"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "boxoffice-indexer"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerService, err := consumers.NewConsumerService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	log.Info("Shutting down consumers service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
