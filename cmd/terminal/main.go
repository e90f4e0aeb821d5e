package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/internal/api"
	"boxoffice/internal/config"
	"boxoffice/internal/logger"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithTerminal(cfg.Terminal.ID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	terminal, err := api.NewTerminalServer(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to start terminal", "error", err)
	}
	terminal.Start(ctx)

	// WriteTimeout не задан: /api/stream держит соединение открытым
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           terminal.GetRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting terminal server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down terminal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := terminal.Cleanup(); err != nil {
		log.Error("Error during cleanup", "error", err)
	}

	log.Info("Terminal stopped")
}
