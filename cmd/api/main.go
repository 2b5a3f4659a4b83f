package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	server "usersapi/internal/adapter/http"
	. "usersapi/pkg/config"

	"go.uber.org/zap"
)

func main() {
	config, err := Load()

	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := NewLogger(config.ServiceName, config.LogLevel)

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = server.Run(ctx, config, logger)
	stop()

	if err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Server stopped")
	logger.Sync()
}
