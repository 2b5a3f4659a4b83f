package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"usersapi/internal/adapter/database"
	"usersapi/internal/adapter/http/routes"
	"usersapi/internal/adapter/telemetry"
	"usersapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Run initializes telemetry and storage, serves HTTP until ctx is cancelled
// and then drains requests and closes the storage pool. A storage backend
// that cannot be reached at startup is returned as an error before the
// listener opens.
func Run(ctx context.Context, cfg *config.AppConfig, logger *config.Logger) error {
	gin.SetMode(cfg.GinMode)

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.GinMode,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger.Logger.Logger)

	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	store, err := database.Open(ctx, cfg.Database, logger.Logger.Logger, tel.AppMetrics)

	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := store.Close(closeCtx); err != nil {
			logger.Error("Closing database failed", zap.Error(err))
			return
		}

		logger.Info("Database connection closed")
	}()

	container := NewContainer(store, tel.NewTelemetryProbe(logger.Logger.Logger), logger, cfg.Database.Timeout)

	router := routes.SetupRouter(routes.HandlersConfig{
		UserHandler:   container.UserHandler,
		HealthHandler: container.HealthHandler,
		Metrics:       tel.MetricsHandler(),
	}, tel.AppMetrics, logger, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return Serve(ctx, srv, logger, cfg)
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *config.Logger, cfg *config.AppConfig) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
