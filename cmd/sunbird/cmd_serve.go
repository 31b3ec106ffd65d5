package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/metrics"
	chiTransport "github.com/kailas-cloud/sunbird/internal/transport/chi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RegisterBackendMetrics()

	a, err := newApp(ctx, envName, false)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:      newRouter(a),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	if srv.WriteTimeout < a.ceiling {
		a.logger.Warn("HTTP write timeout is below the backend retry ceiling",
			zap.Duration("write_timeout", srv.WriteTimeout),
			zap.Duration("retry_ceiling", a.ceiling),
		)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}

func newRouter(a *app) http.Handler {
	server := chiTransport.NewServer(a.sources, a.health, a.logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(a.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(a.logger))
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(chiTransport.NotFound)
	r.MethodNotAllowed(chiTransport.MethodNotAllowed)

	return chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{BaseRouter: r})
}
