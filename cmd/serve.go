package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"anychat/internal/app/storage"
	"anychat/internal/handler"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the token gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

// serve runs the gateway until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(parent context.Context, a *app) error {
	cfg := a.cfg

	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("provider_host", cfg.ProviderHost).
		Str("client", a.client.Identity.String()).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("avatar_storage", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	deps := &handler.AppDeps{Config: cfg, Client: a.client}
	if cfg.StorageEnabled() {
		store, err := a.newStore(ctx, storage.ConfigFrom(cfg))
		if err != nil {
			return err
		}
		deps.Avatars = storage.NewAvatars(store, cfg.S3PublicBaseURL)
	}

	router, grantLimiter := handler.Router(deps)
	go grantLimiter.Run(ctx)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info(fmt.Sprintf("AnyChat token gateway starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logx.Info("Server gracefully stopped.")
	return nil
}
