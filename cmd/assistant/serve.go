package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"medi-cal-assistant/internal/di"
	"medi-cal-assistant/internal/infrastructure/env"
	"medi-cal-assistant/internal/infrastructure/transport/ws"
	"medi-cal-assistant/internal/usecase/eligibility"

	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings := env.NewEnvService()
	cfg, err := env.LoadConfig(settings)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	container, err := di.NewContainer(ctx, cfg, version)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	defer container.Close()
	log := container.Logger
	log.Debug("Configuration loaded", "dotenv", settings.Loaded())

	sessions := ws.NewHandler(container.Assistant, container.Devices, log)
	router := ws.NewRouter(ws.RouterConfig{
		ServiceName:    "medi-cal-assistant",
		MedicalHomeURL: eligibility.HomeURL(cfg.MedicalHomeURL),
		JSONLogs:       cfg.LogFormat != "console",
	}, sessions)

	// No read or write timeout: they would cut long-lived websocket sessions.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	log.Info("Server listening", "addr", cfg.HTTPAddr, "backend", cfg.DeviceBackend, "model", cfg.OpenRouterModel)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced shutdown", "error", err)
		_ = srv.Close()
	}
	log.Info("Server stopped")
	return <-errCh
}
