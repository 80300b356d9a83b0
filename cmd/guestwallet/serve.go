package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/guest-wallet/internal/api"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the guest wallet HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	app, closeApp, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer closeApp()

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.SetupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lg := logger.Get()
	lg.Info().Str("addr", srv.Addr).Str("contract", cfg.ContractName).Msg("starting server")
	return listenUntilSignal(srv)
}

// listenUntilSignal serves until SIGINT/SIGTERM, then shuts down gracefully.
func listenUntilSignal(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg := logger.Get()
	lg.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
