package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/dataq/pkg/api"
	"github.com/codeready-toolchain/dataq/pkg/cleanup"
	"github.com/codeready-toolchain/dataq/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP + websocket session driver API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Initialize(ctx, configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		a, teardown, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer teardown()

		sweeper := cleanup.NewService(a.memory, cfg)
		sweeper.Start(ctx)
		defer sweeper.Stop()

		srv := api.NewHTTPServer(cfg.API, a.manager, a.driver)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run() }()

		select {
		case <-ctx.Done():
			slog.Info("serve: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
