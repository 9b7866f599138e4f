package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/config"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/httpapi"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return runServe(cmd.Context(), cfg, observability.GetLogger())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

// runServe blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests and closes the driver pool.
func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	executor, err := connect(ctx, cfg.Neo4j, logger)
	if err != nil {
		return err
	}
	defer closeExecutor(executor, logger)

	manager, err := proteograph.NewSearchManager(executor, logger)
	if err != nil {
		return fmt.Errorf("failed to create search manager: %w", err)
	}

	server := httpapi.NewServer(manager, executor, cfg.HTTP, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
