package cmd

import (
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/config"
	"go.uber.org/zap"
)

// connect opens the driver pool described by cfg and checks that the server
// answers. The caller owns the returned executor and must Close it.
func connect(ctx context.Context, cfg config.Neo4jConfig, logger *zap.Logger) (*proteograph.Neo4jExecutor, error) {
	executor, err := proteograph.NewNeo4jExecutor(cfg.URI, cfg.Username, cfg.Password, cfg.Database,
		proteograph.WithPoolSize(cfg.MaxPoolSize),
		proteograph.WithAcquisitionTimeout(cfg.AcquisitionTimeout),
		proteograph.WithMaxConnectionLifetime(cfg.MaxConnectionLifetime),
		proteograph.WithQueryTimeout(cfg.QueryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j executor: %w", err)
	}

	if err := executor.Verify(ctx); err != nil {
		_ = executor.Close(context.Background())
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", cfg.URI, err)
	}

	logger.Info("Connected to neo4j",
		zap.String("uri", cfg.URI),
		zap.String("database", cfg.Database),
		zap.Int("max_pool_size", cfg.MaxPoolSize))
	return executor, nil
}

type contextCloser interface {
	Close(ctx context.Context) error
}

// closeExecutor closes the driver pool, logging a failure instead of returning it.
func closeExecutor(c contextCloser, logger *zap.Logger) {
	if err := c.Close(context.Background()); err != nil {
		logger.Warn("Error closing neo4j driver", zap.Error(err))
	}
}
