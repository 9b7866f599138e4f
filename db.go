// Package proteograph turns identifier searches over a proteogenomics knowledge
// graph into bounded Neo4j traversals and shapes the resulting subgraphs for
// transport.
package proteograph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

//---

// Neo4jExecutor is a concrete implementation of the DBRunner interface that uses the
// official Neo4j Go driver. The driver owns a connection pool: every Run borrows a
// session from it and gives it back when the query returns, whatever the outcome.
type Neo4jExecutor struct {
	Driver       neo4j.DriverWithContext
	DBName       string
	QueryTimeout time.Duration
}

type executorOptions struct {
	poolSize           int
	acquisitionTimeout time.Duration
	maxLifetime        time.Duration
	queryTimeout       time.Duration
}

// ExecutorOption tunes the pool and query limits of a Neo4jExecutor.
type ExecutorOption func(*executorOptions)

// WithPoolSize bounds the number of open connections, and so the number of
// queries that can run at once.
func WithPoolSize(n int) ExecutorOption {
	return func(o *executorOptions) { o.poolSize = n }
}

// WithAcquisitionTimeout bounds how long a query waits for a free connection.
func WithAcquisitionTimeout(d time.Duration) ExecutorOption {
	return func(o *executorOptions) { o.acquisitionTimeout = d }
}

// WithMaxConnectionLifetime recycles pooled connections older than d.
func WithMaxConnectionLifetime(d time.Duration) ExecutorOption {
	return func(o *executorOptions) { o.maxLifetime = d }
}

// WithQueryTimeout bounds every Run. Zero disables the bound.
func WithQueryTimeout(d time.Duration) ExecutorOption {
	return func(o *executorOptions) { o.queryTimeout = d }
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It establishes a connection driver with the provided credentials.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//   - opts: Pool and timeout settings; unset values keep the driver defaults.
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string, opts ...ExecutorOption) (*Neo4jExecutor, error) {
	var o executorOptions
	for _, opt := range opts {
		opt(&o)
	}

	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
		func(c *neo4jconfig.Config) {
			if o.poolSize > 0 {
				c.MaxConnectionPoolSize = o.poolSize
			}
			if o.acquisitionTimeout > 0 {
				c.ConnectionAcquisitionTimeout = o.acquisitionTimeout
			}
			if o.maxLifetime > 0 {
				c.MaxConnectionLifetime = o.maxLifetime
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName, QueryTimeout: o.queryTimeout}, nil
}

// Verify checks the connectivity to the Neo4j database.
//
// Returns:
//
//	An error if the connection cannot be established.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	if err := e.Driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// Close releases every pooled connection.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a read-only Cypher query through ExecuteQuery, which borrows a
// session from the driver pool and returns it when the query completes.
// Queries are routed to reader members of a cluster.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	An EagerResult containing all buffered records from the query, ErrQueryTimeout
//	if the query deadline passed, or ErrUpstream for any other driver failure.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	if e.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.QueryTimeout)
		defer cancel()
	}

	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		neo4j.ExecuteQueryWithDatabase(e.DBName),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, classifyDriverError(ctx, err)
	}

	return result, nil
}

// classifyDriverError maps a driver failure onto ErrQueryTimeout or ErrUpstream,
// keeping the driver error in the chain for server-side logging.
func classifyDriverError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newSearchError(ClassTimeout, "neo4j.run", errors.Join(ErrQueryTimeout, err))
	}
	return newSearchError(ClassUpstream, "neo4j.run", fmt.Errorf("%w: %w", ErrUpstream, err))
}
