package proteograph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/metrics"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/models"
	"go.uber.org/zap"
)

// Aggregations of the dataset overview. Samples without the grouped property
// fall into a bucket with an empty key.
const (
	projectHistogramQuery = "MATCH (s:Sample)\n" +
		"RETURN s.pride_project_accession AS key, count(s) AS count\n" +
		"ORDER BY count DESC, key"
	tissueHistogramQuery = "MATCH (s:Sample)\n" +
		"RETURN s.tissue_name AS key, count(s) AS count\n" +
		"ORDER BY count DESC, key"
)

// Response is the result of one search: Subgraphs for the full shape,
// Compact for the compact shape.
type Response struct {
	Shape     Shape
	Subgraphs []*models.Subgraph
	Compact   *models.CompactResult
}

// Payload returns the value to serialize for the client.
func (r *Response) Payload() any {
	if r.Shape == ShapeCompact {
		return r.Compact
	}
	return r.Subgraphs
}

// SearchManager is the central orchestrator of the service. It turns requests
// into traversals, runs them against the graph and shapes the rows.
type SearchManager struct {
	runner DBRunner
	genes  *Repository[models.Gene]
	logger *zap.Logger
}

// NewSearchManager creates a new instance of the SearchManager.
func NewSearchManager(runner DBRunner, logger *zap.Logger) (*SearchManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	genes, err := NewRepository[models.Gene](runner)
	if err != nil {
		return nil, fmt.Errorf("gene repository: %w", err)
	}
	return &SearchManager{
		runner: runner,
		genes:  genes,
		logger: logger.Named("search"),
	}, nil
}

// Search builds and executes the traversal of a request.
//
// An anchor that matches nothing is not an error: a full-shape search then
// returns one empty subgraph and a compact search an empty relationship list.
func (m *SearchManager) Search(ctx context.Context, req Request) (*Response, error) {
	q, err := req.Query()
	if err != nil {
		return nil, err
	}
	return m.Execute(ctx, q)
}

// Execute runs a prepared traversal and shapes its rows.
func (m *SearchManager) Execute(ctx context.Context, q *Query) (*Response, error) {
	result, err := m.run(ctx, q.Kind.String(), q.Cypher, q.Params)
	if err != nil {
		return nil, err
	}

	resp := &Response{Shape: q.Shape}
	dropped := 0
	if q.Shape == ShapeCompact {
		resp.Compact, err = shapeCompact(result)
	} else {
		resp.Subgraphs, dropped, err = shapeSubgraphs(result, WhitelistFor(q.Kind))
	}
	if err != nil {
		m.logger.Error("could not shape graph result",
			zap.Stringer("kind", q.Kind),
			zap.Stringer("shape", q.Shape),
			zap.Error(err))
		return nil, newSearchError(ClassUpstream, "shape "+q.Kind.String(), err)
	}

	m.logger.Debug("search completed",
		zap.Stringer("kind", q.Kind),
		zap.Stringer("shape", q.Shape),
		zap.Int("rows", len(result.Records)),
		zap.Int("dropped_relationships", dropped))
	return resp, nil
}

// Overview returns the sample histograms and the gene list.
func (m *SearchManager) Overview(ctx context.Context) (*models.Overview, error) {
	projects, err := m.histogram(ctx, "overview_projects", projectHistogramQuery)
	if err != nil {
		return nil, err
	}
	tissues, err := m.histogram(ctx, "overview_tissues", tissueHistogramQuery)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	genes, err := m.genes.FindAllNodes(ctx)
	m.observe("overview_genes", start, err)
	if err != nil {
		return nil, m.fail("overview_genes", err)
	}

	return &models.Overview{Projects: projects, Tissues: tissues, Genes: genes}, nil
}

// Gene looks a gene up by its identifier. It returns ErrNotFound when no gene matches.
func (m *SearchManager) Gene(ctx context.Context, id string) (*models.Gene, error) {
	if id == "" {
		return nil, invalidf("gene lookup", "gene id is required")
	}
	start := time.Now()
	gene, err := m.genes.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.observe("gene_lookup", start, nil)
		return nil, err
	}
	m.observe("gene_lookup", start, err)
	if err != nil {
		return nil, m.fail("gene_lookup", err)
	}
	return gene, nil
}

func (m *SearchManager) histogram(ctx context.Context, label, query string) ([]models.CountBucket, error) {
	result, err := m.run(ctx, label, query, nil)
	if err != nil {
		return nil, err
	}
	buckets, err := shapeHistogram(result)
	if err != nil {
		return nil, m.fail(label, err)
	}
	return buckets, nil
}

// run executes a query and records its duration and failures.
func (m *SearchManager) run(ctx context.Context, label, query string, params map[string]any) (*neo4j.EagerResult, error) {
	start := time.Now()
	result, err := m.runner.Run(ctx, query, params)
	m.observe(label, start, err)
	if err != nil {
		return nil, m.fail(label, err)
	}
	if result == nil {
		result = &neo4j.EagerResult{}
	}
	return result, nil
}

func (m *SearchManager) observe(label string, start time.Time, err error) {
	metrics.QueryDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueryErrorsTotal.WithLabelValues(label, Classify(err).String()).Inc()
	}
}

// fail logs the cause of a failed query and makes sure it carries a class.
func (m *SearchManager) fail(label string, err error) error {
	m.logger.Error("graph query failed",
		zap.String("query", label),
		zap.Stringer("class", Classify(err)),
		zap.Error(err))

	var se *SearchError
	if errors.As(err, &se) {
		return err
	}
	return newSearchError(Classify(err), label, err)
}
