package proteograph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRepositoryFindAll(t *testing.T) {
	runner := &mockRunner{}
	repo, err := NewRepository[models.Gene](runner)
	require.NoError(t, err)

	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(eager(
		record([]string{"n"}, node("4:1", "Gene", map[string]any{
			"id": "ENSG00000141510", "name": "TP53", "biotype": "protein_coding",
			"version": int64(18), "chrom": "17", "strand": "-",
			"bp_from": int64(7661779), "bp_to": int64(7687538),
		})),
		record([]string{"n"}, node("4:2", "Gene", map[string]any{"id": "ENSG00000012048", "name": nil})),
	), nil).Once()

	genes, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, genes, 2)
	assert.Equal(t, models.Gene{
		ID: "ENSG00000141510", Name: "TP53", Biotype: "protein_coding", Version: 18,
		Chrom: "17", Strand: "-", BpFrom: 7661779, BpTo: 7687538,
	}, *genes[0])
	assert.Equal(t, "", genes[1].Name, "null properties leave the zero value")
	runner.AssertExpectations(t)
}

func TestRepositoryFindAllEmpty(t *testing.T) {
	runner := &mockRunner{}
	repo, err := NewRepository[models.Gene](runner)
	require.NoError(t, err)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(eager(), nil).Once()

	genes, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, genes)
	assert.Empty(t, genes)
}

func TestRepositoryFindAllNodes(t *testing.T) {
	runner := &mockRunner{}
	repo, err := NewRepository[models.Gene](runner)
	require.NoError(t, err)

	props := map[string]any{"id": "ENSG1", "chrom": int64(17), "external_ids": []any{"HGNC:11998"}}
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(eager(
		record([]string{"n"}, node("4:1", "Gene", props)),
	), nil).Once()

	nodes, err := repo.FindAllNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "4:1", nodes[0].ID)
	assert.Equal(t, []string{"Gene"}, nodes[0].Labels)
	assert.Equal(t, props, nodes[0].Properties)

	// The typed projection of the same node cannot hold an integer chrom.
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(eager(
		record([]string{"n"}, node("4:1", "Gene", props)),
	), nil).Once()
	_, err = repo.FindAll(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestRepositoryFindAllNodesRejectsNonNodes(t *testing.T) {
	runner := &mockRunner{}
	repo, err := NewRepository[models.Gene](runner)
	require.NoError(t, err)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(eager(record([]string{"n"}, "gene")), nil).Once()

	_, err = repo.FindAllNodes(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestRepositoryFindByIDErrors(t *testing.T) {
	g := node("4:1", "Gene", map[string]any{"id": "ENSG1"})
	tests := []struct {
		name   string
		result *neo4j.EagerResult
		err    error
		want   error
	}{
		{"not found", eager(), nil, ErrNotFound},
		{"duplicate", eager(record([]string{"n"}, g), record([]string{"n"}, g)), nil, ErrMalformedResult},
		{"not a node", eager(record([]string{"n"}, "gene")), nil, ErrMalformedResult},
		{"wrong column", eager(record([]string{"m"}, g)), nil, ErrMalformedResult},
		{"runner failure", nil, ErrUpstream, ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			repo, err := NewRepository[models.Gene](runner)
			require.NoError(t, err)
			runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(tt.result, tt.err).Once()

			_, err = repo.FindByID(context.Background(), "ENSG1")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMapNodeToStructTypeMismatch(t *testing.T) {
	meta, err := parseTags[models.Gene]()
	require.NoError(t, err)

	var gene models.Gene
	err = mapNodeToStruct(node("4:1", "Gene", map[string]any{"id": "ENSG1", "bp_from": "seven"}), &gene, meta)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestNewRepositoryRejectsUntaggedType(t *testing.T) {
	type plain struct{ Name string }
	_, err := NewRepository[plain](&mockRunner{})
	assert.Error(t, err)
}
