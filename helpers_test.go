package proteograph

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockRunner is a DBRunner driven by testify expectations.
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	args := m.Called(ctx, query, params)
	res, _ := args.Get(0).(*neo4j.EagerResult)
	return res, args.Error(1)
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func eager(records ...*neo4j.Record) *neo4j.EagerResult {
	var keys []string
	if len(records) > 0 {
		keys = records[0].Keys
	}
	return &neo4j.EagerResult{Keys: keys, Records: records}
}

func node(id string, label string, props map[string]any) neo4j.Node {
	return neo4j.Node{ElementId: id, Labels: []string{label}, Props: props}
}

func rel(id, relType string, from, to neo4j.Node, props map[string]any) neo4j.Relationship {
	return neo4j.Relationship{
		ElementId:      id,
		StartElementId: from.ElementId,
		EndElementId:   to.ElementId,
		Type:           relType,
		Props:          props,
	}
}

func subgraphRow(anchors []neo4j.Node, nodes []neo4j.Node, rels []neo4j.Relationship) *neo4j.Record {
	toAny := func(ns []neo4j.Node) []any {
		out := make([]any, len(ns))
		for i, n := range ns {
			out[i] = n
		}
		return out
	}
	relValues := make([]any, len(rels))
	for i, r := range rels {
		relValues[i] = r
	}
	return record([]string{"anchors", "nodes", "relationships"}, toAny(anchors), toAny(nodes), relValues)
}

func gzipped(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// geneFixture is a small gene subgraph: a gene, one transcript, one exon and
// one proteoform encoded by the transcript.
type geneFixture struct {
	gene, transcript, exon, proteoform neo4j.Node
	rels                               []neo4j.Relationship
}

func newGeneFixture() geneFixture {
	f := geneFixture{
		gene:       node("4:gene", "Gene", map[string]any{"id": "ENSG00000141510", "name": "TP53", "version": int64(18)}),
		transcript: node("4:tx", "Transcript", map[string]any{"id": "ENST00000269305"}),
		exon:       node("4:exon", "Exon", map[string]any{"id": "ENSE00001146308", "bp_from": int64(7661779)}),
		proteoform: node("4:pf", "Proteoform", map[string]any{"id": "ENST00000269305_1"}),
	}
	f.rels = []neo4j.Relationship{
		rel("5:r1", "TRANSCRIPT_OF", f.transcript, f.gene, nil),
		rel("5:r2", "INCLUDES_EXON", f.transcript, f.exon, map[string]any{"rank": int64(1)}),
		rel("5:r3", "ENCODED_BY_TRANSCRIPT", f.proteoform, f.transcript, map[string]any{"start": int64(0)}),
	}
	return f
}

func (f geneFixture) row() *neo4j.Record {
	return subgraphRow(
		[]neo4j.Node{f.gene},
		[]neo4j.Node{f.transcript, f.exon, f.gene, f.proteoform},
		f.rels,
	)
}
