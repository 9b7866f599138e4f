package proteograph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/klauspost/compress/gzip"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/models"
)

// maxCompactBytes caps the decompressed size of a compact relationship blob.
const maxCompactBytes = 256 << 20

// shapeSubgraphs turns the rows of a full-shape query into one subgraph per
// row. A query that matched no anchor yields a single empty subgraph.
// Relationships whose type is not in w are left out; dropped counts them.
func shapeSubgraphs(result *neo4j.EagerResult, w Whitelist) (subgraphs []*models.Subgraph, dropped int, err error) {
	if result == nil || len(result.Records) == 0 {
		return []*models.Subgraph{models.NewSubgraph()}, 0, nil
	}

	subgraphs = make([]*models.Subgraph, 0, len(result.Records))
	for i, record := range result.Records {
		sg, n, err := shapeSubgraph(record, w)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i, err)
		}
		dropped += n
		subgraphs = append(subgraphs, sg)
	}
	return subgraphs, dropped, nil
}

// shapeSubgraph builds the parallel node and relationship arrays of one row.
// Anchors are placed first, nodes and relationships are de-duplicated by
// ElementId, and every kept relationship must connect two nodes of the row.
// subgraphAll returns all relationships between the collected nodes, not only
// the traversed ones, so types outside w are skipped.
func shapeSubgraph(record *neo4j.Record, w Whitelist) (*models.Subgraph, int, error) {
	sg := models.NewSubgraph()
	index := make(map[string]*models.Node)

	addNodes := func(column string, required bool) error {
		values, err := listColumn(record, column, required)
		if err != nil {
			return err
		}
		for _, value := range values {
			n, ok := value.(neo4j.Node)
			if !ok {
				return fmt.Errorf("%w: column %q holds %T, not a node", ErrMalformedResult, column, value)
			}
			if _, seen := index[n.ElementId]; seen {
				continue
			}
			node := &models.Node{ID: n.ElementId, Labels: n.Labels, Properties: n.Props}
			index[n.ElementId] = node
			sg.AddNode(node)
		}
		return nil
	}

	if err := addNodes(colAnchors, false); err != nil {
		return nil, 0, err
	}
	if err := addNodes(colNodes, true); err != nil {
		return nil, 0, err
	}

	rels, err := listColumn(record, colRelationships, true)
	if err != nil {
		return nil, 0, err
	}
	dropped := 0
	seenRels := make(map[string]bool, len(rels))
	for _, value := range rels {
		r, ok := value.(neo4j.Relationship)
		if !ok {
			return nil, 0, fmt.Errorf("%w: column %q holds %T, not a relationship", ErrMalformedResult, colRelationships, value)
		}
		if seenRels[r.ElementId] {
			continue
		}
		if !w.Includes(r.Type) {
			seenRels[r.ElementId] = true
			dropped++
			continue
		}
		start, okStart := index[r.StartElementId]
		end, okEnd := index[r.EndElementId]
		if !okStart || !okEnd {
			return nil, 0, fmt.Errorf("%w: relationship %s (%s) has an endpoint outside the subgraph", ErrMalformedResult, r.ElementId, r.Type)
		}
		seenRels[r.ElementId] = true

		rel := &models.Relationship{
			ID:         r.ElementId,
			Source:     r.StartElementId,
			Target:     r.EndElementId,
			Type:       r.Type,
			Properties: r.Props,
		}
		rel.SetEndpoints(start.Properties, end.Properties)
		sg.AddRelationship(rel)
	}

	return sg, dropped, nil
}

// listColumn reads a list valued column. A missing optional column or a null
// value reads as an empty list.
func listColumn(record *neo4j.Record, column string, required bool) ([]any, error) {
	value, ok := record.Get(column)
	if !ok {
		if required {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedResult, column)
		}
		return nil, nil
	}
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: column %q holds %T, not a list", ErrMalformedResult, column, value)
	}
	return list, nil
}

// shapeCompact decompresses the store-side relationship blob and normalizes it
// into a JSON string.
func shapeCompact(result *neo4j.EagerResult) (*models.CompactResult, error) {
	if result == nil || len(result.Records) == 0 {
		return &models.CompactResult{Relationships: "[]"}, nil
	}

	value, ok := result.Records[0].Get(colRelationships)
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrMalformedResult, colRelationships)
	}

	var text string
	switch v := value.(type) {
	case nil:
		return &models.CompactResult{Relationships: "[]"}, nil
	case []byte:
		decoded, err := decompress(v)
		if err != nil {
			return nil, err
		}
		text = decoded
	case string:
		text = v
	default:
		return nil, fmt.Errorf("%w: column %q holds %T, not a compressed blob", ErrMalformedResult, colRelationships, value)
	}

	normalized, err := normalizeJSON(text)
	if err != nil {
		return nil, err
	}
	return &models.CompactResult{Relationships: normalized}, nil
}

// decompress gunzips a blob produced by apoc.util.compress.
func decompress(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return "", fmt.Errorf("%w: decompress relationships: %v", ErrMalformedResult, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxCompactBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: decompress relationships: %v", ErrMalformedResult, err)
	}
	if len(data) > maxCompactBytes {
		return "", fmt.Errorf("%w: decompressed relationships exceed %d bytes", ErrMalformedResult, maxCompactBytes)
	}
	return string(data), nil
}

// normalizeJSON returns text as compact, valid JSON. Text that is already
// valid JSON is only re-encoded; text using a non-JSON quoting convention
// (single-quoted strings, bare literals) is repaired first. Quote characters
// inside string values are preserved either way.
func normalizeJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "[]", nil
	}
	if !json.Valid([]byte(trimmed)) {
		repaired, err := jsonrepair.JSONRepair(trimmed)
		if err != nil {
			return "", fmt.Errorf("%w: normalize relationships: %v", ErrMalformedResult, err)
		}
		trimmed = repaired
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%w: normalize relationships: %v", ErrMalformedResult, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: normalize relationships: %v", ErrMalformedResult, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// shapeHistogram reads (key, count) rows.
func shapeHistogram(result *neo4j.EagerResult) ([]models.CountBucket, error) {
	buckets := make([]models.CountBucket, 0)
	if result == nil {
		return buckets, nil
	}
	for _, record := range result.Records {
		key, _ := record.Get("key")
		count, ok := record.Get("count")
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedResult, "count")
		}
		n, ok := count.(int64)
		if !ok {
			return nil, fmt.Errorf("%w: count holds %T, not an integer", ErrMalformedResult, count)
		}
		label := ""
		if key != nil {
			label = fmt.Sprint(key)
		}
		buckets = append(buckets, models.CountBucket{Key: label, Count: n})
	}
	return buckets, nil
}
