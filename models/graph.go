// Package models contains the transport types of the service: subgraph
// projections of the knowledge graph and the dataset overview.
// Their JSON encoding is the wire format consumed by the front-end.
package models

import "encoding/json"

// Node is one entity of a subgraph (Gene, Transcript, Peptide, ...).
// On the wire a node is just its property map; its labels travel in the
// parallel node_types array of the enclosing Subgraph.
type Node struct {
	// ID is the ElementId assigned by Neo4j.
	ID string
	// Labels are the type labels of the node (e.g. ["Peptide"]).
	Labels []string
	// Properties is the property map of the node.
	Properties map[string]any
}

// MarshalJSON encodes the node as its property map.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Properties == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(n.Properties)
}

// Relationship is a typed, directed edge between two nodes of a subgraph.
// On the wire it is the triple [startProperties, TYPE, endProperties], its own
// properties travel in the parallel rel_props array of the enclosing Subgraph.
type Relationship struct {
	// ID is the ElementId assigned by Neo4j.
	ID string
	// Source is the ElementId of the start node.
	Source string
	// Target is the ElementId of the end node.
	Target string
	// Type is the relationship type (e.g. "TRANSCRIPT_OF").
	Type string
	// Properties is the property map of the relationship.
	Properties map[string]any

	start, end map[string]any
}

// SetEndpoints attaches the property maps of the start and end nodes used by the wire encoding.
func (r *Relationship) SetEndpoints(start, end map[string]any) {
	r.start, r.end = start, end
}

// MarshalJSON encodes the relationship as [start, type, end].
func (r *Relationship) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{orEmpty(r.start), r.Type, orEmpty(r.end)})
}

// Subgraph is the full-shape projection reachable from one anchor row.
// The four slices are always non-nil; NodeTypes is parallel to Nodes and
// RelProps is parallel to Relationships.
type Subgraph struct {
	Nodes         []*Node          `json:"nodes"`
	NodeTypes     [][]string       `json:"node_types"`
	Relationships []*Relationship  `json:"relationships"`
	RelProps      []map[string]any `json:"rel_props"`
}

// NewSubgraph returns an empty subgraph that encodes as four empty arrays.
func NewSubgraph() *Subgraph {
	return &Subgraph{
		Nodes:         make([]*Node, 0),
		NodeTypes:     make([][]string, 0),
		Relationships: make([]*Relationship, 0),
		RelProps:      make([]map[string]any, 0),
	}
}

// AddNode appends a node and its labels.
func (s *Subgraph) AddNode(n *Node) {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	s.Nodes = append(s.Nodes, n)
	s.NodeTypes = append(s.NodeTypes, labels)
}

// AddRelationship appends a relationship and its properties.
func (s *Subgraph) AddRelationship(r *Relationship) {
	s.Relationships = append(s.Relationships, r)
	s.RelProps = append(s.RelProps, orEmpty(r.Properties))
}

// CompactResult is the relationship-only projection. Relationships holds a JSON
// document (an array of [startProps, TYPE, endProps, relProps]) as a string.
type CompactResult struct {
	Relationships string `json:"relationships"`
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
