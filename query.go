package proteograph

import (
	"fmt"
	"strings"
)

// Kind identifies which entity a search anchors on and which part of the graph
// it is allowed to expand into.
type Kind int

const (
	GeneByName Kind = iota
	GeneByID
	ProteoformByID
	ProteoformPeptides
	PeptideList
)

var kindNames = map[Kind]string{
	GeneByName:         "GeneByName",
	GeneByID:           "GeneByID",
	ProteoformByID:     "ProteoformByID",
	ProteoformPeptides: "ProteoformPeptides",
	PeptideList:        "PeptideList",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape is the layout of a search response.
type Shape int

const (
	// ShapeFull returns nodes, node_types, relationships and rel_props.
	ShapeFull Shape = iota
	// ShapeCompact returns only the relationship list, compressed by the store.
	ShapeCompact
)

func (s Shape) String() string {
	if s == ShapeCompact {
		return "compact"
	}
	return "full"
}

// ParseShape maps the request spelling of a shape. The empty string selects
// the kind's default.
func ParseShape(s string) (Shape, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ShapeFull, false, nil
	case "full":
		return ShapeFull, true, nil
	case "compact":
		return ShapeCompact, true, nil
	}
	return ShapeFull, false, invalidf("parse shape", "unknown shape %q", s)
}

// Direction is the traversal direction of a relationship seen from the node
// the expansion currently stands on.
type Direction int

const (
	Both Direction = iota
	In
	Out
)

// Rel is one entry of a relationship whitelist.
type Rel struct {
	Type string
	Dir  Direction
}

// String renders the entry in APOC relationshipFilter syntax.
func (r Rel) String() string {
	switch r.Dir {
	case In:
		return "<" + r.Type
	case Out:
		return r.Type + ">"
	default:
		return r.Type
	}
}

// Whitelist is the fixed set of relationships a search may follow.
type Whitelist []Rel

// Filter renders the whitelist as an APOC relationshipFilter.
func (w Whitelist) Filter() string {
	parts := make([]string, len(w))
	for i, r := range w {
		parts[i] = r.String()
	}
	return strings.Join(parts, "|")
}

// Includes reports whether relationships of type relType may be followed in
// at least one direction.
func (w Whitelist) Includes(relType string) bool {
	for _, r := range w {
		if r.Type == relType {
			return true
		}
	}
	return false
}

// typeList renders the relationship types as a Cypher list literal.
func (w Whitelist) typeList() string {
	parts := make([]string, len(w))
	for i, r := range w {
		parts[i] = "'" + r.Type + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var (
	geneWhitelist = Whitelist{
		{"TRANSCRIPT_OF", In},
		{"EXON_PART_OF", In},
		{"VARIANT_MAPS_TO", In},
		{"INCLUDES_ALT_ALLELE", In},
		{"INCLUDES_EXON", Out},
		{"HAPLO_FORM_OF", Both},
		{"ENCODED_BY_TRANSCRIPT", In},
		{"ENCODED_BY_HAPLOTYPE", In},
		{"MAPS_TO", In},
	}
	proteoformWhitelist = Whitelist{
		{"MAPS_TO", In},
		{"MATCHED_TO", Out},
		{"MEASURED_FROM", Out},
	}
	proteoformPeptideWhitelist = Whitelist{
		{"MAPS_TO", Out},
		{"ENCODED_BY_TRANSCRIPT", Out},
		{"TRANSCRIPT_OF", Out},
		{"MATCHED_TO", Out},
		{"MEASURED_FROM", Out},
	}
	peptideWhitelist = Whitelist{
		{"MAPS_TO", Out},
		{"ENCODED_BY_TRANSCRIPT", Out},
		{"TRANSCRIPT_OF", Out},
	}
)

// WhitelistFor returns a copy of the relationship whitelist of a kind. For
// ProteoformPeptides it is the whitelist of the expansion from each peptide.
func WhitelistFor(k Kind) Whitelist {
	var w Whitelist
	switch k {
	case GeneByName, GeneByID:
		w = geneWhitelist
	case ProteoformByID:
		w = proteoformWhitelist
	case ProteoformPeptides:
		w = proteoformPeptideWhitelist
	case PeptideList:
		w = peptideWhitelist
	}
	return append(Whitelist(nil), w...)
}

// anchor describes how a kind locates its start node.
type anchor struct {
	label    string
	property string
	param    string
}

var anchors = map[Kind]anchor{
	GeneByName:         {label: "Gene", property: "name", param: "name"},
	GeneByID:           {label: "Gene", property: "id", param: "id"},
	ProteoformByID:     {label: "Proteoform", property: "id", param: "id"},
	ProteoformPeptides: {label: "Proteoform", property: "id", param: "id"},
}

// Result column names.
const (
	colAnchors       = "anchors"
	colNodes         = "nodes"
	colRelationships = "relationships"
)

// paramSequences is the parameter holding the peptide list.
const paramSequences = "sequences"

var supportedShapes = map[Kind][]Shape{
	GeneByName:         {ShapeFull, ShapeCompact},
	GeneByID:           {ShapeFull, ShapeCompact},
	ProteoformByID:     {ShapeFull},
	ProteoformPeptides: {ShapeCompact},
	PeptideList:        {ShapeFull},
}

// DefaultShape is the shape a kind answers with when the request does not ask for one.
func DefaultShape(k Kind) Shape {
	if shapes := supportedShapes[k]; len(shapes) > 0 {
		return shapes[0]
	}
	return ShapeFull
}

// Query is an executable, parameterized traversal. Cypher never contains
// request data: every user supplied value lives in Params.
type Query struct {
	Kind   Kind
	Shape  Shape
	Cypher string
	Params map[string]any
}

// Build constructs the traversal for an identifier search. key is bound as a
// query parameter and matched exactly against the anchor's identifying property.
func Build(kind Kind, shape Shape, key string) (*Query, error) {
	const op = "build query"
	a, ok := anchors[kind]
	if !ok {
		if kind == PeptideList {
			return nil, invalidf(op, "%s takes a list of sequences", kind)
		}
		return nil, newSearchError(ClassUnknownKind, op, fmt.Errorf("%w: %s", ErrUnknownSearchType, kind))
	}
	if strings.TrimSpace(key) == "" {
		return nil, invalidf(op, "%s requires a non-empty key", kind)
	}
	if err := checkShape(op, kind, shape); err != nil {
		return nil, err
	}

	match := fmt.Sprintf("MATCH (a:%s {%s: $%s})", a.label, a.property, a.param)
	var cypher string
	switch {
	case kind == ProteoformPeptides:
		cypher = compactQuery(
			match+"--(pep:Peptide)\nWITH DISTINCT pep",
			"pep", WhitelistFor(kind))
	case shape == ShapeCompact:
		cypher = compactQuery(match, "a", WhitelistFor(kind))
	default:
		cypher = fullQuery(match, "a", "[a]", WhitelistFor(kind))
	}

	return &Query{
		Kind:   kind,
		Shape:  shape,
		Cypher: cypher,
		Params: map[string]any{a.param: key},
	}, nil
}

// BuildPeptideList constructs the traversal for a peptide list search. All
// peptides whose sequence is in the list are expanded together, so the query
// always yields exactly one row.
func BuildPeptideList(shape Shape, sequences []string) (*Query, error) {
	const op = "build query"
	if err := checkShape(op, PeptideList, shape); err != nil {
		return nil, err
	}
	seqs := make([]string, 0, len(sequences))
	seen := make(map[string]bool, len(sequences))
	for _, s := range sequences {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		seqs = append(seqs, s)
	}
	if len(seqs) == 0 {
		return nil, invalidf(op, "%s requires at least one sequence", PeptideList)
	}

	match := "MATCH (p:Peptide)\nWHERE p.sequence IN $" + paramSequences + "\nWITH collect(p) AS found"
	return &Query{
		Kind:   PeptideList,
		Shape:  shape,
		Cypher: fullQuery(match, "found", "found", WhitelistFor(PeptideList)),
		Params: map[string]any{paramSequences: seqs},
	}, nil
}

func checkShape(op string, kind Kind, shape Shape) error {
	for _, s := range supportedShapes[kind] {
		if s == shape {
			return nil
		}
	}
	return invalidf(op, "%s does not support the %s shape", kind, shape)
}

// fullQuery expands start (a node or a list of nodes) and returns the anchors
// next to the collected nodes and relationships.
func fullQuery(match, start, anchorsExpr string, w Whitelist) string {
	return match + "\n" +
		"CALL apoc.path.subgraphAll(" + start + ", {relationshipFilter: '" + w.Filter() + "'})\n" +
		"YIELD nodes, relationships\n" +
		"RETURN " + anchorsExpr + " AS " + colAnchors + ", nodes AS " + colNodes + ", relationships AS " + colRelationships
}

// compactQuery expands start and lets the store serialize and gzip the
// distinct relationships as [startProps, type, endProps, relProps] tuples.
// subgraphAll yields every relationship between the collected nodes, so types
// outside the whitelist are filtered out before serialization.
// Aggregating without grouping keys keeps one row even when nothing matched.
func compactQuery(match, start string, w Whitelist) string {
	return match + "\n" +
		"CALL apoc.path.subgraphAll(" + start + ", {relationshipFilter: '" + w.Filter() + "'})\n" +
		"YIELD relationships\n" +
		"UNWIND relationships AS r\n" +
		"WITH DISTINCT r\n" +
		"WHERE type(r) IN " + w.typeList() + "\n" +
		"WITH collect([properties(startNode(r)), type(r), properties(endNode(r)), properties(r)]) AS rels\n" +
		"RETURN apoc.util.compress(apoc.convert.toJson(rels), {compression: 'GZIP'}) AS " + colRelationships
}
