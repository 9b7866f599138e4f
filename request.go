package proteograph

import (
	"fmt"
	"strings"
)

// Search type names as sent by the front-end.
const (
	TypeGeneName     = "Gene Name"
	TypeGeneID       = "Gene ID"
	TypeProteoform   = "Proteoform"
	TypeProteoformID = "Proteoform ID"
	TypePeptides     = "Peptides"
)

// PeptideSeparator splits the value of a Peptides search into sequences.
const PeptideSeparator = ";"

var typeKinds = map[string]Kind{
	TypeGeneName:     GeneByName,
	TypeGeneID:       GeneByID,
	TypeProteoform:   ProteoformPeptides,
	TypeProteoformID: ProteoformByID,
	TypePeptides:     PeptideList,
}

// Request is a validated search: a kind, the shape to answer with and the key.
// Key is used by identifier kinds, Sequences by PeptideList.
type Request struct {
	Kind      Kind
	Shape     Shape
	Key       string
	Sequences []string
}

// ParseRequest validates the raw fields of a search request. An unknown search
// type yields ErrUnknownSearchType; an empty value or an unsupported shape
// yields ErrInvalidRequest.
func ParseRequest(searchType, value, shape string) (Request, error) {
	const op = "parse request"
	kind, ok := typeKinds[strings.TrimSpace(searchType)]
	if !ok {
		return Request{}, newSearchError(ClassUnknownKind, op, fmt.Errorf("%w: %q", ErrUnknownSearchType, searchType))
	}

	sh, explicit, err := ParseShape(shape)
	if err != nil {
		return Request{}, err
	}
	if !explicit {
		sh = DefaultShape(kind)
	}
	if err := checkShape(op, kind, sh); err != nil {
		return Request{}, err
	}

	req := Request{Kind: kind, Shape: sh}
	if kind == PeptideList {
		for _, seq := range strings.Split(value, PeptideSeparator) {
			if seq = strings.TrimSpace(seq); seq != "" {
				req.Sequences = append(req.Sequences, seq)
			}
		}
		if len(req.Sequences) == 0 {
			return Request{}, invalidf(op, "no peptide sequence in %q", value)
		}
		return req, nil
	}

	// Identifier keys are matched exactly, surrounding whitespace included.
	req.Key = value
	if strings.TrimSpace(value) == "" {
		return Request{}, invalidf(op, "%s search requires a value", searchType)
	}
	return req, nil
}

// Query builds the traversal for the request.
func (r Request) Query() (*Query, error) {
	if r.Kind == PeptideList {
		return BuildPeptideList(r.Shape, r.Sequences)
	}
	return Build(r.Kind, r.Shape, r.Key)
}
