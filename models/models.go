package models

import "encoding/json"

// Gene is a Gene node of the knowledge graph. The graph tags map fields to
// node properties for the generic repository.
type Gene struct {
	ID      string `graph:"pk,property:id" json:"id"`
	Name    string `graph:"property:name" json:"name"`
	Biotype string `graph:"property:biotype" json:"biotype"`
	Version int    `graph:"property:version" json:"version"`
	Chrom   string `graph:"property:chrom" json:"chrom"`
	Strand  string `graph:"property:strand" json:"strand"`
	BpFrom  int64  `graph:"property:bp_from" json:"bp_from"`
	BpTo    int64  `graph:"property:bp_to" json:"bp_to"`
}

// CountBucket is one bar of a histogram.
type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Overview summarizes the dataset. It encodes as a three element array:
// samples per project accession, samples per tissue, and every gene.
// Genes are full Gene nodes and encode as their property maps.
type Overview struct {
	Projects []CountBucket
	Tissues  []CountBucket
	Genes    []*Node
}

// MarshalJSON encodes the overview as [projects, tissues, genes].
func (o *Overview) MarshalJSON() ([]byte, error) {
	projects, tissues, genes := o.Projects, o.Tissues, o.Genes
	if projects == nil {
		projects = []CountBucket{}
	}
	if tissues == nil {
		tissues = []CountBucket{}
	}
	if genes == nil {
		genes = []*Node{}
	}
	return json.Marshal([]any{projects, tissues, genes})
}
