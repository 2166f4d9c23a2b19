package mutation

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-amr/internal/sample"
	"github.com/inodb/vibe-amr/internal/table"
)

// Isolate annotation column layout (tab-delimited, one header line).
const (
	isoColRefPos     = 2
	isoColRefNuc     = 3
	isoColAltNuc     = 4
	isoColAnnotation = 8
	isoColNucChange  = 10
	isoColAAChange   = 12
	isoColCodonPos   = 15
	isoColGene       = 16

	isoMinFields = isoColGene + 1

	// Nucleotide and amino acid changes carry a two-character notation
	// prefix ("c.", "p.") that is not part of the change itself.
	changePrefixLen = 2
)

// LoadIsolate loads the observed mutations for a sample from its pipeline
// annotation file, sorted with CompareObserved.
func LoadIsolate(dataDir, sampleID string) ([]ObservedMutation, error) {
	path := sample.NewLayout(dataDir, sampleID).Annotation()
	r, err := table.Open(path, table.Tab)
	if err != nil {
		return nil, fmt.Errorf("load isolate mutations for %s: %w", sampleID, err)
	}
	defer r.Close()

	return readIsolate(r)
}

// ParseIsolate parses an isolate annotation table from a reader.
func ParseIsolate(rd io.Reader) ([]ObservedMutation, error) {
	return readIsolate(table.NewReader(rd, "isolate annotation", table.Tab))
}

func readIsolate(r *table.Reader) ([]ObservedMutation, error) {
	if err := r.Skip(1); err != nil {
		return nil, err
	}

	var mutations []ObservedMutation
	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if err := r.Require(fields, isoMinFields); err != nil {
			return nil, err
		}

		mutations = append(mutations, ObservedMutation{
			Gene:       table.Field(fields, isoColGene),
			NucChange:  stripChangePrefix(table.Field(fields, isoColNucChange)),
			AAChange:   stripChangePrefix(table.Field(fields, isoColAAChange)),
			RefPos:     table.Field(fields, isoColRefPos),
			RefNuc:     table.Field(fields, isoColRefNuc),
			AltNuc:     table.Field(fields, isoColAltNuc),
			Annotation: table.Field(fields, isoColAnnotation),
			CodonPos:   table.Field(fields, isoColCodonPos),
		})
	}

	SortObserved(mutations)
	return mutations, nil
}

func stripChangePrefix(s string) string {
	if len(s) < changePrefixLen {
		return ""
	}
	return s[changePrefixLen:]
}
