package sample

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-amr/internal/table"
)

// Lineage report columns (tab-delimited, one header line, one data row).
const (
	lineageColName = 2
	lineageColCode = 3
)

// Lineage is the lineage assigned to an isolate.
type Lineage struct {
	Code string // e.g. "lineage4.9"
	Name string // e.g. "Euro-American"
}

// LoadLineage reads the lineage assignment for a sample.
func LoadLineage(l Layout) (Lineage, error) {
	r, err := table.Open(l.Lineage(), table.Tab)
	if err != nil {
		return Lineage{}, fmt.Errorf("load lineage for %s: %w", l.SampleID, err)
	}
	defer r.Close()

	return readLineage(r)
}

// ParseLineage parses a lineage report from a reader.
func ParseLineage(rd io.Reader) (Lineage, error) {
	return readLineage(table.NewReader(rd, "lineage report", table.Tab))
}

func readLineage(r *table.Reader) (Lineage, error) {
	if err := r.Skip(1); err != nil {
		return Lineage{}, err
	}
	fields, err := r.Next()
	if err != nil {
		return Lineage{}, err
	}
	if fields == nil {
		return Lineage{}, r.Errorf("no lineage row found")
	}
	if err := r.Require(fields, lineageColCode+1); err != nil {
		return Lineage{}, err
	}
	return Lineage{
		Code: table.Field(fields, lineageColCode),
		Name: table.Field(fields, lineageColName),
	}, nil
}
