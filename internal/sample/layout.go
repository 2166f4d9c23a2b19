// Package sample locates and reads the per-sample pipeline outputs that are
// not variant calls: lineage assignment and low-quality segments.
package sample

import "path/filepath"

// Layout resolves the file names the pipeline writes for one sample.
// Every file lives under <dataDir>/<sampleID>/.
type Layout struct {
	DataDir  string
	SampleID string
}

// NewLayout creates a Layout for the given data directory and sample.
func NewLayout(dataDir, sampleID string) Layout {
	return Layout{DataDir: dataDir, SampleID: sampleID}
}

// Dir returns the sample's output directory.
func (l Layout) Dir() string {
	return filepath.Join(l.DataDir, l.SampleID)
}

func (l Layout) file(suffix string) string {
	return filepath.Join(l.Dir(), l.SampleID+suffix)
}

// Annotation returns the resistance annotation table.
func (l Layout) Annotation() string { return l.file("_Resistance_Final_annotation.txt") }

// Coverage returns the whole-genome coverage summary.
func (l Layout) Coverage() string { return l.file("_Coverage.txt") }

// RegionCoverage returns the per-region coverage table.
func (l Layout) RegionCoverage() string { return l.file("_genome_region_coverage.txt") }

// Deletions returns the deleted loci table.
func (l Layout) Deletions() string { return l.file("_deleted_loci.txt") }

// Lineage returns the lineage report.
func (l Layout) Lineage() string { return l.file(".lineage_report.txt") }

// LowQuals returns the low-quality segment table. Unlike the other files its
// name does not include the sample ID.
func (l Layout) LowQuals() string { return filepath.Join(l.Dir(), "low_quals.txt") }
