// Package coverage loads sequencing coverage metrics and deleted loci for a
// sample, restricted to the genes relevant to resistance reporting.
package coverage

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-amr/internal/sample"
	"github.com/inodb/vibe-amr/internal/table"
)

// GapThreshold is the region coverage percentage below which a region is
// reported as a coverage gap.
const GapThreshold = 90.0

// Region coverage columns (tab-delimited, one header line).
const (
	regionColName    = 3
	regionColDepth   = 5
	regionColPercent = 6
)

// Deleted loci columns (tab-delimited, one header line).
const (
	deletionColType = 8
	deletionColGene = 15
)

// GenesOfInterest is the allow-list of loci relevant to resistance reporting.
type GenesOfInterest map[string]bool

// Contains reports whether gene is in the allow-list.
func (g GenesOfInterest) Contains(gene string) bool {
	return g[gene]
}

// LoadGenesOfInterest reads a comma-delimited list of gene names. The list
// may span several lines.
func LoadGenesOfInterest(path string) (GenesOfInterest, error) {
	r, err := table.Open(path, table.Comma)
	if err != nil {
		return nil, fmt.Errorf("load genes of interest: %w", err)
	}
	defer r.Close()

	return readGenesOfInterest(r)
}

// ParseGenesOfInterest parses a comma-delimited gene list from a reader.
// Blank entries are ignored.
func ParseGenesOfInterest(rd io.Reader) (GenesOfInterest, error) {
	return readGenesOfInterest(table.NewReader(rd, "genes of interest", table.Comma))
}

func readGenesOfInterest(r *table.Reader) (GenesOfInterest, error) {
	goi := make(GenesOfInterest)
	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			return goi, nil
		}
		for i := range fields {
			if g := table.Field(fields, i); g != "" {
				goi[g] = true
			}
		}
	}
}

// Genome holds whole-genome coverage, kept as reported by the pipeline.
type Genome struct {
	Depth   string
	Percent string
}

// Region is the coverage of one named genomic region.
type Region struct {
	Name    string
	Depth   float64
	Percent float64
}

// Deletion is a deleted locus in a gene of interest.
type Deletion struct {
	Gene string
	Type string
}

// Regions is the result of reading the region coverage table.
type Regions struct {
	// Genes holds coverage for genes of interest in first-seen order.
	// A gene listed twice keeps its first position and its last values.
	Genes []Region
	// Gaps holds every region whose percent is below GapThreshold, in file order.
	Gaps []Region
}

// LoadGenome reads the whole-genome depth and percent from the sample's
// coverage summary: two "label:value" lines.
func LoadGenome(l sample.Layout) (Genome, error) {
	r, err := table.Open(l.Coverage(), ":")
	if err != nil {
		return Genome{}, fmt.Errorf("load genome coverage for %s: %w", l.SampleID, err)
	}
	defer r.Close()

	return readGenome(r)
}

// ParseGenome parses a coverage summary from a reader.
func ParseGenome(rd io.Reader) (Genome, error) {
	return readGenome(table.NewReader(rd, "coverage summary", ":"))
}

func readGenome(r *table.Reader) (Genome, error) {
	var values [2]string
	for i := range values {
		fields, err := r.Next()
		if err != nil {
			return Genome{}, err
		}
		if fields == nil {
			return Genome{}, r.Errorf("expected depth and percent lines")
		}
		if err := r.Require(fields, 2); err != nil {
			return Genome{}, err
		}
		values[i] = table.Field(fields, 1)
	}
	return Genome{Depth: values[0], Percent: values[1]}, nil
}

// LoadRegions reads per-region coverage, collecting genes of interest and
// coverage gaps.
func LoadRegions(l sample.Layout, goi GenesOfInterest) (Regions, error) {
	r, err := table.Open(l.RegionCoverage(), table.Tab)
	if err != nil {
		return Regions{}, fmt.Errorf("load region coverage for %s: %w", l.SampleID, err)
	}
	defer r.Close()

	return readRegions(r, goi)
}

// ParseRegions parses a region coverage table from a reader.
func ParseRegions(rd io.Reader, goi GenesOfInterest) (Regions, error) {
	return readRegions(table.NewReader(rd, "region coverage", table.Tab), goi)
}

func readRegions(r *table.Reader, goi GenesOfInterest) (Regions, error) {
	if err := r.Skip(1); err != nil {
		return Regions{}, err
	}

	var out Regions
	index := make(map[string]int)
	for {
		fields, err := r.Next()
		if err != nil {
			return Regions{}, err
		}
		if fields == nil {
			break
		}
		if err := r.Require(fields, regionColPercent+1); err != nil {
			return Regions{}, err
		}

		depth, err := r.Float(fields, regionColDepth, "depth")
		if err != nil {
			return Regions{}, err
		}
		percent, err := r.Float(fields, regionColPercent, "coverage percent")
		if err != nil {
			return Regions{}, err
		}
		region := Region{
			Name:    table.Field(fields, regionColName),
			Depth:   depth,
			Percent: percent,
		}

		if goi.Contains(region.Name) {
			if i, ok := index[region.Name]; ok {
				out.Genes[i] = region
			} else {
				index[region.Name] = len(out.Genes)
				out.Genes = append(out.Genes, region)
			}
		}
		if region.Percent < GapThreshold {
			out.Gaps = append(out.Gaps, region)
		}
	}
	return out, nil
}

// LoadDeletions reads deleted loci restricted to genes of interest.
func LoadDeletions(l sample.Layout, goi GenesOfInterest) ([]Deletion, error) {
	r, err := table.Open(l.Deletions(), table.Tab)
	if err != nil {
		return nil, fmt.Errorf("load deletions for %s: %w", l.SampleID, err)
	}
	defer r.Close()

	return readDeletions(r, goi)
}

// ParseDeletions parses a deleted loci table from a reader.
func ParseDeletions(rd io.Reader, goi GenesOfInterest) ([]Deletion, error) {
	return readDeletions(table.NewReader(rd, "deleted loci", table.Tab), goi)
}

func readDeletions(r *table.Reader, goi GenesOfInterest) ([]Deletion, error) {
	if err := r.Skip(1); err != nil {
		return nil, err
	}

	var deletions []Deletion
	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if err := r.Require(fields, deletionColGene+1); err != nil {
			return nil, err
		}
		gene := table.Field(fields, deletionColGene)
		if !goi.Contains(gene) {
			continue
		}
		deletions = append(deletions, Deletion{
			Gene: gene,
			Type: table.Field(fields, deletionColType),
		})
	}
	return deletions, nil
}
