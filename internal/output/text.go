package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-amr/internal/report"
)

const textWidth = 80

const (
	coverageFormat = "%s %8s %8s\n"
	mutationFormat = "%-15s %-18s %-18s %-18s %-10s\n"
	deletionFormat = "%-30s %-10s\n"
	segmentFormat  = "%-12s %-6s %-6s %s\n"
)

// RenderText writes the plain-text report.
func RenderText(w io.Writer, doc *report.Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n\n", center(doc.Title, textWidth))
	fmt.Fprintf(bw, "Run Date: %s\n", doc.Date)
	fmt.Fprintf(bw, "Pipeline: %s %s\n\n", doc.Pipeline.Name, doc.Pipeline.Version)
	fmt.Fprintf(bw, "Sample ID: %s\n", doc.SampleID)
	fmt.Fprintf(bw, "Lineage: %s(%s)\n", doc.Lineage.Code, doc.Lineage.Name)

	writeCoverage(bw, "Coverage", doc.Coverage.Genes)
	writeCoverage(bw, "Coverage Gaps", doc.CoverageGaps.Genes)

	fmt.Fprint(bw, "\nDeletions:\n")
	if len(doc.Deletions.Loci) == 0 {
		fmt.Fprint(bw, "     None\n")
	} else {
		fmt.Fprintf(bw, deletionFormat, "gene", "type")
		for _, d := range doc.Deletions.Loci {
			fmt.Fprintf(bw, deletionFormat, d.Name, d.Type)
		}
	}

	fmt.Fprint(bw, "\nResistance List:\n")
	fmt.Fprintf(bw, mutationFormat, "gene", "nucleotide change", "amino acid change", "drug resistance", "confidence")
	for _, row := range doc.MutationRows() {
		fmt.Fprintf(bw, mutationFormat, row.Gene, row.NucChange, row.AAChange, row.Drug, row.Confidence)
	}

	fmt.Fprint(bw, "\nLow Quality Segments:\n")
	if len(doc.LowQuality.Segments) == 0 {
		fmt.Fprint(bw, "     None\n")
	} else {
		fmt.Fprintf(bw, segmentFormat, "position", "ref", "alt", "detail")
		for _, s := range doc.LowQuality.Segments {
			fmt.Fprintf(bw, segmentFormat, s.RefPos, s.Ref, s.Alt, s.QualDetail)
		}
	}

	return bw.Flush()
}

func writeCoverage(w io.Writer, heading string, entries []report.CoverageEntry) {
	fmt.Fprintf(w, "\n%s:\n", heading)
	fmt.Fprintf(w, coverageFormat, center("region", 60), "depth", "percent")
	for _, e := range entries {
		fmt.Fprintf(w, coverageFormat, center(e.Name, 60), e.Depth, e.Percent)
	}
}

// center pads s with spaces to width, putting any odd space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
