package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-amr/internal/report"
)

// TabWriter writes the flattened resistance list in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Sample",
			"Gene",
			"Nucleotide_change",
			"Amino_acid_change",
			"Drug",
			"Confidence",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single resistance row. Empty values are written as "-".
func (tw *TabWriter) Write(sampleID string, row report.MutationRow) error {
	values := []string{
		sampleID,
		row.Gene,
		row.NucChange,
		row.AAChange,
		row.Drug,
		row.Confidence,
	}
	for i, v := range values {
		if v == "" {
			values[i] = "-"
		}
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// RenderTSV writes the report's resistance list, one row per drug call.
func RenderTSV(w io.Writer, doc *report.Document) error {
	tw := NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range doc.MutationRows() {
		if err := tw.Write(doc.SampleID, row); err != nil {
			return err
		}
	}
	return tw.Flush()
}
