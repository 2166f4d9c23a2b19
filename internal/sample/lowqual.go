package sample

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-amr/internal/table"
)

const lowQualFields = 5

// Segment is a sequence segment flagged as low quality.
type Segment struct {
	SampleID   string
	RefPos     string
	Ref        string
	Alt        string
	QualDetail string
}

// LoadLowQuals reads the low-quality segments reported for a sample.
// The file may hold rows for several samples; only rows whose first column
// equals the sample ID are returned, in file order.
func LoadLowQuals(l Layout) ([]Segment, error) {
	r, err := table.Open(l.LowQuals(), table.Tab)
	if err != nil {
		return nil, fmt.Errorf("load low quality segments for %s: %w", l.SampleID, err)
	}
	defer r.Close()

	return readLowQuals(r, l.SampleID)
}

// ParseLowQuals parses a low-quality segment table from a reader, keeping
// rows for sampleID.
func ParseLowQuals(rd io.Reader, sampleID string) ([]Segment, error) {
	return readLowQuals(table.NewReader(rd, "low quals", table.Tab), sampleID)
}

func readLowQuals(r *table.Reader, sampleID string) ([]Segment, error) {
	var segments []Segment
	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if table.Field(fields, 0) != sampleID {
			continue
		}
		if err := r.Require(fields, lowQualFields); err != nil {
			return nil, err
		}
		segments = append(segments, Segment{
			SampleID:   table.Field(fields, 0),
			RefPos:     table.Field(fields, 1),
			Ref:        table.Field(fields, 2),
			Alt:        table.Field(fields, 3),
			QualDetail: table.Field(fields, 4),
		})
	}
	return segments, nil
}
