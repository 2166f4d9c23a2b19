package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/coverage"
	"github.com/inodb/vibe-amr/internal/resistance"
	"github.com/inodb/vibe-amr/internal/sample"
)

var fixedTime = time.Date(2024, 3, 8, 14, 5, 9, 123456000, time.UTC)

func fixedClock() time.Time { return fixedTime }

func buildSample(opts ...Option) *Document {
	b := NewBuilder("S81", append([]Option{WithClock(fixedClock)}, opts...)...)
	b.SetLineage(sample.Lineage{Code: "lineage4.9", Name: "Euro-American"})
	b.AddCoverage(coverage.Genome{Depth: "152.4", Percent: "99.1"}, []coverage.Region{
		{Name: "rpoB", Depth: 150.2, Percent: 100},
		{Name: "katG", Depth: 80, Percent: 89.5},
	})
	b.AddCoverageGaps([]coverage.Region{{Name: "katG", Depth: 80, Percent: 89.5}})
	b.AddDeletions([]coverage.Deletion{{Gene: "pncA", Type: "partial"}})
	b.AddResistance([]resistance.Group{{
		Gene: "rpoB",
		Changes: []resistance.NucChangeGroup{
			{
				NucChange: "c.1349C>T", AAChange: "p.Ser450Leu",
				RefPos: "761155", RefNuc: "C", AltNuc: "T",
				Annotation: "missense_variant", CodonPos: "2",
				DrugCalls: []resistance.DrugCall{
					{Drug: "RIF", Confidence: resistance.ConfidenceHigh},
					{Drug: "RFB", Confidence: resistance.ConfidenceMedium},
				},
			},
			{
				NucChange: "c.1A>G", AAChange: "p.Met1Val",
				RefPos: "759807", RefNuc: "A", AltNuc: "G",
				Annotation: "start_lost", CodonPos: "1",
				DrugCalls: []resistance.DrugCall{},
			},
		},
	}})
	b.AddLowQuality([]sample.Segment{{SampleID: "S81", RefPos: "1234", Ref: "A", Alt: "G", QualDetail: "low_depth"}})
	return b.Document()
}

func encode(t *testing.T, doc *Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, doc))
	return buf.String()
}

func TestBuilder_Defaults(t *testing.T) {
	doc := NewBuilder("S1", WithClock(fixedClock)).Document()

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.Equal(t, "S1", doc.SampleID)
	assert.Equal(t, "2024-03-08 14:05:09.123456", doc.Date)
	assert.Equal(t, Pipeline{Name: "UVP", Version: "1.1"}, doc.Pipeline)
}

func TestBuilder_Options(t *testing.T) {
	doc := NewBuilder("S1", WithTitle("TB Report"), WithPipeline("MTBseq", "2.0")).Document()
	assert.Equal(t, "TB Report", doc.Title)
	assert.Equal(t, Pipeline{Name: "MTBseq", Version: "2.0"}, doc.Pipeline)
	assert.NotEmpty(t, doc.Date)
}

func TestBuilder_Coverage(t *testing.T) {
	doc := buildSample()

	require.Len(t, doc.Coverage.Genes, 3)
	assert.Equal(t, CoverageEntry{Name: WholeGenome, Depth: "152.4", Percent: "99.1"}, doc.Coverage.Genes[0])
	assert.Equal(t, CoverageEntry{Name: "rpoB", Depth: "150.2", Percent: "100.0"}, doc.Coverage.Genes[1])
	assert.Equal(t, CoverageEntry{Name: "katG", Depth: "80.0", Percent: "89.5"}, doc.CoverageGaps.Genes[0])
}

func TestBuilder_AppendTwiceDuplicates(t *testing.T) {
	b := NewBuilder("S1")
	dels := []coverage.Deletion{{Gene: "katG", Type: "complete"}}
	b.AddDeletions(dels)
	b.AddDeletions(dels)
	assert.Len(t, b.Document().Deletions.Loci, 2)
}

func TestWriteXML_Layout(t *testing.T) {
	out := encode(t, buildSample())

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	order := []string{
		"<surveillance_report>", "<title>", "<sample_id>S81</sample_id>", "<date>",
		"<pipeline>", "<lineage>", "<coverage>", `<gene name="whole_genome">`,
		"<coverage_gaps>", "<deletions>", `<loci name="pncA">`, "<mutations>",
		`<snp gene="rpoB">`, `<nuchange name="c.1349C&gt;T" aachange="p.Ser450Leu">`,
		"<annotation>", "<codonpos>", "<refpos>", "<refnuc>", "<altnuc>",
		"<resistance>", "<drug>RIF</drug>", "<confidence>High</confidence>",
		"<low_quality>", `<segment refpos="1234">`, "<qual_det>low_depth</qual_det>",
	}
	pos := 0
	for _, tag := range order {
		i := strings.Index(out[pos:], tag)
		require.GreaterOrEqual(t, i, 0, "missing or out of order: %s", tag)
		pos += i
	}
}

func TestWriteXML_EmptySectionsPresent(t *testing.T) {
	out := encode(t, NewBuilder("S1", WithClock(fixedClock)).Document())
	for _, tag := range []string{"coverage", "coverage_gaps", "deletions", "mutations", "low_quality"} {
		assert.Contains(t, out, "<"+tag+"></"+tag+">")
	}
}

func TestWriteXML_Deterministic(t *testing.T) {
	a := encode(t, buildSample())
	b := encode(t, buildSample())
	assert.Equal(t, a, b)

	later := encode(t, buildSample(WithClock(func() time.Time { return fixedTime.Add(time.Hour) })))
	aLines := strings.Split(a, "\n")
	lLines := strings.Split(later, "\n")
	require.Equal(t, len(aLines), len(lLines))
	for i := range aLines {
		if strings.Contains(aLines[i], "<date>") {
			assert.NotEqual(t, aLines[i], lLines[i])
			continue
		}
		assert.Equal(t, aLines[i], lLines[i])
	}
}

func TestReadXML_RoundTrip(t *testing.T) {
	doc := buildSample()
	out := encode(t, doc)

	back, err := ReadXML(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, doc.SampleID, back.SampleID)
	assert.Equal(t, doc.Mutations, back.Mutations)
	assert.Equal(t, out, encode(t, back))
}

func TestReadXML_WrongRoot(t *testing.T) {
	_, err := ReadXML(strings.NewReader("<report><title>x</title></report>"))
	assert.Error(t, err)
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", Filename("S81", "xml"))
	require.NoError(t, WriteFile(path, buildSample()))

	_, err := os.Stat(path)
	require.NoError(t, err)

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lineage4.9", doc.Lineage.Code)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMutationRows(t *testing.T) {
	rows := buildSample().MutationRows()
	assert.Equal(t, []MutationRow{
		{Gene: "rpoB", NucChange: "c.1349C>T", AAChange: "p.Ser450Leu", Drug: "RIF", Confidence: "High"},
		{Gene: "rpoB", NucChange: "c.1349C>T", AAChange: "p.Ser450Leu", Drug: "RFB", Confidence: "Medium"},
		{Gene: "rpoB", NucChange: "c.1A>G", AAChange: "p.Met1Val"},
	}, rows)
	assert.Equal(t, 2, buildSample().CalledDrugs())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "100.0", FormatFloat(100))
	assert.Equal(t, "89.99", FormatFloat(89.99))
	assert.Equal(t, "0.0", FormatFloat(0))

	tests := []struct {
		in   float64
		want string
	}{
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{0.000015, "1.5e-05"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e16, "1.5e+16"},
		{-2.5, "-2.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in), "%v", tt.in)
	}
}
