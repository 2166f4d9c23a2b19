package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/report"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(sampleID string) *report.Document {
	return &report.Document{
		Title:    "Sample Surveillance Report",
		SampleID: sampleID,
		Date:     "2024-03-08 14:05:09.123456",
		Pipeline: report.Pipeline{Name: "UVP", Version: "1.1"},
		Lineage:  report.Lineage{Code: "lineage4.9", Name: "Euro-American"},
		Mutations: report.MutationSection{SNPs: []report.SNP{
			{Gene: "rpoB", NucChanges: []report.NucChange{
				{Name: "c.1349C>T", AAChange: "p.Ser450Leu", Resistances: []report.Resistance{
					{Drug: "RIF", Confidence: "High"},
					{Drug: "RFB", Confidence: "Medium"},
				}},
				{Name: "c.1A>G", AAChange: "p.Met1Val"},
			}},
			{Gene: "katG", NucChanges: []report.NucChange{
				{Name: "c.944G>C", AAChange: "p.Ser315Thr", Resistances: []report.Resistance{
					{Drug: "INH", Confidence: "High"},
				}},
			}},
		}},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archive.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.duckdb")
	_, err := OpenExisting(path)
	assert.ErrorIs(t, err, ErrNoArchive)
	assert.NoFileExists(t, path)

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenExisting(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestWriteReport_Runs(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	ref := FileFingerprint{Path: "/ref/catalog.csv", Size: 1234, ModTime: base}
	id1, err := s.WriteReport(ctx, testReport("S81"), ref)
	require.NoError(t, err)
	_, err = uuid.Parse(id1)
	assert.NoError(t, err)

	id2, err := s.WriteReport(ctx, testReport("S82"), FileFingerprint{})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	runs, err := s.Runs(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id1, runs[0].ID)
	assert.Equal(t, "S81", runs[0].SampleID)
	assert.Equal(t, "2024-03-08 14:05:09.123456", runs[0].ReportDate)
	assert.Equal(t, "lineage4.9", runs[0].LineageCode)
	assert.Equal(t, int64(2), runs[0].Genes)
	assert.Equal(t, int64(3), runs[0].DrugCalls)
	assert.Equal(t, "/ref/catalog.csv", runs[0].Reference.Path)
	assert.Equal(t, int64(1234), runs[0].Reference.Size)
	assert.Equal(t, "", runs[1].Reference.Path)

	runs, err = s.Runs(ctx, "S82")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id2, runs[0].ID)
}

func TestSearch(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	runID, err := s.WriteReport(ctx, testReport("S81"), FileFingerprint{})
	require.NoError(t, err)

	calls, err := s.SearchByGene(ctx, "rpoB")
	require.NoError(t, err)
	require.Len(t, calls, 3)
	assert.Equal(t, Call{RunID: runID, SampleID: "S81", Gene: "rpoB", NucChange: "c.1349C>T",
		AAChange: "p.Ser450Leu", Drug: "RIF", Confidence: "High"}, calls[0])
	assert.Equal(t, "RFB", calls[1].Drug)
	// Ungraded change is archived without a drug.
	assert.Equal(t, "", calls[2].Drug)

	calls, err = s.SearchByDrug(ctx, "INH")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "katG", calls[0].Gene)

	calls, err = s.SearchByGeneAndDrug(ctx, "rpoB", "RFB")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "Medium", calls[0].Confidence)

	calls, err = s.Calls(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, calls, 4)

	calls, err = s.SearchByGene(ctx, "gyrA")
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestWriteReport_NoMutations(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	doc := &report.Document{SampleID: "S1"}
	runID, err := s.WriteReport(ctx, doc, FileFingerprint{})
	require.NoError(t, err)

	calls, err := s.Calls(ctx, runID)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.csv")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(5), fp.Size)
	assert.True(t, fp.Matches())

	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))
	assert.False(t, fp.Matches())

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
