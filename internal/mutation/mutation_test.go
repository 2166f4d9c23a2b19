package mutation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/sample"
	"github.com/inodb/vibe-amr/internal/table"
)

// refRow builds a 23-column reference CSV row with the fields the loader reads.
func refRow(drug, gene, nuc, aa, lr, p string) string {
	cols := make([]string, 23)
	for i := range cols {
		cols[i] = "x"
	}
	cols[refColDrug] = drug
	cols[refColGene] = gene
	cols[refColNucChange] = nuc
	cols[refColAAChange] = aa
	cols[refColLikelihood] = lr
	cols[refColPValue] = p
	return strings.Join(cols, ",") + "\n"
}

const refHeader = "title line\ncolumn,names\n"

func TestParseReference_FiltersBySignificance(t *testing.T) {
	input := refHeader +
		refRow("RIF", "rpoB", "c.1349C>T", "p.Ser450Leu", "25.1", "0.0001") +
		refRow("INH", "katG", "c.944G>C", "p.Ser315Thr", "12.0", "0.05") +
		refRow("EMB", "embB", "c.916A>G", "p.Met306Val", "4.0", "0.2") +
		refRow("INH", "rpoB", "c.761A>G", "p.Asp327Gly", "12.0", "0.01")

	muts, err := ParseReference(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, muts, 2)

	for _, m := range muts {
		assert.Less(t, m.PValue, SignificanceThreshold)
	}

	// Sorted by gene then nucleotide change.
	assert.Equal(t, "c.1349C>T", muts[0].NucChange)
	assert.Equal(t, "c.761A>G", muts[1].NucChange)
	assert.Equal(t, GradedMutation{
		Gene: "rpoB", NucChange: "c.761A>G", AAChange: "p.Asp327Gly",
		Drug: "INH", PValue: 0.01, LikelihoodRatio: 12.0,
	}, muts[1])
}

func TestParseReference_InfiniteLikelihood(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"inf", InfiniteLikelihood},
		{"Infinity", InfiniteLikelihood},
		{"1e400", InfiniteLikelihood},
		{"7.5", 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			input := refHeader + refRow("RIF", "rpoB", "c.1A>G", "p.M1V", tt.raw, "0.001")
			muts, err := ParseReference(strings.NewReader(input))
			require.NoError(t, err)
			require.Len(t, muts, 1)
			assert.Equal(t, tt.want, muts[0].LikelihoodRatio)
		})
	}
}

func TestParseReference_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad p-value", refRow("RIF", "rpoB", "c.1A>G", "p.M1V", "3.0", "abc")},
		{"bad likelihood", refRow("RIF", "rpoB", "c.1A>G", "p.M1V", "high", "0.01")},
		{"nan likelihood", refRow("RIF", "rpoB", "c.1A>G", "p.M1V", "nan", "0.01")},
		{"negative infinity", refRow("RIF", "rpoB", "c.1A>G", "p.M1V", "-inf", "0.01")},
		{"too few columns", "RIF,rpoB,c.1A>G\n"},
		// A bad row after a good one still aborts the whole load.
		{"late failure", refRow("RIF", "rpoB", "c.1A>G", "p.M1V", "3.0", "0.01") + "RIF,short\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			muts, err := ParseReference(strings.NewReader(refHeader + tt.input))
			assert.ErrorIs(t, err, table.ErrMalformedRecord)
			assert.Nil(t, muts)
		})
	}
}

func TestParseReference_HeaderOnly(t *testing.T) {
	muts, err := ParseReference(strings.NewReader(refHeader))
	require.NoError(t, err)
	assert.Empty(t, muts)
}

func TestLoadReference_MissingFile(t *testing.T) {
	_, err := LoadReference(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, table.ErrMissingFile)
}

// isoRow builds a 17-column isolate annotation row.
func isoRow(gene, nuc, aa, refPos, refNuc, altNuc, annotation, codonPos string) string {
	cols := make([]string, 17)
	for i := range cols {
		cols[i] = "."
	}
	cols[isoColGene] = gene
	cols[isoColNucChange] = nuc
	cols[isoColAAChange] = aa
	cols[isoColRefPos] = refPos
	cols[isoColRefNuc] = refNuc
	cols[isoColAltNuc] = altNuc
	cols[isoColAnnotation] = annotation
	cols[isoColCodonPos] = codonPos
	return strings.Join(cols, "\t") + "\n"
}

func TestParseIsolate(t *testing.T) {
	input := "header\n" +
		isoRow("rpoB", "n.c.1349C>T", "n.p.Ser450Leu", "761155", "C", "T", "missense_variant", "2") +
		isoRow("katG", "n.c.944G>C", "n.p.Ser315Thr", "2155168", "C", "G", "missense_variant", "2") +
		isoRow("gyrA", "n.c.61G>T", "n.p.Glu21Gln", "7362", "G", "C", "missense_variant", "1")

	muts, err := ParseIsolate(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, muts, 3)

	genes := []string{muts[0].Gene, muts[1].Gene, muts[2].Gene}
	assert.Equal(t, []string{"gyrA", "katG", "rpoB"}, genes)

	assert.Equal(t, ObservedMutation{
		Gene: "rpoB", NucChange: "c.1349C>T", AAChange: "p.Ser450Leu",
		RefPos: "761155", RefNuc: "C", AltNuc: "T",
		Annotation: "missense_variant", CodonPos: "2",
	}, muts[2])
}

func TestParseIsolate_ShortPrefix(t *testing.T) {
	input := "header\n" + isoRow("rpoB", "c", "", "1", "A", "G", "x", "1")
	muts, err := ParseIsolate(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, muts, 1)
	assert.Equal(t, "", muts[0].NucChange)
	assert.Equal(t, "", muts[0].AAChange)
}

func TestParseIsolate_TooFewFields(t *testing.T) {
	input := "header\nrpoB\tc.1A>G\n"
	_, err := ParseIsolate(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrMalformedRecord)

	var pe *table.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestLoadIsolate(t *testing.T) {
	dir := t.TempDir()
	l := sample.NewLayout(dir, "S81")
	require.NoError(t, os.MkdirAll(l.Dir(), 0755))
	content := "header\n" + isoRow("rpoB", "n.c.761A>G", "n.p.Asp327Gly", "760314", "A", "G", "missense_variant", "2")
	require.NoError(t, os.WriteFile(l.Annotation(), []byte(content), 0644))

	muts, err := LoadIsolate(dir, "S81")
	require.NoError(t, err)
	require.Len(t, muts, 1)
	assert.Equal(t, Key{Gene: "rpoB", NucChange: "c.761A>G"}, muts[0].Key())

	_, err = LoadIsolate(dir, "absent")
	assert.ErrorIs(t, err, table.ErrMissingFile)
}

func TestCompareObserved(t *testing.T) {
	a := ObservedMutation{Gene: "rpoB", NucChange: "c.1A>G"}
	b := ObservedMutation{Gene: "rpoB", NucChange: "c.2A>G"}
	c := ObservedMutation{Gene: "rpoB", NucChange: "c.1A>G", AAChange: "p.M1V"}

	assert.Negative(t, CompareObserved(a, b))
	assert.Positive(t, CompareObserved(b, a))
	assert.Negative(t, CompareObserved(a, c))
	assert.Zero(t, CompareObserved(a, a))
}

func TestCompareGraded(t *testing.T) {
	base := GradedMutation{Gene: "katG", NucChange: "c.944G>C", Drug: "INH", PValue: 0.01, LikelihoodRatio: 5}
	byDrug := base
	byDrug.Drug = "ETH"
	byLR := base
	byLR.LikelihoodRatio = 10

	ms := []GradedMutation{byLR, base, byDrug}
	SortGraded(ms)
	assert.Equal(t, []GradedMutation{byDrug, base, byLR}, ms, fmt.Sprint(ms))
}
