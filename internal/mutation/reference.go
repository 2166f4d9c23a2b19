package mutation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/inodb/vibe-amr/internal/table"
)

// Reference catalog column layout (comma-delimited, two header lines).
const (
	refColDrug       = 0
	refColGene       = 1
	refColNucChange  = 6
	refColAAChange   = 7
	refColLikelihood = 17
	refColPValue     = 22

	refHeaderLines = 2
	refMinFields   = refColPValue + 1
)

// LoadReference loads the graded mutation catalog from a CSV file.
// Rows whose p-value is not below SignificanceThreshold are discarded.
// Any malformed row aborts the load; partial catalogs are never returned.
func LoadReference(path string) ([]GradedMutation, error) {
	r, err := table.Open(path, table.Comma)
	if err != nil {
		return nil, fmt.Errorf("load reference mutations: %w", err)
	}
	defer r.Close()

	return readReference(r)
}

// ParseReference parses a graded mutation catalog from a reader.
func ParseReference(rd io.Reader) ([]GradedMutation, error) {
	return readReference(table.NewReader(rd, "reference", table.Comma))
}

func readReference(r *table.Reader) ([]GradedMutation, error) {
	if err := r.Skip(refHeaderLines); err != nil {
		return nil, err
	}

	var mutations []GradedMutation
	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if err := r.Require(fields, refMinFields); err != nil {
			return nil, err
		}

		pValue, err := r.Float(fields, refColPValue, "p-value")
		if err != nil {
			return nil, err
		}
		likelihood, err := parseLikelihood(table.Field(fields, refColLikelihood))
		if err != nil {
			return nil, r.Errorf("invalid likelihood ratio: %q", table.Field(fields, refColLikelihood))
		}

		// NaN p-values fail this comparison and are dropped with the rest.
		if !(pValue < SignificanceThreshold) {
			continue
		}

		mutations = append(mutations, GradedMutation{
			Gene:            table.Field(fields, refColGene),
			NucChange:       table.Field(fields, refColNucChange),
			AAChange:        table.Field(fields, refColAAChange),
			Drug:            table.Field(fields, refColDrug),
			PValue:          pValue,
			LikelihoodRatio: likelihood,
		})
	}

	SortGraded(mutations)
	return mutations, nil
}

// parseLikelihood parses a likelihood ratio, mapping +Inf and values too
// large for a float64 to InfiniteLikelihood. NaN and -Inf are rejected.
func parseLikelihood(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && math.IsInf(v, 1) {
			return InfiniteLikelihood, nil
		}
		return 0, err
	}
	switch {
	case math.IsInf(v, 1):
		return InfiniteLikelihood, nil
	case math.IsInf(v, -1), math.IsNaN(v):
		return 0, fmt.Errorf("likelihood ratio %q is not a finite number", raw)
	}
	return v, nil
}
