// Package mutation loads graded reference mutations and the mutations
// observed in a sequenced isolate.
package mutation

import (
	"cmp"
	"slices"
)

// InfiniteLikelihood replaces infinite or overflowing likelihood ratios so
// confidence tiers only ever compare finite numbers.
const InfiniteLikelihood = 9999.0

// SignificanceThreshold is the p-value a graded mutation must fall below to
// be kept in the reference set.
const SignificanceThreshold = 0.05

// Key identifies a mutation within a gene.
type Key struct {
	Gene      string
	NucChange string
}

// GradedMutation is one row of the graded resistance catalog.
type GradedMutation struct {
	Gene            string
	NucChange       string // e.g. "c.761A>G"
	AAChange        string // e.g. "p.Asp327Gly"
	Drug            string
	PValue          float64
	LikelihoodRatio float64
}

// Key returns the (gene, nucleotide change) lookup key.
func (m GradedMutation) Key() Key {
	return Key{Gene: m.Gene, NucChange: m.NucChange}
}

// CompareGraded orders graded mutations by gene, nucleotide change,
// amino acid change, drug, p-value and likelihood ratio.
func CompareGraded(a, b GradedMutation) int {
	return cmp.Or(
		cmp.Compare(a.Gene, b.Gene),
		cmp.Compare(a.NucChange, b.NucChange),
		cmp.Compare(a.AAChange, b.AAChange),
		cmp.Compare(a.Drug, b.Drug),
		cmp.Compare(a.PValue, b.PValue),
		cmp.Compare(a.LikelihoodRatio, b.LikelihoodRatio),
	)
}

// ObservedMutation is a variant call reported for an isolate.
// Positional fields are kept verbatim as text.
type ObservedMutation struct {
	Gene       string
	NucChange  string
	AAChange   string
	RefPos     string
	RefNuc     string
	AltNuc     string
	Annotation string
	CodonPos   string
}

// Key returns the (gene, nucleotide change) lookup key.
func (m ObservedMutation) Key() Key {
	return Key{Gene: m.Gene, NucChange: m.NucChange}
}

// CompareObserved orders observed mutations field by field in declaration
// order, which groups them by gene and then by nucleotide change.
func CompareObserved(a, b ObservedMutation) int {
	return cmp.Or(
		cmp.Compare(a.Gene, b.Gene),
		cmp.Compare(a.NucChange, b.NucChange),
		cmp.Compare(a.AAChange, b.AAChange),
		cmp.Compare(a.RefPos, b.RefPos),
		cmp.Compare(a.RefNuc, b.RefNuc),
		cmp.Compare(a.AltNuc, b.AltNuc),
		cmp.Compare(a.Annotation, b.Annotation),
		cmp.Compare(a.CodonPos, b.CodonPos),
	)
}

// SortGraded sorts graded mutations in place using CompareGraded.
func SortGraded(ms []GradedMutation) {
	slices.SortStableFunc(ms, CompareGraded)
}

// SortObserved sorts observed mutations in place using CompareObserved.
func SortObserved(ms []ObservedMutation) {
	slices.SortStableFunc(ms, CompareObserved)
}
