// Package resistance cross-references a sample's observed mutations against
// the graded reference catalog and groups the resulting drug calls by gene
// and nucleotide change.
package resistance

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/mutation"
)

// DrugCall is a drug the sample is predicted to resist, with its confidence.
type DrugCall struct {
	Drug       string
	Confidence string
}

// NucChangeGroup collects the drug calls for one nucleotide change. DrugCalls
// is empty, never nil, when the change has no reference match.
type NucChangeGroup struct {
	NucChange  string
	AAChange   string
	RefPos     string
	RefNuc     string
	AltNuc     string
	Annotation string
	CodonPos   string
	DrugCalls  []DrugCall
}

// Group is the set of nucleotide changes observed in one gene.
type Group struct {
	Gene    string
	Changes []NucChangeGroup
}

// Matcher matches observed mutations against an indexed reference catalog.
type Matcher struct {
	index      map[mutation.Key][]DrugCall
	keepSingle bool
	logger     *zap.Logger
}

// NewMatcher indexes the reference catalog by (gene, nucleotide change).
// Each key keeps every reference row in catalog order.
func NewMatcher(reference []mutation.GradedMutation) *Matcher {
	index := make(map[mutation.Key][]DrugCall, len(reference))
	for _, gm := range reference {
		k := gm.Key()
		index[k] = append(index[k], DrugCall{
			Drug:       gm.Drug,
			Confidence: Confidence(gm.LikelihoodRatio),
		})
	}
	return &Matcher{
		index:  index,
		logger: zap.NewNop(),
	}
}

// SetKeepSingleChangeGenes controls whether a gene with a single nucleotide
// change is reported. By default such genes are dropped.
func (m *Matcher) SetKeepSingleChangeGenes(keep bool) {
	m.keepSingle = keep
}

// SetLogger sets the logger for dropped-gene messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Lookup returns the drug calls indexed for key, in catalog order.
func (m *Matcher) Lookup(k mutation.Key) []DrugCall {
	return m.index[k]
}

// Match groups observed mutations by gene and then by nucleotide change,
// attaching one drug call per matching reference row. Observed mutations are
// expected in sorted order; first-appearance order of genes and of changes
// within a gene is preserved.
func (m *Matcher) Match(observed []mutation.ObservedMutation) []Group {
	var groups []Group
	var current *Group

	flush := func() {
		if current == nil {
			return
		}
		if len(current.Changes) > 1 || m.keepSingle {
			groups = append(groups, *current)
		} else {
			m.logger.Info("dropping gene with a single nucleotide change",
				zap.String("gene", current.Gene),
				zap.String("nuc_change", current.Changes[0].NucChange))
		}
		current = nil
	}

	for _, om := range observed {
		if current == nil || current.Gene != om.Gene {
			flush()
			current = &Group{Gene: om.Gene}
		}

		n := len(current.Changes)
		if n == 0 || current.Changes[n-1].NucChange != om.NucChange {
			current.Changes = append(current.Changes, NucChangeGroup{
				NucChange:  om.NucChange,
				AAChange:   om.AAChange,
				RefPos:     om.RefPos,
				RefNuc:     om.RefNuc,
				AltNuc:     om.AltNuc,
				Annotation: om.Annotation,
				CodonPos:   om.CodonPos,
				DrugCalls:  []DrugCall{},
			})
			n++
		}

		last := &current.Changes[n-1]
		last.DrugCalls = append(last.DrugCalls, m.index[om.Key()]...)
	}
	flush()

	m.logger.Debug("matched observed mutations",
		zap.Int("observed", len(observed)),
		zap.Int("genes", len(groups)))
	return groups
}
