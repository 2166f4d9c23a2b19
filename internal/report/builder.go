package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-amr/internal/coverage"
	"github.com/inodb/vibe-amr/internal/resistance"
	"github.com/inodb/vibe-amr/internal/sample"
)

// Defaults used when no option overrides them.
const (
	DefaultTitle           = "Sample Surveillance Report"
	DefaultPipelineName    = "UVP"
	DefaultPipelineVersion = "1.1"
)

// DateLayout is the layout of the report run date.
const DateLayout = "2006-01-02 15:04:05.000000"

// Option configures a Builder.
type Option func(*Builder)

// WithTitle overrides the report title.
func WithTitle(title string) Option {
	return func(b *Builder) { b.doc.Title = title }
}

// WithPipeline overrides the pipeline name and version.
func WithPipeline(name, version string) Option {
	return func(b *Builder) { b.doc.Pipeline = Pipeline{Name: name, Version: version} }
}

// WithClock sets the clock used for the run date.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder assembles a Document section by section. Each call appends in
// input order; calling a method twice appends twice.
type Builder struct {
	doc Document
	now func() time.Time
}

// NewBuilder starts a report for sampleID. The run date is taken once, here.
func NewBuilder(sampleID string, opts ...Option) *Builder {
	b := &Builder{
		doc: Document{
			Title:    DefaultTitle,
			SampleID: sampleID,
			Pipeline: Pipeline{Name: DefaultPipelineName, Version: DefaultPipelineVersion},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.doc.Date = b.now().Format(DateLayout)
	return b
}

// SetLineage records the lineage call.
func (b *Builder) SetLineage(l sample.Lineage) {
	b.doc.Lineage = Lineage{Code: l.Code, Name: l.Name}
}

// AddCoverage appends the whole-genome entry followed by one entry per gene.
func (b *Builder) AddCoverage(genome coverage.Genome, genes []coverage.Region) {
	b.doc.Coverage.Genes = append(b.doc.Coverage.Genes, CoverageEntry{
		Name:    WholeGenome,
		Depth:   genome.Depth,
		Percent: genome.Percent,
	})
	b.doc.Coverage.Genes = append(b.doc.Coverage.Genes, regionEntries(genes)...)
}

// AddCoverageGaps appends regions with insufficient coverage.
func (b *Builder) AddCoverageGaps(gaps []coverage.Region) {
	b.doc.CoverageGaps.Genes = append(b.doc.CoverageGaps.Genes, regionEntries(gaps)...)
}

// AddDeletions appends deleted loci.
func (b *Builder) AddDeletions(deletions []coverage.Deletion) {
	for _, d := range deletions {
		b.doc.Deletions.Loci = append(b.doc.Deletions.Loci, DeletionEntry{Name: d.Gene, Type: d.Type})
	}
}

// AddResistance appends the matcher's gene groups.
func (b *Builder) AddResistance(groups []resistance.Group) {
	for _, g := range groups {
		snp := SNP{Gene: g.Gene}
		for _, c := range g.Changes {
			nc := NucChange{
				Name:       c.NucChange,
				AAChange:   c.AAChange,
				Annotation: c.Annotation,
				CodonPos:   c.CodonPos,
				RefPos:     c.RefPos,
				RefNuc:     c.RefNuc,
				AltNuc:     c.AltNuc,
			}
			for _, dc := range c.DrugCalls {
				nc.Resistances = append(nc.Resistances, Resistance{Drug: dc.Drug, Confidence: dc.Confidence})
			}
			snp.NucChanges = append(snp.NucChanges, nc)
		}
		b.doc.Mutations.SNPs = append(b.doc.Mutations.SNPs, snp)
	}
}

// AddLowQuality appends low-quality segments.
func (b *Builder) AddLowQuality(segments []sample.Segment) {
	for _, s := range segments {
		b.doc.LowQuality.Segments = append(b.doc.LowQuality.Segments, SegmentEntry{
			RefPos:     s.RefPos,
			Ref:        s.Ref,
			Alt:        s.Alt,
			QualDetail: s.QualDetail,
		})
	}
}

// Document returns the assembled report.
func (b *Builder) Document() *Document {
	doc := b.doc
	return &doc
}

func regionEntries(regions []coverage.Region) []CoverageEntry {
	entries := make([]CoverageEntry, 0, len(regions))
	for _, r := range regions {
		entries = append(entries, CoverageEntry{
			Name:    r.Name,
			Depth:   FormatFloat(r.Depth),
			Percent: FormatFloat(r.Percent),
		})
	}
	return entries
}

// FormatFloat formats a coverage figure in shortest form, keeping one
// decimal place for whole numbers (100 is written "100.0"). Exponents below
// -4 or from 16 up switch to exponent form ("1e-05", "1e+16").
func FormatFloat(f float64) string {
	e := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.LastIndexByte(e, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(e[i+1:]); err == nil && f != 0 && (exp < -4 || exp >= 16) {
			return e
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
