// Package surveil produces one sample's surveillance report end to end:
// load the pipeline tables, match resistance mutations and assemble the
// report document.
package surveil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/archive"
	"github.com/inodb/vibe-amr/internal/config"
	"github.com/inodb/vibe-amr/internal/coverage"
	"github.com/inodb/vibe-amr/internal/mutation"
	"github.com/inodb/vibe-amr/internal/report"
	"github.com/inodb/vibe-amr/internal/resistance"
	"github.com/inodb/vibe-amr/internal/sample"
)

// Request names the inputs for one report.
type Request struct {
	DataDir  string
	SampleID string
	// ReferencePath and TargetsPath override the configured paths when set.
	ReferencePath string
	TargetsPath   string
}

// Result is a generated report and where it went.
type Result struct {
	Document *report.Document
	XMLPath  string
	// RunID is set when the report was archived.
	RunID string
}

// Generator builds surveillance reports.
type Generator struct {
	cfg     config.Config
	logger  *zap.Logger
	archive *archive.Store
	now     func() time.Time
}

// NewGenerator creates a generator using cfg for defaults.
func NewGenerator(cfg config.Config) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// SetLogger sets the logger for progress and warning messages.
func (g *Generator) SetLogger(l *zap.Logger) {
	g.logger = l
}

// SetArchive enables archiving of written reports.
func (g *Generator) SetArchive(s *archive.Store) {
	g.archive = s
}

// SetClock sets the clock used for the report date.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Generator) resolve(req Request) (Request, error) {
	if req.ReferencePath == "" {
		req.ReferencePath = g.cfg.Reference.Path
	}
	if req.TargetsPath == "" {
		req.TargetsPath = g.cfg.Targets.Path
	}
	switch {
	case req.DataDir == "":
		return req, errors.New("data directory is required")
	case req.SampleID == "":
		return req, errors.New("sample ID is required")
	case req.ReferencePath == "":
		return req, errors.New("reference mutation list is required (set reference.path or pass -r)")
	case req.TargetsPath == "":
		return req, errors.New("genes of interest list is required (set targets.path or pass -t)")
	}
	return req, nil
}

// loadStep loads one input table.
type loadStep struct {
	name string
	run  func() error
}

// Generate loads every input for the sample and assembles the report. Any
// load failure aborts the whole report.
func (g *Generator) Generate(ctx context.Context, req Request) (*report.Document, error) {
	req, err := g.resolve(req)
	if err != nil {
		return nil, err
	}
	log := g.logger.With(zap.String("sample", req.SampleID))
	layout := sample.NewLayout(req.DataDir, req.SampleID)

	var (
		reference []mutation.GradedMutation
		observed  []mutation.ObservedMutation
		lineage   sample.Lineage
		goi       coverage.GenesOfInterest
		genome    coverage.Genome
		regions   coverage.Regions
		deletions []coverage.Deletion
		lowQuals  []sample.Segment
	)
	steps := []loadStep{
		{"reference", func() (err error) { reference, err = mutation.LoadReference(req.ReferencePath); return }},
		{"annotation", func() (err error) { observed, err = mutation.LoadIsolate(req.DataDir, req.SampleID); return }},
		{"lineage", func() (err error) { lineage, err = sample.LoadLineage(layout); return }},
		{"genes of interest", func() (err error) { goi, err = coverage.LoadGenesOfInterest(req.TargetsPath); return }},
		{"genome coverage", func() (err error) { genome, err = coverage.LoadGenome(layout); return }},
		{"region coverage", func() (err error) { regions, err = coverage.LoadRegions(layout, goi); return }},
		{"deletions", func() (err error) { deletions, err = coverage.LoadDeletions(layout, goi); return }},
		{"low quality segments", func() (err error) { lowQuals, err = sample.LoadLowQuals(layout); return }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.run(); err != nil {
			log.Error("load failed", zap.String("table", step.name), zap.Error(err))
			return nil, err
		}
		log.Debug("loaded", zap.String("table", step.name))
	}
	log.Info("inputs loaded",
		zap.Int("reference_mutations", len(reference)),
		zap.Int("observed_mutations", len(observed)),
		zap.Int("genes_of_interest", len(goi)))

	matcher := resistance.NewMatcher(reference)
	matcher.SetKeepSingleChangeGenes(g.cfg.Matching.KeepSingleChangeGenes)
	matcher.SetLogger(log)
	groups := matcher.Match(observed)

	b := report.NewBuilder(req.SampleID,
		report.WithTitle(g.cfg.Report.Title),
		report.WithPipeline(g.cfg.Pipeline.Name, g.cfg.Pipeline.Version),
		report.WithClock(g.now),
	)
	b.SetLineage(lineage)
	b.AddCoverage(genome, regions.Genes)
	b.AddCoverageGaps(regions.Gaps)
	b.AddDeletions(deletions)
	b.AddResistance(groups)
	b.AddLowQuality(lowQuals)
	doc := b.Document()

	log.Info("report assembled",
		zap.Int("resistance_genes", len(groups)),
		zap.Int("drug_calls", doc.CalledDrugs()),
		zap.Int("coverage_gaps", len(regions.Gaps)),
		zap.Int("deletions", len(deletions)),
		zap.Int("low_quality_segments", len(lowQuals)))
	return doc, nil
}

// Run generates the report, writes <outDir>/<sample>_report.xml and archives
// it when an archive is set. Nothing is written if generation fails. The XML
// stays on disk if archiving fails, and the error names it.
func (g *Generator) Run(ctx context.Context, req Request, outDir string) (*Result, error) {
	doc, err := g.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(outDir, report.Filename(req.SampleID, "xml"))
	if err := report.WriteFile(path, doc); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	g.logger.Info("report written", zap.String("sample", req.SampleID), zap.String("path", path))

	res := &Result{Document: doc, XMLPath: path}
	if g.archive == nil {
		return res, nil
	}

	refPath := req.ReferencePath
	if refPath == "" {
		refPath = g.cfg.Reference.Path
	}
	fp, err := archive.StatFile(refPath)
	if err != nil {
		g.logger.Warn("cannot fingerprint reference", zap.String("path", refPath), zap.Error(err))
		fp = archive.FileFingerprint{}
	}
	runID, err := g.archive.WriteReport(ctx, doc, fp)
	if err != nil {
		g.logger.Error("archive failed, report kept on disk",
			zap.String("sample", req.SampleID), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("archive report (XML already written to %s): %w", path, err)
	}
	g.logger.Info("report archived", zap.String("sample", req.SampleID), zap.String("run_id", runID))
	res.RunID = runID
	return res, nil
}
