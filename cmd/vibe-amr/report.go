package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/archive"
	"github.com/inodb/vibe-amr/internal/surveil"
)

func (a *app) newReportCmd() *cobra.Command {
	var (
		dataDir     string
		sampleID    string
		outDir      string
		archivePath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a sample's surveillance report as XML",
		Long: `Generate a surveillance report for one sample from pipeline output.

Reads <data-dir>/<sample>/ annotation, coverage, deletion, lineage and
low-quality tables, matches observed mutations against the reference catalog,
and writes <output-dir>/<sample>_report.xml.`,
		Example: `  vibe-amr report -d uvp_out -s S81 -r catalog.csv -t Combined_Targets.csv
  vibe-amr report -d uvp_out -s S81 -o reports --archive reports.duckdb`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd, dataDir, sampleID, outDir, archivePath)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&dataDir, "data-dir", "d", "", "Directory holding pipeline output (required)")
	f.StringVarP(&sampleID, "sample", "s", "", "Sample to process (required)")
	f.StringVarP(&outDir, "output-dir", "o", ".", "Directory for the XML report")
	f.StringP("reference", "r", "", "Reference mutation list (overrides reference.path)")
	f.StringP("targets", "t", "", "Genes of interest list (overrides targets.path)")
	f.StringVar(&archivePath, "archive", "", "DuckDB archive to record the report in (overrides archive.path)")
	a.v.BindPFlag("reference.path", f.Lookup("reference"))
	a.v.BindPFlag("targets.path", f.Lookup("targets"))

	return cmd
}

func (a *app) runReport(cmd *cobra.Command, dataDir, sampleID, outDir, archivePath string) error {
	if dataDir == "" || sampleID == "" {
		return usageError{errors.New("--data-dir and --sample are required")}
	}

	g := surveil.NewGenerator(a.cfg)
	g.SetLogger(a.logger)

	if archivePath == "" {
		archivePath = a.cfg.Archive.Path
	}
	if archivePath != "" {
		store, err := archive.Open(archivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		g.SetArchive(store)
	}

	res, err := g.Run(cmd.Context(), surveil.Request{DataDir: dataDir, SampleID: sampleID}, outDir)
	if err != nil {
		return err
	}

	a.logger.Debug("report complete", zap.String("path", res.XMLPath))
	cmd.Printf("Wrote %s\n", res.XMLPath)
	if res.RunID != "" {
		cmd.Printf("Archived as run %s\n", res.RunID)
	}
	return nil
}
