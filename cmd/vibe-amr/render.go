package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/report"
)

func (a *app) newRenderCmd() *cobra.Command {
	var (
		sampleID string
		format   string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "render <report.xml>",
		Short: "Render an XML report as HTML, PDF, text or TSV",
		Long:  "Render a report written by 'vibe-amr report' to <output-dir>/<sample>_report.<ext>.",
		Example: `  vibe-amr render S81_report.xml -s S81
  vibe-amr render S81_report.xml -s S81 -f PDF -o printed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args[0], sampleID, format, outDir)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&sampleID, "sample", "s", "", "Sample name for output naming (default: the report's sample ID)")
	f.StringVarP(&format, "format", "f", string(output.FormatHTML), "Output format: HTML, PDF, TEXT, TSV")
	f.StringVarP(&outDir, "output-dir", "o", ".", "Directory for the rendered report")

	return cmd
}

func (a *app) runRender(cmd *cobra.Command, xmlPath, sampleID, formatName, outDir string) error {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return usageError{err}
	}

	doc, err := report.ReadFile(xmlPath)
	if err != nil {
		return err
	}
	if sampleID == "" {
		sampleID = doc.SampleID
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, report.Filename(sampleID, output.Extension(format)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := output.Render(format, f, doc); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	a.logger.Info("report rendered",
		zap.String("sample", sampleID),
		zap.String("format", string(format)),
		zap.String("path", path))
	cmd.Printf("Wrote %s\n", path)
	return nil
}
