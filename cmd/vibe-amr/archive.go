package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-amr/internal/archive"
)

func (a *app) newArchiveCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Query the report archive",
		Long:  "Query archived report runs and resistance calls in a DuckDB archive.",
		Example: `  vibe-amr archive runs --db reports.duckdb
  vibe-amr archive search --db reports.duckdb --gene rpoB --drug RIF`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB archive (default: archive.path)")

	open := func() (*archive.Store, error) {
		path := dbPath
		if path == "" {
			path = a.cfg.Archive.Path
		}
		if path == "" {
			return nil, usageError{errors.New("no archive: pass --db or set archive.path")}
		}
		return archive.OpenExisting(path)
	}

	cmd.AddCommand(a.newArchiveSearchCmd(open))
	cmd.AddCommand(a.newArchiveRunsCmd(open))
	cmd.AddCommand(a.newArchiveCallsCmd(open))
	return cmd
}

func (a *app) newArchiveSearchCmd(open func() (*archive.Store, error)) *cobra.Command {
	var gene, drug string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search archived resistance calls by gene and/or drug",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if gene == "" && drug == "" {
				return usageError{errors.New("at least one of --gene or --drug is required")}
			}
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			var calls []archive.Call
			switch {
			case gene != "" && drug != "":
				calls, err = store.SearchByGeneAndDrug(cmd.Context(), gene, drug)
			case gene != "":
				calls, err = store.SearchByGene(cmd.Context(), gene)
			default:
				calls, err = store.SearchByDrug(cmd.Context(), drug)
			}
			if err != nil {
				return err
			}

			return printCalls(cmd, calls)
		},
	}

	cmd.Flags().StringVar(&gene, "gene", "", "Gene name, e.g. rpoB")
	cmd.Flags().StringVar(&drug, "drug", "", "Drug code, e.g. RIF")
	return cmd
}

func (a *app) newArchiveCallsCmd(open func() (*archive.Store, error)) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List the resistance calls recorded for one run",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID == "" {
				return usageError{errors.New("--run is required")}
			}
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			calls, err := store.Calls(cmd.Context(), runID)
			if err != nil {
				return err
			}
			return printCalls(cmd, calls)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID printed by report --archive")
	return cmd
}

func printCalls(cmd *cobra.Command, calls []archive.Call) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SAMPLE\tGENE\tNUC_CHANGE\tAA_CHANGE\tDRUG\tCONFIDENCE\tRUN")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.SampleID, c.Gene, c.NucChange, c.AAChange, dash(c.Drug), dash(c.Confidence), c.RunID)
	}
	return tw.Flush()
}

func (a *app) newArchiveRunsCmd(open func() (*archive.Store, error)) *cobra.Command {
	var sampleID string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived report runs",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), sampleID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSAMPLE\tDATE\tPIPELINE\tLINEAGE\tGENES\tDRUG_CALLS\tREFERENCE_CHANGED")
			for _, r := range runs {
				changed := "-"
				if r.Reference.Path != "" {
					changed = fmt.Sprint(!r.Reference.Matches())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%d\t%d\t%s\n",
					r.ID, r.SampleID, r.ReportDate, r.PipelineName, r.PipelineVersion,
					dash(r.LineageCode), r.Genes, r.DrugCalls, changed)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&sampleID, "sample", "", "Only list runs for this sample")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
