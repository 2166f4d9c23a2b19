// Package main provides the vibe-amr command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-amr/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by invalid command-line usage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs wraps a positional-argument validator so its failures exit with
// ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// app holds state shared by all subcommands for one invocation.
type app struct {
	v       *viper.Viper
	cfg     config.Config
	logger  *zap.Logger
	cfgFile string
	stdout  io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{v: config.New(), logger: zap.NewNop(), stdout: stdout}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitError
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-amr",
		Short: "Drug-resistance surveillance reports from pipeline output",
		Long: `vibe-amr matches a sample's observed mutations against a graded catalog of
drug-resistance mutations and writes a surveillance report (XML), which can
then be rendered as HTML, PDF, text or TSV.`,
		Example: `  vibe-amr report -d uvp_out -s S81 -r catalog.csv -t Combined_Targets.csv
  vibe-amr render S81_report.xml -s S81 -f PDF
  vibe-amr archive search --db reports.duckdb --gene rpoB`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetVersionTemplate("vibe-amr version {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.vibe-amr.yaml)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file instead of stderr")
	a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	a.v.BindPFlag("log.file", pf.Lookup("log-file"))

	root.AddCommand(a.newReportCmd())
	root.AddCommand(a.newRenderCmd())
	root.AddCommand(a.newArchiveCmd())
	root.AddCommand(a.newConfigCmd())

	return root
}

// init reads the config file and builds the logger.
func (a *app) init() error {
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return usageError{err}
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	return nil
}

// newLogger builds a console logger at the configured level, writing to
// the configured file or stderr.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	zc.Sampling = nil
	zc.OutputPaths = []string{"stderr"}
	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
	}
	return zc.Build()
}
