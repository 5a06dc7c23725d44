package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/adt/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Filter    string // scenario filter (glob pattern on the file name)
	Metrics   bool   // include container gauges in the output
	GoldenDir string // compare traces with golden files in this directory
	Update    bool   // rewrite golden files instead of comparing
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario-file-or-dir>",
		Short: "Run container scenarios",
		Long: `Run YAML scenarios against fresh containers.

Each scenario builds a circular queue or object pool, executes its setup and
flow steps, and checks the expect clauses and assertions. Container defaults
come from --config.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, bad config, etc.)

Examples:
  adt simulate ./scenarios
  adt simulate ./scenarios --filter "pool_*" --metrics
  adt simulate ./scenarios --golden ./golden --update
  adt simulate ./scenarios/cqueue.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "include container gauges")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "directory of golden trace files")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	if opts.Update && opts.GoldenDir == "" {
		return commandError(formatter, ErrCodeGolden, "--update requires --golden")
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	logger, err := opts.newLogger(cfg.Log, formatter.GetErrWriter())
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	defer func() { _ = logger.Sync() }()

	paths, err := harness.FindScenarios(path)
	if err != nil {
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) {
			return commandError(formatter, ErrCodeNotFound, err.Error())
		}
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	paths, err = filterScenarios(paths, opts.Filter)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	formatter.VerboseLog("Found %d scenario(s) in %s", len(paths), path)

	runOpts := []harness.Option{harness.WithConfig(cfg), harness.WithLogger(logger)}
	if opts.GoldenDir != "" {
		runOpts = append(runOpts, harness.WithGoldenDir(opts.GoldenDir, opts.Update))
	}
	suite := harness.RunSuite(paths, runOpts...)

	logger.Debug("simulation finished",
		zap.Int("total", suite.Total),
		zap.Int("passed", suite.Passed),
		zap.Int("failed", suite.Failed),
	)

	if !opts.Metrics {
		for i := range suite.Scenarios {
			suite.Scenarios[i].Metrics = nil
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(suite); err != nil {
			return err
		}
	} else {
		outputSimulateText(formatter, suite)
	}

	if suite.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", suite.Failed, suite.Total))
	}
	return nil
}

// filterScenarios keeps paths whose base name without extension matches
// the glob pattern. An empty pattern keeps everything.
func filterScenarios(paths []string, pattern string) ([]string, error) {
	if pattern == "" {
		return paths, nil
	}
	var out []string
	for _, p := range paths {
		base := filepath.Base(p)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			out = append(out, p)
		}
	}
	return out, nil
}

func outputSimulateText(formatter *OutputFormatter, suite *harness.SuiteResult) {
	w := formatter.Writer
	if suite.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, run := range suite.Scenarios {
		if run.Pass {
			fmt.Fprintf(w, "✓ %s\n", run.Scenario)
		} else {
			fmt.Fprintf(w, "✗ %s\n", run.Scenario)
			for _, e := range run.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		for _, m := range run.Metrics {
			fmt.Fprintf(w, "  %s %v = %g\n", m.Name, m.Labels, m.Value)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.Total)
}
