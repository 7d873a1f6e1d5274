package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/fairlock/internal/bench"
	"github.com/Iron-Ham/fairlock/internal/config"
	"github.com/Iron-Ham/fairlock/internal/kvstore"
	"github.com/Iron-Ham/fairlock/internal/logging"
	"github.com/Iron-Ham/fairlock/internal/scenario"
	"github.com/Iron-Ham/fairlock/internal/stats"
	"github.com/Iron-Ham/fairlock/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark and report fairness",
	Long: `Run a key-value workload through the selected locker and report how
service was divided between workers and groups.

The scenario names a built-in preset (see 'fairbench scenarios') or a
YAML file describing a custom hierarchy. With --tui the run shows a
live dashboard instead of printing the report when it finishes.`,
	Args:    cobra.NoArgs,
	PreRunE: bindBenchFlags,
	RunE:    runRun,
}

var (
	runTUI    bool   // Show the live dashboard
	runJSON   bool   // Print the report as JSON
	runOutput string // Write the report JSON to a file
)

func init() {
	addBenchFlags(runCmd)
	runCmd.Flags().String("locker", config.Default().Bench.Locker, "lock under test (hfl, mutex, rwmutex)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "show a live dashboard during the run")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON")
	runCmd.Flags().StringVar(&runOutput, "output", "", "write the report JSON to a file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	compiled, err := scenario.Resolve(cfg.Bench.Scenario, cfg.Bench.Workers)
	if err != nil {
		return fmt.Errorf("failed to resolve scenario %q: %w", cfg.Bench.Scenario, err)
	}

	logger, err := buildLogger(cfg, runTUI)
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.WithScenario(compiled.Name).WithEngine(cfg.Store.Engine)

	report, err := runBenchmark(compiled, cfg, cfg.Bench.Locker, runTUI, log)
	if err != nil {
		return err
	}
	return emitReport(report)
}

// buildLogger selects the run's log destination. A dashboard run logs
// nowhere unless a file was configured, since the dashboard owns the
// terminal.
func buildLogger(cfg *config.Config, useTUI bool) (*logging.Logger, error) {
	if useTUI && cfg.Logging.File == "" {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}

// runBenchmark executes one benchmark over the compiled scenario with a
// fresh store and locker, and builds its report.
func runBenchmark(compiled *scenario.Compiled, cfg *config.Config, locker string, useTUI bool, log *logging.Logger) (*stats.Report, error) {
	store, err := kvstore.Open(cfg.Store.Engine, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Engine, err)
	}
	defer store.Close()

	runner, err := bench.NewRunner(compiled, store, bench.Options{
		Locker:      locker,
		Slice:       cfg.Lock.SliceTicks(),
		InsertRatio: cfg.Bench.InsertRatio,
		FindRatio:   cfg.Bench.FindRatio,
		ValueSize:   cfg.Store.ValueSize,
		CSSpin:      cfg.Bench.CSSpin,
		ThinkEvery:  cfg.Bench.ThinkEvery,
		ThinkFor:    cfg.Bench.ThinkFor,
		Seed:        cfg.Bench.Seed,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s runner: %w", locker, err)
	}
	defer runner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bench.Duration)
	defer cancel()

	log.Info("benchmark starting",
		"locker", locker,
		"workers", len(compiled.Workers),
		"duration", cfg.Bench.Duration.String())

	start := time.Now()
	if useTUI {
		if err := tui.Run(ctx, cancel, runner, compiled, locker, cfg.Store.Engine, cfg.Bench.Duration); err != nil {
			return nil, fmt.Errorf("dashboard error: %w", err)
		}
	} else {
		runner.Run(ctx)
	}
	elapsed := time.Since(start)

	report := stats.Build(compiled, runner.Counters(), elapsed, locker, cfg.Store.Engine)
	log.Info("benchmark finished",
		"ops", report.TotalOps,
		"ops_per_sec", report.OpsPerSec,
		"jain", report.JainIndex,
		"violations", report.Violations)
	return report, nil
}

func emitReport(report *stats.Report) error {
	if runOutput != "" {
		if err := report.WriteJSON(runOutput); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", runOutput)
	}

	if runJSON {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(report.Render())
	return nil
}
