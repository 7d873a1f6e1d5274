package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"

	"github.com/Iron-Ham/fairlock/internal/config"
	"github.com/Iron-Ham/fairlock/internal/scenario"
	"github.com/Iron-Ham/fairlock/internal/stats"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same workload under each locker and compare",
	Long: `Run the configured workload once per locker, back to back, and print
a side-by-side fairness comparison. Each run gets a fresh store and a
fresh lock so earlier runs cannot skew later ones.`,
	Args:    cobra.NoArgs,
	PreRunE: bindBenchFlags,
	RunE:    runCompare,
}

var (
	compareLockers []string
	compareJSON    bool   // Print the comparison as JSON
	compareOutput  string // Write the comparison JSON to a file
)

func init() {
	addBenchFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareLockers, "lockers", config.ValidLockers(), "lockers to compare")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the comparison as JSON")
	compareCmd.Flags().StringVar(&compareOutput, "output", "", "write the comparison JSON to a file")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, locker := range compareLockers {
		if !config.IsValidLocker(locker) {
			return fmt.Errorf("unknown locker %q (valid: %s)",
				locker, strings.Join(config.ValidLockers(), ", "))
		}
	}
	if len(compareLockers) == 0 {
		return fmt.Errorf("no lockers to compare")
	}

	compiled, err := scenario.Resolve(cfg.Bench.Scenario, cfg.Bench.Workers)
	if err != nil {
		return fmt.Errorf("failed to resolve scenario %q: %w", cfg.Bench.Scenario, err)
	}

	logger, err := buildLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Close()

	reports := make([]*stats.Report, 0, len(compareLockers))
	for _, locker := range compareLockers {
		log := logger.WithScenario(compiled.Name).WithEngine(cfg.Store.Engine).With("locker", locker)
		report, err := runBenchmark(compiled, cfg, locker, false, log)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	return emitComparison(reports)
}

func emitComparison(reports []*stats.Report) error {
	if compareOutput != "" {
		data, err := sonnet.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode comparison: %w", err)
		}
		if err := os.WriteFile(compareOutput, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write comparison: %w", err)
		}
		fmt.Printf("Comparison written to %s\n", compareOutput)
	}

	if compareJSON {
		data, err := sonnet.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode comparison: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(stats.RenderCompare(reports))
	return nil
}
