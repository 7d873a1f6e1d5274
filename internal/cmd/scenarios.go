package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/fairlock/internal/scenario"
	"github.com/Iron-Ham/fairlock/internal/util"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios [scenario]",
	Short: "List built-in scenarios or inspect one",
	Long: `Without arguments, list the built-in scenario presets.

With a preset name or a path to a scenario YAML file, validate it and
print the compiled hierarchy: the group tree the lock is built from
and every worker placement.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScenarios,
}

var scenariosWorkers int

func init() {
	scenariosCmd.Flags().IntVar(&scenariosWorkers, "workers", 0, "worker count used to expand the hierarchy")
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listScenarios()
	}
	return showScenario(args[0], scenariosWorkers)
}

func presetSummary(name string) string {
	switch name {
	case "flat":
		return "every worker directly under the root"
	case "balanced":
		return "binary tree of groups, one worker per group"
	case "skewed":
		return "half the workers down a chain, the rest flat"
	case "deep":
		return "one linear chain, a worker at every depth"
	case "grouped":
		return "four equal groups, workers dealt round-robin"
	case "cgroups":
		return "system/realtime/interactive/user/batch weights"
	default:
		return ""
	}
}

func listScenarios() error {
	fmt.Println()
	fmt.Println("BUILT-IN SCENARIOS")
	fmt.Println(strings.Repeat("─", 60))
	for _, name := range scenario.PresetNames() {
		fmt.Printf("%-10s %s\n", name, util.TruncateString(presetSummary(name), 48))
	}
	fmt.Println()
	fmt.Println("Pass a preset name or a YAML file to inspect its hierarchy.")
	return nil
}

func showScenario(ref string, workers int) error {
	compiled, err := scenario.Resolve(ref, workers)
	if err != nil {
		return fmt.Errorf("failed to resolve scenario %q: %w", ref, err)
	}

	fmt.Println()
	fmt.Printf("SCENARIO %s\n", strings.ToUpper(compiled.Name))
	fmt.Println(strings.Repeat("─", 60))

	fmt.Println("Groups:")
	fmt.Println("  Node | Name         | Parent       | Weight")
	for _, n := range compiled.Nodes {
		parent := compiled.GroupName[n.Parent]
		if n.ID == 0 {
			parent = "-"
		}
		fmt.Printf("  %4d | %-12s | %-12s | %6d\n",
			n.ID, compiled.GroupName[n.ID], parent, n.Weight)
	}
	fmt.Println()

	fmt.Println("Workers:")
	fmt.Println("  Worker | Group        | Weight")
	for i, p := range compiled.Workers {
		fmt.Printf("  %6d | %-12s | %6d\n", i, p.Group, p.Weight)
	}
	fmt.Println()
	fmt.Printf("%d groups, %d workers\n", len(compiled.Nodes)-1, len(compiled.Workers))
	return nil
}
