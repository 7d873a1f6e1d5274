package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/fairlock/internal/config"
)

// benchFlagKeys maps viper keys to the benchmark flags shared by the
// run and compare commands.
var benchFlagKeys = map[string]string{
	"bench.scenario":     "scenario",
	"bench.workers":      "workers",
	"bench.duration":     "duration",
	"bench.insert_ratio": "insert-ratio",
	"bench.find_ratio":   "find-ratio",
	"bench.cs_spin":      "cs-spin",
	"bench.think_every":  "think-every",
	"bench.think_for":    "think-for",
	"bench.seed":         "seed",
	"store.engine":       "engine",
	"store.path":         "db",
	"store.value_size":   "value-size",
	"lock.slice":         "slice",
}

// addBenchFlags registers the shared benchmark flags. Defaults shown in
// help mirror the config defaults; the effective value still follows
// flag > environment > config file > default.
func addBenchFlags(cmd *cobra.Command) {
	d := config.Default()

	cmd.Flags().String("scenario", d.Bench.Scenario, "preset name or scenario YAML file")
	cmd.Flags().Int("workers", d.Bench.Workers, "override the scenario's worker count")
	cmd.Flags().Duration("duration", d.Bench.Duration, "how long to run")
	cmd.Flags().Float64("insert-ratio", d.Bench.InsertRatio, "fraction of operations that insert")
	cmd.Flags().Float64("find-ratio", d.Bench.FindRatio, "fraction of operations that look up; the rest update")
	cmd.Flags().Duration("cs-spin", d.Bench.CSSpin, "busy-wait inside the critical section per operation")
	cmd.Flags().Int("think-every", d.Bench.ThinkEvery, "sleep outside the lock after every N operations (0 disables)")
	cmd.Flags().Duration("think-for", d.Bench.ThinkFor, "length of the think sleep")
	cmd.Flags().Int64("seed", d.Bench.Seed, "RNG seed (0 draws one from the clock)")
	cmd.Flags().String("engine", d.Store.Engine, "store backend (memory, sqlite)")
	cmd.Flags().String("db", d.Store.Path, "sqlite database file (empty runs sqlite in memory)")
	cmd.Flags().Int("value-size", d.Store.ValueSize, "size of generated values in bytes")
	cmd.Flags().Duration("slice", d.Lock.Slice, "lock slice before a holder is banned for overrunning")
}

// bindBenchFlags points the shared viper keys at this command's flags.
// Binding at pre-run keeps run and compare from clobbering each other's
// bindings at init time.
func bindBenchFlags(cmd *cobra.Command, args []string) error {
	for key, name := range benchFlagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if f := cmd.Flags().Lookup("locker"); f != nil {
		if err := viper.BindPFlag("bench.locker", f); err != nil {
			return err
		}
	}
	return nil
}
