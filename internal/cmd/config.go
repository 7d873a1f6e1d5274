package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/fairlock/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify fairbench configuration",
	Long: `View or modify fairbench configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  fairbench config set bench.scenario cgroups
  fairbench config set bench.duration 30s
  fairbench config set store.engine sqlite

Valid keys:
  bench.scenario      - Preset name or scenario YAML file
  bench.workers       - Worker count override
  bench.duration      - Run length (e.g. 10s, 2m)
  bench.locker        - Lock under test: hfl, mutex, rwmutex
  bench.insert_ratio  - Fraction of operations that insert
  bench.find_ratio    - Fraction of operations that look up
  bench.cs_spin       - Busy-wait inside the critical section
  bench.think_every   - Think pause period in operations
  bench.think_for     - Think pause length
  bench.seed          - RNG seed (0 draws from the clock)
  store.engine        - Store backend: memory, sqlite
  store.path          - SQLite database file
  store.value_size    - Generated value size in bytes
  lock.slice          - Lock slice before a holder is banned
  logging.level       - debug, info, warn, error
  logging.format      - text, json
  logging.file        - Log destination (empty is stderr)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/fairbench/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("bench:")
	fmt.Printf("  scenario: %s\n", cfg.Bench.Scenario)
	fmt.Printf("  workers: %d\n", cfg.Bench.Workers)
	fmt.Printf("  duration: %s\n", cfg.Bench.Duration)
	fmt.Printf("  locker: %s\n", cfg.Bench.Locker)
	fmt.Printf("  insert_ratio: %.2f\n", cfg.Bench.InsertRatio)
	fmt.Printf("  find_ratio: %.2f\n", cfg.Bench.FindRatio)
	fmt.Printf("  update_ratio: %.2f (derived)\n", cfg.Bench.UpdateRatio())
	fmt.Printf("  cs_spin: %s\n", cfg.Bench.CSSpin)
	fmt.Printf("  think_every: %d\n", cfg.Bench.ThinkEvery)
	fmt.Printf("  think_for: %s\n", cfg.Bench.ThinkFor)
	fmt.Printf("  seed: %d\n", cfg.Bench.Seed)

	fmt.Println("store:")
	fmt.Printf("  engine: %s\n", cfg.Store.Engine)
	fmt.Printf("  path: %s\n", cfg.Store.Path)
	fmt.Printf("  value_size: %d\n", cfg.Store.ValueSize)

	fmt.Println("lock:")
	fmt.Printf("  slice: %s\n", cfg.Lock.Slice)

	fmt.Println("logging:")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  format: %s\n", cfg.Logging.Format)
	fmt.Printf("  file: %s\n", cfg.Logging.File)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"bench.scenario":     "string",
		"bench.workers":      "int",
		"bench.duration":     "duration",
		"bench.locker":       "string",
		"bench.insert_ratio": "float",
		"bench.find_ratio":   "float",
		"bench.cs_spin":      "duration",
		"bench.think_every":  "int",
		"bench.think_for":    "duration",
		"bench.seed":         "int",
		"store.engine":       "string",
		"store.path":         "string",
		"store.value_size":   "int",
		"lock.slice":         "duration",
		"logging.level":      "string",
		"logging.format":     "string",
		"logging.file":       "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'fairbench config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		switch key {
		case "bench.locker":
			if !config.IsValidLocker(value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidLockers(), ", "))
			}
		case "store.engine":
			if !config.IsValidStoreEngine(value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidStoreEngines(), ", "))
			}
		case "logging.level":
			if !contains(config.ValidLogLevels(), value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidLogLevels(), ", "))
			}
		case "logging.format":
			if !contains(config.ValidLogFormats(), value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidLogFormats(), ", "))
			}
		}
		typedValue = value
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	case "float":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected number", key)
		}
		if floatVal < 0 || floatVal > 1 {
			return fmt.Errorf("invalid value for %s: must be between 0 and 1", key)
		}
		typedValue = floatVal
	case "duration":
		durVal, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected duration like 10s or 500ms", key)
		}
		typedValue = durVal.String()
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'fairbench config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Fairbench Configuration

# Benchmark workload
bench:
  # Preset name (flat, balanced, skewed, deep, grouped, cgroups) or a
  # path to a scenario YAML file
  scenario: flat
  # Worker count; overrides the scenario's declared workers
  workers: 8
  # How long to run
  duration: 10s
  # Lock under test: hfl, mutex, rwmutex
  locker: hfl
  # Operation mix; the remainder after insert and find are updates
  insert_ratio: 0.30
  find_ratio: 0.60
  # Busy-wait inside the critical section per operation (0 disables)
  cs_spin: 0s
  # Sleep think_for outside the lock after every think_every operations
  think_every: 100
  think_for: 1ms
  # RNG seed; 0 draws one from the clock
  seed: 0

# Key-value store the workers operate on
store:
  # Backend: memory, sqlite
  engine: memory
  # SQLite database file; empty runs sqlite in memory
  path: ""
  # Size of generated values in bytes
  value_size: 256

# Hierarchical fair lock settings
lock:
  # Slice a holder may keep the lock before it is banned for the overrun
  slice: 1ms

# Harness logging
logging:
  # debug, info, warn, error
  level: info
  # text, json
  format: text
  # Log destination; empty logs to stderr
  file: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize fairbench's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/fairbench/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: FAIRBENCH_* (e.g., FAIRBENCH_BENCH_DURATION)")

	return nil
}
