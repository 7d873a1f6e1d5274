package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete fairbench configuration
type Config struct {
	Bench   BenchConfig   `mapstructure:"bench"`
	Store   StoreConfig   `mapstructure:"store"`
	Lock    LockConfig    `mapstructure:"lock"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BenchConfig controls the benchmark workload
type BenchConfig struct {
	// Scenario is a preset name ("flat", "cgroups", ...) or a path to a
	// scenario YAML file
	Scenario string `mapstructure:"scenario"`
	// Workers overrides the scenario's worker count when > 0.
	// Extra workers are spread round-robin over the scenario's groups.
	Workers int `mapstructure:"workers"`
	// Duration is how long the benchmark runs
	Duration time.Duration `mapstructure:"duration"`
	// Locker selects the lock under test
	// Options: "hfl", "mutex", "rwmutex"
	Locker string `mapstructure:"locker"`
	// InsertRatio is the fraction of operations that insert a new key
	InsertRatio float64 `mapstructure:"insert_ratio"`
	// FindRatio is the fraction of operations that look up an existing key.
	// The remainder (1 - insert - find) are updates.
	FindRatio float64 `mapstructure:"find_ratio"`
	// CSSpin busy-waits inside the critical section for this long after
	// each store operation (0 = disabled)
	CSSpin time.Duration `mapstructure:"cs_spin"`
	// ThinkEvery sleeps outside the lock after every N operations (0 = never)
	ThinkEvery int `mapstructure:"think_every"`
	// ThinkFor is the duration of the think sleep
	ThinkFor time.Duration `mapstructure:"think_for"`
	// Seed seeds the per-worker RNGs. 0 derives a seed from the clock so
	// repeated runs differ.
	Seed int64 `mapstructure:"seed"`
}

// StoreConfig controls the key-value store the workers operate on
type StoreConfig struct {
	// Engine selects the store backend
	// Options: "memory", "sqlite"
	Engine string `mapstructure:"engine"`
	// Path is the sqlite database file. Empty uses an in-memory database.
	Path string `mapstructure:"path"`
	// ValueSize is the size of generated values in bytes
	ValueSize int `mapstructure:"value_size"`
}

// LockConfig controls the hierarchical fair lock
type LockConfig struct {
	// Slice is the time slice a holder may keep the lock before it is
	// banned for the overrun
	Slice time.Duration `mapstructure:"slice"`
}

// LoggingConfig controls harness logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format is the log output format: "text" or "json"
	Format string `mapstructure:"format"`
	// File is the log destination. Empty logs to stderr.
	File string `mapstructure:"file"`
}

// UpdateRatio returns the fraction of operations that update an existing
// key, derived from the insert and find ratios.
func (b *BenchConfig) UpdateRatio() float64 {
	r := 1.0 - b.InsertRatio - b.FindRatio
	if r < 0 {
		return 0
	}
	return r
}

// SliceTicks returns the lock slice in clock ticks (nanoseconds).
func (l *LockConfig) SliceTicks() uint64 {
	if l.Slice <= 0 {
		return 0
	}
	return uint64(l.Slice.Nanoseconds())
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Bench: BenchConfig{
			Scenario:    "flat",
			Workers:     8,
			Duration:    10 * time.Second,
			Locker:      "hfl",
			InsertRatio: 0.30,
			FindRatio:   0.60,
			CSSpin:      0,
			ThinkEvery:  100,
			ThinkFor:    time.Millisecond,
			Seed:        0, // Derive from the clock
		},
		Store: StoreConfig{
			Engine:    "memory",
			Path:      "", // Empty means sqlite runs in-memory
			ValueSize: 256,
		},
		Lock: LockConfig{
			Slice: time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Bench defaults
	viper.SetDefault("bench.scenario", defaults.Bench.Scenario)
	viper.SetDefault("bench.workers", defaults.Bench.Workers)
	viper.SetDefault("bench.duration", defaults.Bench.Duration)
	viper.SetDefault("bench.locker", defaults.Bench.Locker)
	viper.SetDefault("bench.insert_ratio", defaults.Bench.InsertRatio)
	viper.SetDefault("bench.find_ratio", defaults.Bench.FindRatio)
	viper.SetDefault("bench.cs_spin", defaults.Bench.CSSpin)
	viper.SetDefault("bench.think_every", defaults.Bench.ThinkEvery)
	viper.SetDefault("bench.think_for", defaults.Bench.ThinkFor)
	viper.SetDefault("bench.seed", defaults.Bench.Seed)

	// Store defaults
	viper.SetDefault("store.engine", defaults.Store.Engine)
	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("store.value_size", defaults.Store.ValueSize)

	// Lock defaults
	viper.SetDefault("lock.slice", defaults.Lock.Slice)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fairbench")
	}
	// Fall back to ~/.config/fairbench
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fairbench"
	}
	return filepath.Join(home, ".config", "fairbench")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidLockers returns the list of valid locker names
func ValidLockers() []string {
	return []string{"hfl", "mutex", "rwmutex"}
}

// IsValidLocker checks if the given locker name is valid
func IsValidLocker(name string) bool {
	for _, valid := range ValidLockers() {
		if name == valid {
			return true
		}
	}
	return false
}

// ValidStoreEngines returns the list of valid store engine names
func ValidStoreEngines() []string {
	return []string{"memory", "sqlite"}
}

// IsValidStoreEngine checks if the given engine name is valid
func IsValidStoreEngine(engine string) bool {
	for _, valid := range ValidStoreEngines() {
		if engine == valid {
			return true
		}
	}
	return false
}
