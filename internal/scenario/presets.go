package scenario

import (
	"fmt"

	"github.com/Iron-Ham/fairlock"
)

// defaultPresetWorkers is used when a preset is resolved without an
// explicit worker count.
const defaultPresetWorkers = 8

// PresetNames returns the built-in scenario names in menu order
func PresetNames() []string {
	return []string{"flat", "balanced", "skewed", "deep", "grouped", "cgroups"}
}

// IsPreset reports whether name refers to a built-in scenario
func IsPreset(name string) bool {
	for _, p := range PresetNames() {
		if name == p {
			return true
		}
	}
	return false
}

// Preset builds a built-in scenario for the given worker count.
// Unknown names and non-positive worker counts are errors.
func Preset(name string, workers int) (*Scenario, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("preset %s: worker count %d must be positive", name, workers)
	}

	switch name {
	case "flat":
		return flatPreset(workers), nil
	case "balanced":
		return balancedPreset(workers), nil
	case "skewed":
		return skewedPreset(workers), nil
	case "deep":
		return deepPreset(workers), nil
	case "grouped":
		return groupedPreset(workers), nil
	case "cgroups":
		return cgroupsPreset(workers), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (valid: %v)", name, PresetNames())
	}
}

// flatPreset puts every worker directly under the root
func flatPreset(workers int) *Scenario {
	return &Scenario{
		Name: "flat",
		Workers: []Worker{
			{Group: "", Count: workers, Weight: fairlock.DefaultWeight},
		},
	}
}

// balancedPreset builds a binary tree of groups, one worker per group.
// Group i hangs under group (i-1)/2, which makes the root the parent of
// the first two groups and every later group a child of an earlier one.
func balancedPreset(workers int) *Scenario {
	s := &Scenario{Name: "balanced"}
	for i := 1; i <= workers; i++ {
		parent := ""
		if p := (i - 1) / 2; p > 0 {
			parent = fmt.Sprintf("node%d", p)
		}
		s.Groups = append(s.Groups, Group{
			Name:   fmt.Sprintf("node%d", i),
			Parent: parent,
			Weight: fairlock.DefaultWeight,
		})
		s.Workers = append(s.Workers, Worker{
			Group:  fmt.Sprintf("node%d", i),
			Count:  1,
			Weight: fairlock.DefaultWeight,
		})
	}
	return s
}

// skewedPreset nests the first half of the workers in a linear chain and
// leaves the second half directly under the root
func skewedPreset(workers int) *Scenario {
	s := &Scenario{Name: "skewed"}
	mid := workers / 2
	for i := 1; i <= mid; i++ {
		parent := ""
		if i > 1 {
			parent = fmt.Sprintf("chain%d", i-1)
		}
		s.Groups = append(s.Groups, Group{
			Name:   fmt.Sprintf("chain%d", i),
			Parent: parent,
			Weight: fairlock.DefaultWeight,
		})
		s.Workers = append(s.Workers, Worker{
			Group:  fmt.Sprintf("chain%d", i),
			Count:  1,
			Weight: fairlock.DefaultWeight,
		})
	}
	if workers > mid {
		s.Workers = append(s.Workers, Worker{
			Group:  "",
			Count:  workers - mid,
			Weight: fairlock.DefaultWeight,
		})
	}
	return s
}

// deepPreset chains one group per worker so every grant descends the full
// depth of the hierarchy
func deepPreset(workers int) *Scenario {
	s := &Scenario{Name: "deep"}
	for i := 1; i <= workers; i++ {
		parent := ""
		if i > 1 {
			parent = fmt.Sprintf("level%d", i-1)
		}
		s.Groups = append(s.Groups, Group{
			Name:   fmt.Sprintf("level%d", i),
			Parent: parent,
			Weight: fairlock.DefaultWeight,
		})
		s.Workers = append(s.Workers, Worker{
			Group:  fmt.Sprintf("level%d", i),
			Count:  1,
			Weight: fairlock.DefaultWeight,
		})
	}
	return s
}

// groupedPreset spreads the workers round-robin over four equal groups
func groupedPreset(workers int) *Scenario {
	const numGroups = 4
	s := &Scenario{Name: "grouped"}

	counts := make([]int, numGroups)
	for i := 0; i < workers; i++ {
		counts[i%numGroups]++
	}

	for g := 0; g < numGroups; g++ {
		if counts[g] == 0 {
			continue
		}
		name := fmt.Sprintf("group%d", g+1)
		s.Groups = append(s.Groups, Group{Name: name, Weight: fairlock.DefaultWeight})
		s.Workers = append(s.Workers, Worker{
			Group:  name,
			Count:  counts[g],
			Weight: fairlock.DefaultWeight,
		})
	}
	return s
}

// cgroupsPreset models a cgroup-style priority split: five classes with
// distinct weights, filled in priority order. The first workers land in
// realtime and system, the middle in interactive and user, and the rest
// run as batch.
func cgroupsPreset(workers int) *Scenario {
	s := &Scenario{
		Name: "cgroups",
		Groups: []Group{
			{Name: "system", Weight: 2048},
			{Name: "realtime", Weight: 4096},
			{Name: "interactive", Weight: 1536},
			{Name: "user", Weight: 1024},
			{Name: "batch", Weight: 512},
		},
	}

	// Class capacities and worker weights, in fill order. Batch absorbs
	// any remainder.
	classes := []struct {
		group  string
		cap    int
		weight int
	}{
		{"realtime", 2, 2048},
		{"system", 2, 1536},
		{"interactive", 4, 1280},
		{"user", 4, 1024},
		{"batch", workers, 512},
	}

	remaining := workers
	for _, cl := range classes {
		if remaining == 0 {
			break
		}
		count := cl.cap
		if count > remaining {
			count = remaining
		}
		s.Workers = append(s.Workers, Worker{
			Group:  cl.group,
			Count:  count,
			Weight: cl.weight,
		})
		remaining -= count
	}
	return s
}
