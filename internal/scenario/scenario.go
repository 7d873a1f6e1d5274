// Package scenario describes benchmark hierarchies: a tree of weighted
// groups plus worker placements. Scenarios come from YAML files or from
// built-in presets and compile to the dense node table the lock is
// constructed from.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/fairlock"
)

// Scenario is the YAML-facing description of a benchmark hierarchy.
// The root group is implicit; groups refer to parents by name.
type Scenario struct {
	Name    string   `yaml:"name"`
	Groups  []Group  `yaml:"groups,omitempty"`
	Workers []Worker `yaml:"workers"`
}

// Group is one named node in the hierarchy
type Group struct {
	Name string `yaml:"name"`
	// Parent names an earlier group, or "" / "root" for the root
	Parent string `yaml:"parent,omitempty"`
	Weight int    `yaml:"weight"`
}

// Worker places a batch of workers under a group
type Worker struct {
	// Group names the group to register under, or "" / "root" for the root
	Group  string `yaml:"group,omitempty"`
	Count  int    `yaml:"count"`
	Weight int    `yaml:"weight"`
}

// Compiled is a scenario resolved to dense node ids
type Compiled struct {
	Name string
	// Nodes is the group table the lock is constructed from: the root at
	// id 0, then one node per group in declaration order
	Nodes []fairlock.Node
	// GroupName maps a node id to its group name ("root" for node 0)
	GroupName []string
	// Workers is the expanded placement table, one entry per worker
	Workers []Placement
}

// Placement positions one worker leaf in the hierarchy
type Placement struct {
	Group  string // Group name, "root" when directly under the root
	Parent int    // Node id the worker registers under
	Weight int
}

// ValidationError represents a single scenario validation failure
type ValidationError struct {
	Field   string // The scenario field path (e.g., "groups[1].weight")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario from YAML. Unknown fields are rejected so
// typos in scenario files surface as errors instead of silent defaults.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// rootName reports whether a group reference means the implicit root
func rootName(name string) bool {
	return name == "" || name == "root"
}

// Validate checks the scenario for invalid values and returns all
// validation errors found
func (s *Scenario) Validate() []ValidationError {
	var errors []ValidationError

	if s.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Value:   s.Name,
			Message: "cannot be empty",
		})
	}

	seen := make(map[string]bool, len(s.Groups))
	for i, g := range s.Groups {
		if g.Name == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("groups[%d].name", i),
				Value:   g.Name,
				Message: "cannot be empty",
			})
			continue
		}
		if g.Name == "root" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("groups[%d].name", i),
				Value:   g.Name,
				Message: "is reserved for the implicit root",
			})
		}
		if seen[g.Name] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("groups[%d].name", i),
				Value:   g.Name,
				Message: "duplicate group name",
			})
		}
		if !rootName(g.Parent) && !seen[g.Parent] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("groups[%d].parent", i),
				Value:   g.Parent,
				Message: "unknown group (parents must be declared before children)",
			})
		}
		if g.Weight <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("groups[%d].weight", i),
				Value:   g.Weight,
				Message: "must be positive",
			})
		}
		seen[g.Name] = true
	}

	if len(s.Workers) == 0 {
		errors = append(errors, ValidationError{
			Field:   "workers",
			Value:   s.Workers,
			Message: "at least one worker entry is required",
		})
	}
	for i, w := range s.Workers {
		if !rootName(w.Group) && !seen[w.Group] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("workers[%d].group", i),
				Value:   w.Group,
				Message: "unknown group",
			})
		}
		if w.Count <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("workers[%d].count", i),
				Value:   w.Count,
				Message: "must be positive",
			})
		}
		if w.Weight <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("workers[%d].weight", i),
				Value:   w.Weight,
				Message: "must be positive",
			})
		}
	}

	return errors
}

// TotalWorkers returns the number of workers the scenario places
func (s *Scenario) TotalWorkers() int {
	total := 0
	for _, w := range s.Workers {
		total += w.Count
	}
	return total
}

// WithWorkerCount returns a copy of the scenario with exactly n workers,
// dealt round-robin over the scenario's worker entries so every declared
// group keeps a share of the new total.
func (s *Scenario) WithWorkerCount(n int) *Scenario {
	if n <= 0 || len(s.Workers) == 0 || n == s.TotalWorkers() {
		return s
	}

	counts := make([]int, len(s.Workers))
	for i := 0; i < n; i++ {
		counts[i%len(s.Workers)]++
	}

	out := &Scenario{Name: s.Name, Groups: s.Groups}
	for i, w := range s.Workers {
		if counts[i] == 0 {
			continue
		}
		out.Workers = append(out.Workers, Worker{Group: w.Group, Count: counts[i], Weight: w.Weight})
	}
	return out
}

// Compile validates the scenario and resolves it to dense node ids:
// the root at id 0, groups in declaration order, and one placement per
// worker.
func (s *Scenario) Compile() (*Compiled, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	ids := make(map[string]int, len(s.Groups)+1)
	ids["root"] = 0

	c := &Compiled{
		Name:      s.Name,
		Nodes:     make([]fairlock.Node, 0, len(s.Groups)+1),
		GroupName: make([]string, 0, len(s.Groups)+1),
	}
	c.Nodes = append(c.Nodes, fairlock.Node{ID: 0, Parent: 0, Weight: 0})
	c.GroupName = append(c.GroupName, "root")

	for i, g := range s.Groups {
		id := i + 1
		parent := 0
		if !rootName(g.Parent) {
			parent = ids[g.Parent]
		}
		ids[g.Name] = id
		c.Nodes = append(c.Nodes, fairlock.Node{ID: id, Parent: parent, Weight: g.Weight})
		c.GroupName = append(c.GroupName, g.Name)
	}

	for _, w := range s.Workers {
		group := w.Group
		if rootName(group) {
			group = "root"
		}
		for i := 0; i < w.Count; i++ {
			c.Workers = append(c.Workers, Placement{
				Group:  group,
				Parent: ids[group],
				Weight: w.Weight,
			})
		}
	}

	return c, nil
}

// Resolve turns a scenario reference into a compiled hierarchy. The
// reference is a preset name or a path to a scenario YAML file; workers
// overrides the scenario's worker count when positive.
func Resolve(ref string, workers int) (*Compiled, error) {
	var s *Scenario
	if IsPreset(ref) {
		n := workers
		if n <= 0 {
			n = defaultPresetWorkers
		}
		var err error
		s, err = Preset(ref, n)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		s, err = Load(ref)
		if err != nil {
			return nil, err
		}
		if workers > 0 {
			s = s.WithWorkerCount(workers)
		}
	}
	return s.Compile()
}
