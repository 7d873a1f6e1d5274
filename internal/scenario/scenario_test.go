package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/fairlock"
)

const sampleYAML = `
name: cgroups
groups:
  - name: system
    weight: 2048
  - name: realtime
    weight: 4096
workers:
  - group: system
    count: 2
    weight: 2048
  - group: realtime
    count: 1
    weight: 4096
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if s.Name != "cgroups" {
		t.Errorf("Name = %q, want %q", s.Name, "cgroups")
	}
	if len(s.Groups) != 2 {
		t.Fatalf("Groups length = %d, want 2", len(s.Groups))
	}
	if s.Groups[0].Name != "system" || s.Groups[0].Weight != 2048 {
		t.Errorf("Groups[0] = %+v, want system/2048", s.Groups[0])
	}
	if len(s.Workers) != 2 {
		t.Fatalf("Workers length = %d, want 2", len(s.Workers))
	}
	if s.Workers[1].Group != "realtime" || s.Workers[1].Count != 1 {
		t.Errorf("Workers[1] = %+v, want realtime/1", s.Workers[1])
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nworkres:\n  - count: 1\n"))
	if err == nil {
		t.Fatal("Parse() should reject unknown fields")
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))
	if err == nil {
		t.Fatal("Parse() should reject invalid YAML")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("failed to write scenario file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "cgroups" {
		t.Errorf("Name = %q, want %q", s.Name, "cgroups")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

// validScenario returns a small scenario that passes validation
func validScenario() *Scenario {
	return &Scenario{
		Name: "test",
		Groups: []Group{
			{Name: "a", Weight: 1024},
			{Name: "b", Parent: "a", Weight: 512},
		},
		Workers: []Worker{
			{Group: "a", Count: 2, Weight: 1024},
			{Group: "b", Count: 1, Weight: 512},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Scenario)
		badField string
	}{
		{"valid", func(s *Scenario) {}, ""},
		{"empty name", func(s *Scenario) { s.Name = "" }, "name"},
		{"empty group name", func(s *Scenario) { s.Groups[0].Name = "" }, "groups[0].name"},
		{"reserved root name", func(s *Scenario) { s.Groups[0].Name = "root" }, "groups[0].name"},
		{"duplicate group name", func(s *Scenario) { s.Groups[1].Name = "a" }, "groups[1].name"},
		{"unknown parent", func(s *Scenario) { s.Groups[1].Parent = "ghost" }, "groups[1].parent"},
		{"forward parent reference", func(s *Scenario) { s.Groups[0].Parent = "b" }, "groups[0].parent"},
		{"zero group weight", func(s *Scenario) { s.Groups[0].Weight = 0 }, "groups[0].weight"},
		{"negative group weight", func(s *Scenario) { s.Groups[1].Weight = -5 }, "groups[1].weight"},
		{"unknown worker group", func(s *Scenario) { s.Workers[0].Group = "ghost" }, "workers[0].group"},
		{"zero worker count", func(s *Scenario) { s.Workers[0].Count = 0 }, "workers[0].count"},
		{"zero worker weight", func(s *Scenario) { s.Workers[1].Weight = 0 }, "workers[1].weight"},
		{"no workers", func(s *Scenario) { s.Workers = nil }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			errs := s.Validate()

			if tt.badField == "" {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}

			found := false
			for _, err := range errs {
				if err.Field == tt.badField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want error for field %s", errs, tt.badField)
			}
		})
	}
}

func TestValidateRootWorkerGroup(t *testing.T) {
	for _, group := range []string{"", "root"} {
		s := validScenario()
		s.Workers[0].Group = group
		if errs := s.Validate(); len(errs) != 0 {
			t.Errorf("worker group %q should be valid, got %v", group, errs)
		}
	}
}

func TestTotalWorkers(t *testing.T) {
	s := validScenario()
	if got := s.TotalWorkers(); got != 3 {
		t.Errorf("TotalWorkers() = %d, want 3", got)
	}
}

func TestWithWorkerCount(t *testing.T) {
	t.Run("expands round-robin", func(t *testing.T) {
		s := validScenario()
		out := s.WithWorkerCount(5)
		if got := out.TotalWorkers(); got != 5 {
			t.Fatalf("TotalWorkers() = %d, want 5", got)
		}
		// Two entries: 5 workers deal 3 to the first and 2 to the second
		if out.Workers[0].Count != 3 || out.Workers[1].Count != 2 {
			t.Errorf("counts = %d,%d, want 3,2", out.Workers[0].Count, out.Workers[1].Count)
		}
	})

	t.Run("shrinks and drops empty entries", func(t *testing.T) {
		s := validScenario()
		out := s.WithWorkerCount(1)
		if got := out.TotalWorkers(); got != 1 {
			t.Fatalf("TotalWorkers() = %d, want 1", got)
		}
		if len(out.Workers) != 1 || out.Workers[0].Group != "a" {
			t.Errorf("Workers = %+v, want single entry for group a", out.Workers)
		}
	})

	t.Run("no-op cases", func(t *testing.T) {
		s := validScenario()
		if out := s.WithWorkerCount(0); out != s {
			t.Error("WithWorkerCount(0) should return the scenario unchanged")
		}
		if out := s.WithWorkerCount(3); out != s {
			t.Error("WithWorkerCount(current total) should return the scenario unchanged")
		}
	})
}

func TestCompile(t *testing.T) {
	s := validScenario()
	c, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	wantNodes := []fairlock.Node{
		{ID: 0, Parent: 0, Weight: 0},
		{ID: 1, Parent: 0, Weight: 1024},
		{ID: 2, Parent: 1, Weight: 512},
	}
	if len(c.Nodes) != len(wantNodes) {
		t.Fatalf("Nodes length = %d, want %d", len(c.Nodes), len(wantNodes))
	}
	for i, want := range wantNodes {
		if c.Nodes[i] != want {
			t.Errorf("Nodes[%d] = %+v, want %+v", i, c.Nodes[i], want)
		}
	}

	wantNames := []string{"root", "a", "b"}
	for i, want := range wantNames {
		if c.GroupName[i] != want {
			t.Errorf("GroupName[%d] = %q, want %q", i, c.GroupName[i], want)
		}
	}

	wantWorkers := []Placement{
		{Group: "a", Parent: 1, Weight: 1024},
		{Group: "a", Parent: 1, Weight: 1024},
		{Group: "b", Parent: 2, Weight: 512},
	}
	if len(c.Workers) != len(wantWorkers) {
		t.Fatalf("Workers length = %d, want %d", len(c.Workers), len(wantWorkers))
	}
	for i, want := range wantWorkers {
		if c.Workers[i] != want {
			t.Errorf("Workers[%d] = %+v, want %+v", i, c.Workers[i], want)
		}
	}
}

func TestCompileRootPlacement(t *testing.T) {
	s := &Scenario{
		Name:    "flat",
		Workers: []Worker{{Group: "", Count: 2, Weight: 1024}},
	}
	c, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(c.Nodes) != 1 {
		t.Errorf("Nodes length = %d, want 1 (root only)", len(c.Nodes))
	}
	for i, w := range c.Workers {
		if w.Parent != 0 || w.Group != "root" {
			t.Errorf("Workers[%d] = %+v, want root placement", i, w)
		}
	}
}

func TestCompileInvalid(t *testing.T) {
	s := validScenario()
	s.Workers = nil
	_, err := s.Compile()
	if err == nil {
		t.Fatal("Compile() should fail validation")
	}
	if !strings.Contains(err.Error(), "workers") {
		t.Errorf("error = %v, want mention of workers", err)
	}
}

func TestResolve(t *testing.T) {
	t.Run("preset name", func(t *testing.T) {
		c, err := Resolve("flat", 4)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if c.Name != "flat" {
			t.Errorf("Name = %q, want %q", c.Name, "flat")
		}
		if len(c.Workers) != 4 {
			t.Errorf("Workers length = %d, want 4", len(c.Workers))
		}
	})

	t.Run("preset default workers", func(t *testing.T) {
		c, err := Resolve("flat", 0)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(c.Workers) != defaultPresetWorkers {
			t.Errorf("Workers length = %d, want %d", len(c.Workers), defaultPresetWorkers)
		}
	})

	t.Run("scenario file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenario.yaml")
		if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
			t.Fatalf("failed to write scenario file: %v", err)
		}

		c, err := Resolve(path, 0)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(c.Workers) != 3 {
			t.Errorf("Workers length = %d, want 3", len(c.Workers))
		}
	})

	t.Run("scenario file with worker override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenario.yaml")
		if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
			t.Fatalf("failed to write scenario file: %v", err)
		}

		c, err := Resolve(path, 6)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(c.Workers) != 6 {
			t.Errorf("Workers length = %d, want 6", len(c.Workers))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Resolve("no-such-scenario.yaml", 0)
		if err == nil {
			t.Fatal("Resolve() should fail for an unknown reference")
		}
	})
}
