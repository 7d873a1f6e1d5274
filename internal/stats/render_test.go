package stats

import (
	"strings"
	"testing"
	"time"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	c := compiled(t)
	counters := []*Counters{{}, {}, {}}
	fill(counters[0], 300, 2)
	fill(counters[1], 150, 0)
	fill(counters[2], 150, 1)
	return Build(c, counters, 10*time.Second, "hfl", "memory")
}

func TestRender(t *testing.T) {
	out := sampleReport(t).Render()

	for _, want := range []string{
		"RUN",
		"Scenario: test",
		"Locker:   hfl",
		"Engine:   memory",
		"Total:    600 ops (60.0 ops/sec)",
		"WORKERS",
		"GROUPS",
		"FAIRNESS",
		"Min ops: 150, Max ops: 300, Avg ops: 200.0",
		"Slice violations: 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
}

func TestRenderWorkerRows(t *testing.T) {
	out := sampleReport(t).Render()

	lines := strings.Split(out, "\n")
	rows := 0
	for _, line := range lines {
		if strings.Contains(line, "| a ") || strings.Contains(line, "| b ") {
			rows++
		}
	}
	// Worker rows carry the group name in the second column
	if rows != 3 {
		t.Errorf("got %d worker rows, want 3\n%s", rows, out)
	}
}

func TestRenderJainThreshold(t *testing.T) {
	// Both land in the output regardless of color profile
	if !strings.Contains(renderJain(0.95), "0.9500") {
		t.Error("renderJain(0.95) should contain the formatted index")
	}
	if !strings.Contains(renderJain(0.42), "0.4200") {
		t.Error("renderJain(0.42) should contain the formatted index")
	}
}

func TestRenderCompare(t *testing.T) {
	hfl := sampleReport(t)
	mutex := sampleReport(t)
	mutex.Locker = "mutex"

	out := RenderCompare([]*Report{hfl, mutex})

	for _, want := range []string{
		"COMPARISON",
		"Scenario: test, engine: memory",
		"hfl",
		"mutex",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderCompare() missing %q\n%s", want, out)
		}
	}
}

func TestRenderCompareEmpty(t *testing.T) {
	out := RenderCompare(nil)
	if !strings.Contains(out, "COMPARISON") {
		t.Errorf("RenderCompare(nil) missing header\n%s", out)
	}
}
