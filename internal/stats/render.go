package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

const ruleWidth = 92

func section(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", ruleWidth)))
	b.WriteString("\n")
}

// Render produces the human-readable report
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString("\n")
	section(&b, "RUN")
	b.WriteString(fmt.Sprintf("Scenario: %s\n", r.Scenario))
	b.WriteString(fmt.Sprintf("Locker:   %s\n", r.Locker))
	b.WriteString(fmt.Sprintf("Engine:   %s\n", r.Engine))
	b.WriteString(fmt.Sprintf("Elapsed:  %.2fs\n", r.ElapsedSec))
	b.WriteString(fmt.Sprintf("Total:    %d ops (%.1f ops/sec)\n", r.TotalOps, r.OpsPerSec))
	b.WriteString("\n")

	section(&b, "WORKERS")
	b.WriteString("Worker | Group        | Weight |      Ops |  Ops/sec | Wait(µs) | Hold(µs) | Violations | Share\n")
	b.WriteString("-------|--------------|--------|----------|----------|----------|----------|------------|------\n")
	for _, w := range r.Workers {
		b.WriteString(fmt.Sprintf("  %3d  | %-12s | %6d | %8d | %8.1f | %8.2f | %8.2f | %10d | %4.1f%%\n",
			w.Worker, w.Group, w.Weight, w.Ops, w.OpsPerSec,
			w.MeanWaitUS, w.MeanHoldUS, w.Violations, w.Share*100))
	}
	b.WriteString("\n")

	section(&b, "GROUPS")
	b.WriteString("Group        | Weight | Workers |      Ops |  Share | Expected\n")
	b.WriteString("-------------|--------|---------|----------|--------|---------\n")
	for _, g := range r.Groups {
		b.WriteString(fmt.Sprintf("%-12s | %6d | %7d | %8d | %5.1f%% | %7.1f%%\n",
			g.Group, g.Weight, g.Workers, g.Ops, g.Share*100, g.ExpectedShare*100))
	}
	b.WriteString("\n")

	section(&b, "FAIRNESS")
	minOps, maxOps := minMaxOps(r.Workers)
	avgOps := 0.0
	if len(r.Workers) > 0 {
		avgOps = float64(r.TotalOps) / float64(len(r.Workers))
	}
	b.WriteString(fmt.Sprintf("Min ops: %d, Max ops: %d, Avg ops: %.1f\n", minOps, maxOps, avgOps))
	b.WriteString(fmt.Sprintf("Jain index: %s\n", renderJain(r.JainIndex)))
	b.WriteString(fmt.Sprintf("Throughput variation: %.1f%% (max-min)/avg\n", r.Variation*100))
	b.WriteString(fmt.Sprintf("Slice violations: %d\n", r.Violations))

	return b.String()
}

// renderJain colors the index by the usual reading: ≥0.80 is good,
// below that is worth a look
func renderJain(jain float64) string {
	s := fmt.Sprintf("%.4f", jain)
	if jain >= 0.80 {
		return goodStyle.Render(s)
	}
	return warnStyle.Render(s)
}

func minMaxOps(workers []WorkerReport) (uint64, uint64) {
	if len(workers) == 0 {
		return 0, 0
	}
	min, max := workers[0].Ops, workers[0].Ops
	for _, w := range workers[1:] {
		if w.Ops < min {
			min = w.Ops
		}
		if w.Ops > max {
			max = w.Ops
		}
	}
	return min, max
}

// RenderCompare produces a side-by-side summary of several runs of the
// same workload under different lockers
func RenderCompare(reports []*Report) string {
	var b strings.Builder

	b.WriteString("\n")
	section(&b, "COMPARISON")
	if len(reports) > 0 {
		b.WriteString(fmt.Sprintf("Scenario: %s, engine: %s\n\n", reports[0].Scenario, reports[0].Engine))
	}
	b.WriteString("Locker   |  Ops/sec |   Jain | Variation | Violations | Min share | Max share\n")
	b.WriteString("---------|----------|--------|-----------|------------|-----------|----------\n")
	for _, r := range reports {
		minShare, maxShare := 1.0, 0.0
		if len(r.Workers) == 0 {
			minShare = 0
		}
		for _, w := range r.Workers {
			if w.Share < minShare {
				minShare = w.Share
			}
			if w.Share > maxShare {
				maxShare = w.Share
			}
		}
		b.WriteString(fmt.Sprintf("%-8s | %8.1f | %s | %8.1f%% | %10d | %8.1f%% | %8.1f%%\n",
			r.Locker, r.OpsPerSec, renderJain(r.JainIndex), r.Variation*100,
			r.Violations, minShare*100, maxShare*100))
	}

	return b.String()
}
