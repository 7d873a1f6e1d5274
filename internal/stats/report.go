package stats

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"github.com/Iron-Ham/fairlock/internal/scenario"
)

// WorkerReport is one worker's row in the final report
type WorkerReport struct {
	Worker     int     `json:"worker"`
	Group      string  `json:"group"`
	Weight     int     `json:"weight"`
	Ops        uint64  `json:"ops"`
	OpsPerSec  float64 `json:"ops_per_sec"`
	Inserts    uint64  `json:"inserts"`
	Finds      uint64  `json:"finds"`
	Updates    uint64  `json:"updates"`
	Failures   uint64  `json:"failures,omitempty"`
	MeanWaitUS float64 `json:"mean_wait_us"`
	MeanHoldUS float64 `json:"mean_hold_us"`
	Violations uint64  `json:"violations"`
	Share      float64 `json:"share"`
}

// GroupReport aggregates the workers under one top-level group. Workers
// placed directly under the root pool into a synthetic "root" group.
type GroupReport struct {
	Group         string  `json:"group"`
	Weight        int     `json:"weight"`
	Workers       int     `json:"workers"`
	Ops           uint64  `json:"ops"`
	Share         float64 `json:"share"`
	ExpectedShare float64 `json:"expected_share"`
}

// Report is the complete result of one benchmark run
type Report struct {
	Scenario   string         `json:"scenario"`
	Locker     string         `json:"locker"`
	Engine     string         `json:"engine"`
	ElapsedSec float64        `json:"elapsed_sec"`
	TotalOps   uint64         `json:"total_ops"`
	OpsPerSec  float64        `json:"ops_per_sec"`
	Violations uint64         `json:"slice_violations"`
	JainIndex  float64        `json:"jain_index"`
	Variation  float64        `json:"throughput_variation"`
	Workers    []WorkerReport `json:"workers"`
	Groups     []GroupReport  `json:"groups"`
}

// Jain computes the Jain fairness index (Σx)² / (n·Σx²) over a slice of
// throughputs. 1.0 means perfectly even; 1/n means one worker took
// everything. Returns 0 when nothing ran, matching how a run with no
// operations reports.
func Jain(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, x := range xs {
		sum += x
		sumSq += x * x
	}
	if sumSq == 0 {
		return 0
	}
	return sum * sum / (float64(len(xs)) * sumSq)
}

// Variation computes the throughput spread (max-min)/avg. Returns 0 when
// nothing ran.
func Variation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	min, max, sum := xs[0], xs[0], 0.0
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
		sum += x
	}
	avg := sum / float64(len(xs))
	if avg == 0 {
		return 0
	}
	return (max - min) / avg
}

// Build assembles a report from a compiled scenario and the counters its
// workers collected. Counters must be indexed like c.Workers.
func Build(c *scenario.Compiled, counters []*Counters, elapsed time.Duration, locker, engine string) *Report {
	r := &Report{
		Scenario:   c.Name,
		Locker:     locker,
		Engine:     engine,
		ElapsedSec: elapsed.Seconds(),
	}

	var totalOps uint64
	for _, ctr := range counters {
		totalOps += ctr.Ops()
	}
	r.TotalOps = totalOps
	if r.ElapsedSec > 0 {
		r.OpsPerSec = float64(totalOps) / r.ElapsedSec
	}

	throughputs := make([]float64, len(counters))
	for i, ctr := range counters {
		w := c.Workers[i]
		ops := ctr.Ops()
		acquires := ctr.Acquires.Load()

		row := WorkerReport{
			Worker:     i,
			Group:      w.Group,
			Weight:     w.Weight,
			Ops:        ops,
			Inserts:    ctr.Inserts.Load(),
			Finds:      ctr.Finds.Load(),
			Updates:    ctr.Updates.Load(),
			Failures:   ctr.Failures.Load(),
			Violations: ctr.Violations.Load(),
		}
		if r.ElapsedSec > 0 {
			row.OpsPerSec = float64(ops) / r.ElapsedSec
		}
		if acquires > 0 {
			row.MeanWaitUS = float64(ctr.WaitTicks.Load()) / float64(acquires) / 1000
			row.MeanHoldUS = float64(ctr.HoldTicks.Load()) / float64(acquires) / 1000
		}
		if totalOps > 0 {
			row.Share = float64(ops) / float64(totalOps)
		}
		r.Violations += row.Violations

		throughputs[i] = float64(ops)
		r.Workers = append(r.Workers, row)
	}

	r.JainIndex = Jain(throughputs)
	r.Variation = Variation(throughputs)
	r.Groups = buildGroups(c, r.Workers, totalOps)

	return r
}

// buildGroups aggregates worker rows by their top-level group. The
// expected share of a group is its weight against the other occupied
// root children, which is exactly what the lock arbitrates at the top
// of each descent. Workers directly under the root compete individually
// and pool into a synthetic "root" group weighted by their sum.
func buildGroups(c *scenario.Compiled, workers []WorkerReport, totalOps uint64) []GroupReport {
	type bucket struct {
		name    string
		weight  int
		workers int
		ops     uint64
	}
	buckets := make(map[int]*bucket)

	for i, w := range c.Workers {
		top := topLevel(c, w.Parent)
		b, ok := buckets[top]
		if !ok {
			b = &bucket{name: c.GroupName[top]}
			if top != 0 {
				b.weight = c.Nodes[top].Weight
			}
			buckets[top] = b
		}
		if top == 0 {
			// Root-placed leaves each compete with their own weight
			b.weight += w.Weight
		}
		b.workers++
		b.ops += workers[i].Ops
	}

	ids := make([]int, 0, len(buckets))
	totalWeight := 0
	for id, b := range buckets {
		ids = append(ids, id)
		totalWeight += b.weight
	}
	sort.Ints(ids)

	groups := make([]GroupReport, 0, len(buckets))
	for _, id := range ids {
		b := buckets[id]
		g := GroupReport{
			Group:   b.name,
			Weight:  b.weight,
			Workers: b.workers,
			Ops:     b.ops,
		}
		if totalOps > 0 {
			g.Share = float64(b.ops) / float64(totalOps)
		}
		if totalWeight > 0 {
			g.ExpectedShare = float64(b.weight) / float64(totalWeight)
		}
		groups = append(groups, g)
	}
	return groups
}

// topLevel walks from a placement parent up to the root's child that
// contains it. Parent 0 means the worker leaf itself hangs off the root.
func topLevel(c *scenario.Compiled, parent int) int {
	id := parent
	for id != 0 && c.Nodes[id].Parent != 0 {
		id = c.Nodes[id].Parent
	}
	return id
}

// JSON encodes the report as indented JSON
func (r *Report) JSON() ([]byte, error) {
	return sonnet.MarshalIndent(r, "", "  ")
}

// WriteJSON writes the report as JSON to the given path
func (r *Report) WriteJSON(path string) error {
	data, err := r.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
