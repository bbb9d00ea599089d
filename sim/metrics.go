package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/metro-sim/metro-sim/sim/history"
)

// TimeBreakdown is the per-class mean of each transit-time component
// (paper's time-decomposition analysis), over departed passengers only.
type TimeBreakdown struct {
	EntryBasic   float64
	EntryAdd     float64
	LaneBasic    float64
	LaneAdd      float64
	PreGateBasic float64
	PreGateAdd   float64
}

// Metrics aggregates the run-level statistics read by reporting layers
// (paper Eqs. 13-14 plus access/egress time and peaks).
type Metrics struct {
	DepartedChecked   int
	DepartedUnchecked int

	// Mean total transit time per class (s), departed passengers only.
	AvgTimeChecked   float64
	AvgTimeUnchecked float64

	// Total-time quantiles across both classes (s).
	P50TotalTime float64
	P90TotalTime float64
	P95TotalTime float64

	// AccessEgressTime is the exit timestamp of the last departed passenger.
	AccessEgressTime float64

	BreakdownChecked   TimeBreakdown
	BreakdownUnchecked TimeBreakdown

	Peaks history.Summary
}

// ComputeMetrics derives Metrics from a finished (or timed-out) state.
func ComputeMetrics(s *State) Metrics {
	m := Metrics{Peaks: history.Summarize(s.History)}

	var checked, unchecked []*Passenger
	for _, p := range s.Passengers {
		if p.Zone != ZoneDeparted {
			continue
		}
		if p.Type == Checked {
			checked = append(checked, p)
		} else {
			unchecked = append(unchecked, p)
		}
		if p.ExitTime > m.AccessEgressTime {
			m.AccessEgressTime = p.ExitTime
		}
	}
	m.DepartedChecked = len(checked)
	m.DepartedUnchecked = len(unchecked)

	totals := make([]float64, 0, len(checked)+len(unchecked))
	for _, p := range checked {
		totals = append(totals, p.TotalTime())
	}
	for _, p := range unchecked {
		totals = append(totals, p.TotalTime())
	}
	if len(totals) > 0 {
		sort.Float64s(totals)
		m.P50TotalTime = stat.Quantile(0.50, stat.Empirical, totals, nil)
		m.P90TotalTime = stat.Quantile(0.90, stat.Empirical, totals, nil)
		m.P95TotalTime = stat.Quantile(0.95, stat.Empirical, totals, nil)
	}

	m.AvgTimeChecked, m.BreakdownChecked = classStats(checked)
	m.AvgTimeUnchecked, m.BreakdownUnchecked = classStats(unchecked)
	return m
}

func classStats(ps []*Passenger) (float64, TimeBreakdown) {
	if len(ps) == 0 {
		return 0, TimeBreakdown{}
	}
	totals := make([]float64, len(ps))
	var b TimeBreakdown
	for i, p := range ps {
		totals[i] = p.TotalTime()
		b.EntryBasic += p.EntryBasic
		b.EntryAdd += p.EntryAdd
		b.LaneBasic += p.LaneBasic
		b.LaneAdd += p.LaneAdd
		b.PreGateBasic += p.PreGateBasic
		b.PreGateAdd += p.PreGateAdd
	}
	n := float64(len(ps))
	b.EntryBasic /= n
	b.EntryAdd /= n
	b.LaneBasic /= n
	b.LaneAdd /= n
	b.PreGateBasic /= n
	b.PreGateAdd /= n
	return stat.Mean(totals, nil), b
}

// Print writes the run summary to stdout.
func (m Metrics) Print(res Result) {
	fmt.Printf("Outcome              : %s\n", res.Outcome)
	fmt.Printf("Simulated time       : %.1f s (%d ticks)\n", res.EndTime, res.Ticks)
	fmt.Printf("Passengers           : %d arrived, %d departed\n", res.Arrived, res.Departed)
	fmt.Printf("Access/egress time   : %.2f s\n", m.AccessEgressTime)
	fmt.Printf("Avg transit (checked): %.2f s (n=%d)\n", m.AvgTimeChecked, m.DepartedChecked)
	fmt.Printf("Avg transit (uncheck): %.2f s (n=%d)\n", m.AvgTimeUnchecked, m.DepartedUnchecked)
	fmt.Printf("Total time p50/p90/p95: %.2f / %.2f / %.2f s\n", m.P50TotalTime, m.P90TotalTime, m.P95TotalTime)
	fmt.Printf("Peak security lane   : %d passengers (queue %d)\n", m.Peaks.PeakSecurityCount, m.Peaks.PeakSecurityQueue)
	fmt.Printf("Peak fast-lane density: %.4f /m²\n", m.Peaks.PeakFastLaneDensity)
	fmt.Printf("Peak pre-gate density : %.4f /m²\n", m.Peaks.PeakPreGateDensity)
}
