package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	sim "github.com/metro-sim/metro-sim/sim"
	"github.com/metro-sim/metro-sim/sim/history"
)

// WriteHistoryCSV dumps the per-tick history log, one row per tick.
func WriteHistoryCSV(path string, log *history.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"time", "entry", "security_lane", "fast_lane", "pre_gate",
		"departed", "fast_lane_density", "pre_gate_density", "security_queue",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range log.Records() {
		row := []string{
			strconv.FormatFloat(r.Time, 'f', 1, 64),
			strconv.Itoa(r.EntryCount),
			strconv.Itoa(r.SecurityCount),
			strconv.Itoa(r.FastLaneCount),
			strconv.Itoa(r.PreGateCount),
			strconv.Itoa(r.Departed),
			strconv.FormatFloat(r.FastLaneDensity, 'f', 6, 64),
			strconv.FormatFloat(r.PreGateDensity, 'f', 6, 64),
			strconv.Itoa(r.SecurityQueue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WritePassengerCSV dumps one row per passenger with the full transit-time
// decomposition. Passengers still in the system get an empty exit_time.
func WritePassengerCSV(path string, passengers []*sim.Passenger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"index", "type", "zone", "enter_entry", "exit_time", "total_time",
		"entry_basic", "entry_add", "lane_basic", "lane_add", "pre_gate_basic", "pre_gate_add",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range passengers {
		exit := ""
		if p.Zone == sim.ZoneDeparted {
			exit = strconv.FormatFloat(p.ExitTime, 'f', 1, 64)
		}
		row := []string{
			strconv.Itoa(p.Index),
			p.Type.String(),
			p.Zone.String(),
			strconv.FormatFloat(p.EnterEntry, 'f', 1, 64),
			exit,
			strconv.FormatFloat(p.TotalTime(), 'f', 3, 64),
			strconv.FormatFloat(p.EntryBasic, 'f', 3, 64),
			strconv.FormatFloat(p.EntryAdd, 'f', 3, 64),
			strconv.FormatFloat(p.LaneBasic, 'f', 3, 64),
			strconv.FormatFloat(p.LaneAdd, 'f', 3, 64),
			strconv.FormatFloat(p.PreGateBasic, 'f', 3, 64),
			strconv.FormatFloat(p.PreGateAdd, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteReport writes the text summary report to a file.
func WriteReport(path string, res sim.Result, m sim.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "outcome: %s\n", res.Outcome)
	fmt.Fprintf(f, "end_time_s: %.1f\n", res.EndTime)
	fmt.Fprintf(f, "ticks: %d\n", res.Ticks)
	fmt.Fprintf(f, "arrived: %d\n", res.Arrived)
	fmt.Fprintf(f, "departed: %d\n", res.Departed)
	fmt.Fprintf(f, "access_egress_time_s: %.2f\n", m.AccessEgressTime)
	fmt.Fprintf(f, "avg_time_checked_s: %.2f\n", m.AvgTimeChecked)
	fmt.Fprintf(f, "avg_time_unchecked_s: %.2f\n", m.AvgTimeUnchecked)
	fmt.Fprintf(f, "p50_total_time_s: %.2f\n", m.P50TotalTime)
	fmt.Fprintf(f, "p90_total_time_s: %.2f\n", m.P90TotalTime)
	fmt.Fprintf(f, "p95_total_time_s: %.2f\n", m.P95TotalTime)
	fmt.Fprintf(f, "peak_security_lane: %d\n", m.Peaks.PeakSecurityCount)
	fmt.Fprintf(f, "peak_security_queue: %d\n", m.Peaks.PeakSecurityQueue)
	fmt.Fprintf(f, "peak_fast_lane_density: %.4f\n", m.Peaks.PeakFastLaneDensity)
	fmt.Fprintf(f, "peak_pre_gate_density: %.4f\n", m.Peaks.PeakPreGateDensity)
	return nil
}
