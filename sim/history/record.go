// Package history provides the append-only per-tick history log exposed by
// the simulation engine. This package has no dependencies on sim/; it stores
// pure data types read by reporting layers.
package history

// Record captures the system state at the end of one tick.
type Record struct {
	Time float64 // simulation clock T (s)

	// Per-zone occupancy counts
	EntryCount    int
	SecurityCount int
	FastLaneCount int
	PreGateCount  int
	Departed      int // cumulative passengers past the gates

	// Per-zone densities at the end of the tick, consistent with the counts
	// above (passengers/m²)
	FastLaneDensity float64
	PreGateDensity  float64

	// SecurityQueue is the number of checked passengers held in the entry
	// area past their due time, waiting for the security lane.
	SecurityQueue int
}
