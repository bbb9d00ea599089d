// Package sim provides the core discrete-time recurrence engine for the
// metro security-and-ticketing corridor simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - passenger.go: Passenger record and zone lifecycle (Entry → lane → pre-gate → departed)
//   - transit.go: basic (congestion-free) traversal time formulas per zone
//   - engine.go: the fixed per-tick sequence (arrivals, snapshot, ordered transfers, conservation check)
//
// # Architecture
//
// The sim package holds the engine and its policies; supporting code lives in
// sub-packages:
//   - sim/history/: append-only per-tick records and peak summaries (pure data, no sim deps)
//   - sim/workload/: arrival-rate pattern constructors (uniform, pulsed, wave, rush-hour)
//
// # Key Extension Points
//
// Admission behavior is pluggable through two small interfaces:
//   - SecurityPolicy: how many queued passengers may enter the security lane per tick
//   - GatePolicy: how many pre-gate passengers may pass the gate bank per tick
//
// Both are selected by name via factory functions, mirroring the two competing
// physical models found in the published queueing analysis.
package sim
