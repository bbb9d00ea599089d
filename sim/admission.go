package sim

import "fmt"

// Admission control (paper Eqs. 9-12). Every function here is stateless and
// deterministic: given the same candidate count, occupancy and density it
// returns the same k, and the engine transfers exactly the first k candidates
// in index order. No function in this file mutates anything.

// SecurityPolicy decides how many entry-area candidates may enter the
// security lane in one tick. The published analysis contains two competing
// physical models for this lane, so the choice is an explicit, named
// configuration rather than a silent pick.
type SecurityPolicy interface {
	// Admit returns k in [0, candidates] given the lane's occupancy at the
	// time the transfer executes.
	Admit(candidates, occupancy int, p Params) int
	Name() string
}

// SingleServer models the lane as a strict single-server queue: at most one
// passenger starts inspection per tick, and nobody enters while the conveyor
// is packed to its bag capacity.
type SingleServer struct{}

func (SingleServer) Name() string { return "single-server" }

func (SingleServer) Admit(candidates, occupancy int, p Params) int {
	if occupancy >= p.ConveyorCapacity() {
		return 0
	}
	return min(candidates, 1)
}

// StaticThickness is the hard-switch variant (Eq. 9): the conveyor dwell
// L/v acts as a capacity proxy; while occupancy exceeds it, the lane admits
// nobody, otherwise it admits every candidate.
type StaticThickness struct{}

func (StaticThickness) Name() string { return "static-thickness" }

func (StaticThickness) Admit(candidates, occupancy int, p Params) int {
	if float64(occupancy) > p.ConveyorDwell() {
		return 0
	}
	return candidates
}

// ValidSecurityPolicies lists the recognized security-lane policy names.
var ValidSecurityPolicies = []string{"single-server", "static-thickness"}

// NewSecurityPolicy creates a security-lane policy by name. An empty string
// defaults to single-server (for CLI flag default compatibility). Panics on
// unrecognized names.
func NewSecurityPolicy(name string) SecurityPolicy {
	switch name {
	case "", "single-server":
		return SingleServer{}
	case "static-thickness":
		return StaticThickness{}
	default:
		panic(fmt.Sprintf("unknown security policy %q; valid policies: %v", name, ValidSecurityPolicies))
	}
}

// GatePolicy decides how many pre-gate candidates pass the gate bank in one
// tick. The gate service time is already part of the pre-gate basic time, so
// both policies are pure throughput constraints.
type GatePolicy interface {
	// Admit returns k in [0, candidates]. freeGates is the number of gates
	// whose busy-until timestamp has elapsed; FixedCount ignores it.
	Admit(candidates, freeGates int, p Params) int
	Name() string
	// Tracked reports whether the engine must maintain per-gate busy-until
	// timestamps for this policy.
	Tracked() bool
}

// FixedCount admits up to the gate count every tick (simplified mode).
type FixedCount struct{}

func (FixedCount) Name() string  { return "fixed-count" }
func (FixedCount) Tracked() bool { return false }

func (FixedCount) Admit(candidates, _ int, p Params) int {
	return min(candidates, p.GateCount)
}

// PerGate admits only as many passengers as there are idle gates; each
// admission occupies one gate for the gate service time.
type PerGate struct{}

func (PerGate) Name() string  { return "per-gate" }
func (PerGate) Tracked() bool { return true }

func (PerGate) Admit(candidates, freeGates int, _ Params) int {
	if freeGates < 0 {
		freeGates = 0
	}
	return min(candidates, freeGates)
}

// ValidGatePolicies lists the recognized gate policy names.
var ValidGatePolicies = []string{"fixed-count", "per-gate"}

// NewGatePolicy creates a gate policy by name. An empty string defaults to
// fixed-count. Panics on unrecognized names.
func NewGatePolicy(name string) GatePolicy {
	switch name {
	case "", "fixed-count":
		return FixedCount{}
	case "per-gate":
		return PerGate{}
	default:
		panic(fmt.Sprintf("unknown gate policy %q; valid policies: %v", name, ValidGatePolicies))
	}
}

// AdmitFastLane applies the fast lane's triple constraint (Eqs. 10-11), most
// restrictive wins:
//   - at or above max density the lane is fully blocked
//   - side-by-side entries are capped by lane width over body width
//   - total occupancy is capped by the remaining density capacity
func AdmitFastLane(candidates, occupancy int, density float64, p Params) int {
	if density >= p.FastLaneMaxDensity {
		return 0
	}
	parallel := int(p.FastLaneWidth() / p.BodyWidth)
	remaining := int(p.FastLaneArea*p.FastLaneMaxDensity) - occupancy
	if remaining <= 0 {
		return 0
	}
	return min(candidates, parallel, remaining)
}

// AdmitPreGate applies the pre-gate holding area's density capacity
// constraint (Eq. 12), floored at zero.
func AdmitPreGate(candidates, occupancy int, p Params) int {
	remaining := int(p.PreGateArea*p.PreGateMaxDensity) - occupancy
	if remaining < 0 {
		remaining = 0
	}
	return min(candidates, remaining)
}
