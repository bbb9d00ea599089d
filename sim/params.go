package sim

import (
	"fmt"
	"math"
)

// minWalkSpeed is the numerical floor for the density-speed polynomial.
// Keeps traversal times finite when the cubic dips below zero at extreme
// densities.
const minWalkSpeed = 0.01

// Params holds the immutable geometric, speed, density and service constants
// of the corridor (paper Table 2). Construct once per run via NewParams or
// DefaultParams; the engine never mutates it.
type Params struct {
	// Geometry (m, m²)
	EntryToSecurity float64 // walking distance from entrance to the security lane
	EntryToFastLane float64 // walking distance from entrance to the fast lane
	FastLaneLength  float64 // fast-lane corridor length
	ConveyorLength  float64 // X-ray conveyor belt length
	SecurityToGates float64 // security-lane exit to gate bank
	FastLaneToGates float64 // fast-lane exit to gate bank
	FastLaneArea    float64 // fast-lane floor area
	PreGateArea     float64 // pre-gate holding area floor area

	// Body and luggage dimensions (m)
	BodyWidth float64 // passenger shoulder width, limits side-by-side lane entry
	BagDepth  float64 // bag depth on the conveyor, limits belt occupancy

	// Speeds (m/s)
	FreeFlowSpeed float64 // unobstructed walking speed
	ConveyorSpeed float64 // X-ray conveyor belt speed

	// Density thresholds (passengers/m²)
	FastLaneInitDensity float64 // below this the fast lane is free-flow
	FastLaneMaxDensity  float64 // at or above this the fast lane admits nobody
	PreGateInitDensity  float64 // below this the pre-gate area is free-flow
	PreGateMaxDensity   float64 // density capacity of the pre-gate area

	// Service durations (s)
	PlaceItemTime    float64 // putting a bag on the conveyor
	RetrieveItemTime float64 // collecting a bag from the conveyor
	GateServiceTime  float64 // card tap / QR scan at a gate

	GateCount int // parallel fare gates

	TickSize float64 // Δt, the discrete time step (s)
}

// DefaultParams returns the published parameter set (paper Table 2).
func DefaultParams() Params {
	return Params{
		EntryToSecurity: 5.36,
		EntryToFastLane: 4.69,
		FastLaneLength:  4.55,
		ConveyorLength:  2.3,
		SecurityToGates: 3.65,
		FastLaneToGates: 4.07,
		FastLaneArea:    10.2,
		PreGateArea:     29.7,

		BodyWidth: 0.45,
		BagDepth:  0.15,

		FreeFlowSpeed: 1.61,
		ConveyorSpeed: 0.2,

		FastLaneInitDensity: 0.31,
		FastLaneMaxDensity:  3.5,
		PreGateInitDensity:  0.31,
		PreGateMaxDensity:   3.5,

		PlaceItemTime:    2.0,
		RetrieveItemTime: 2.0,
		GateServiceTime:  3.5,

		GateCount: 5,

		TickSize: 0.1,
	}
}

// NewParams validates p and returns it unchanged. Configuration defects fail
// here, never mid-simulation.
func NewParams(p Params) (Params, error) {
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks every constant the recurrence depends on. A zero or
// negative value in any of these fields would otherwise surface as a
// division blow-up or a permanently blocked transfer deep inside a run.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"entry-to-security distance", p.EntryToSecurity},
		{"entry-to-fast-lane distance", p.EntryToFastLane},
		{"fast-lane length", p.FastLaneLength},
		{"conveyor length", p.ConveyorLength},
		{"security-to-gates distance", p.SecurityToGates},
		{"fast-lane-to-gates distance", p.FastLaneToGates},
		{"fast-lane area", p.FastLaneArea},
		{"pre-gate area", p.PreGateArea},
		{"body width", p.BodyWidth},
		{"bag depth", p.BagDepth},
		{"free-flow speed", p.FreeFlowSpeed},
		{"conveyor speed", p.ConveyorSpeed},
		{"fast-lane max density", p.FastLaneMaxDensity},
		{"pre-gate max density", p.PreGateMaxDensity},
		{"tick size", p.TickSize},
	}
	for _, f := range positive {
		if f.value <= 0 {
			return fmt.Errorf("params: %s must be positive, got %v", f.name, f.value)
		}
	}
	if p.FastLaneInitDensity < 0 || p.PreGateInitDensity < 0 {
		return fmt.Errorf("params: init densities must be non-negative, got fast-lane=%v pre-gate=%v",
			p.FastLaneInitDensity, p.PreGateInitDensity)
	}
	if p.FastLaneInitDensity >= p.FastLaneMaxDensity {
		return fmt.Errorf("params: fast-lane init density %v must be below max density %v",
			p.FastLaneInitDensity, p.FastLaneMaxDensity)
	}
	if p.PreGateInitDensity >= p.PreGateMaxDensity {
		return fmt.Errorf("params: pre-gate init density %v must be below max density %v",
			p.PreGateInitDensity, p.PreGateMaxDensity)
	}
	if p.PlaceItemTime < 0 || p.RetrieveItemTime < 0 || p.GateServiceTime < 0 {
		return fmt.Errorf("params: service durations must be non-negative")
	}
	if p.GateCount <= 0 {
		return fmt.Errorf("params: gate count must be positive, got %d", p.GateCount)
	}
	return nil
}

// FastLaneWidth derives the lane width from the rectangular-corridor
// approximation: width = area / length.
func (p Params) FastLaneWidth() float64 {
	return p.FastLaneArea / p.FastLaneLength
}

// ConveyorDwell is the time a bag spends on the belt: length / belt speed.
func (p Params) ConveyorDwell() float64 {
	return p.ConveyorLength / p.ConveyorSpeed
}

// ConveyorCapacity is the number of bags that fit on the belt end to end.
func (p Params) ConveyorCapacity() int {
	return int(p.ConveyorLength / p.BagDepth)
}

// SpeedFastLane returns the fast-lane walking speed at density k
// (paper Eq. 5): free-flow below the init threshold, the calibrated cubic
// above it, floored at minWalkSpeed.
func (p Params) SpeedFastLane(k float64) float64 {
	return congestedSpeed(k, p.FastLaneInitDensity, p.FreeFlowSpeed)
}

// SpeedPreGate returns the pre-gate walking speed at density k (paper Eq. 8,
// same functional form as the fast lane).
func (p Params) SpeedPreGate(k float64) float64 {
	return congestedSpeed(k, p.PreGateInitDensity, p.FreeFlowSpeed)
}

// congestedSpeed is the shared piecewise density-speed relation. The cubic
// coefficients are the paper's calibration and are deliberately not
// configurable.
func congestedSpeed(k, initDensity, freeFlow float64) float64 {
	if k <= initDensity {
		return freeFlow
	}
	x := k - initDensity
	v := 0.11*math.Pow(x, 3) - 0.53*math.Pow(x, 2) + 0.15*x + 1.61
	return math.Max(v, minWalkSpeed)
}
