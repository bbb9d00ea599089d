package sim

// Basic traversal times (paper Eqs. 1-8). All of these are pure functions of
// the parameter set, the passenger type, and a density value. The engine
// always passes the density snapshot taken at the start of the current tick,
// never a live occupancy ratio. That is the discrete synchronous update rule.

// EntryTime is the free-flow walk from the entrance to the passenger's lane
// (Eqs. 1-2). Checked passengers walk the longer approach to the security
// lane; density never applies in the entry area.
func (p Params) EntryTime(t PassengerType) float64 {
	if t == Checked {
		return p.EntryToSecurity / p.FreeFlowSpeed
	}
	return p.EntryToFastLane / p.FreeFlowSpeed
}

// SecurityTime is the rigid three-stage inspection cycle (Eq. 3):
// place the bag, ride the conveyor, retrieve the bag. It models a fixed
// service resource and is independent of occupancy.
func (p Params) SecurityTime() float64 {
	return p.PlaceItemTime + p.ConveyorDwell() + p.RetrieveItemTime
}

// FastLaneTime is the fast-lane walk at the given density (Eqs. 4-5).
func (p Params) FastLaneTime(density float64) float64 {
	return p.FastLaneLength / p.SpeedFastLane(density)
}

// PreGateTime is the walk from the lane exit to the gate bank plus the card
// tap (Eqs. 6-8). The gate service time is embedded here so the gate transfer
// itself never double-counts it; the gate step is a pure capacity constraint.
func (p Params) PreGateTime(t PassengerType, density float64) float64 {
	v := p.SpeedPreGate(density)
	if t == Checked {
		return p.SecurityToGates/v + p.GateServiceTime
	}
	return p.FastLaneToGates/v + p.GateServiceTime
}
