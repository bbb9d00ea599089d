package sim

import (
	"fmt"

	"github.com/metro-sim/metro-sim/sim/history"
)

// State is the aggregate system state advanced by the engine: the clock, all
// passenger records, cached per-zone occupancy counters, the fractional
// arrival accumulators, the gate bank, and the append-only history log.
//
// The counters are the single source of truth for occupancy during a tick;
// they are mutated only inside the engine's ordered transfer phases.
type State struct {
	Params Params
	Clock  float64 // current tick time T (s)

	Passengers []*Passenger

	// nextIndex is the explicit passenger-numbering counter, incremented
	// only inside the arrivals sub-step.
	nextIndex int

	// Fractional arrival accumulators carry sub-integer arrival rates
	// across ticks without bias.
	accChecked   float64
	accUnchecked float64

	// Per-zone occupancy counters
	EntryCount    int
	SecurityCount int
	FastLaneCount int
	PreGateCount  int

	Departed int // cumulative passengers past the gates
	Arrived  int // cumulative passengers created

	// gateBusyUntil holds one busy-until timestamp per gate; used only by
	// gate policies that report Tracked().
	gateBusyUntil []float64

	History *history.Log
}

// NewState creates an empty system state for the given (validated) parameters.
func NewState(p Params) *State {
	return &State{
		Params:        p,
		Passengers:    make([]*Passenger, 0),
		gateBusyUntil: make([]float64, p.GateCount),
		History:       history.NewLog(),
	}
}

// FastLaneDensity is the live fast-lane occupancy/area ratio.
func (s *State) FastLaneDensity() float64 {
	return float64(s.FastLaneCount) / s.Params.FastLaneArea
}

// PreGateDensity is the live pre-gate occupancy/area ratio.
func (s *State) PreGateDensity() float64 {
	return float64(s.PreGateCount) / s.Params.PreGateArea
}

// FreeGates counts the gates whose busy-until timestamp has elapsed.
func (s *State) FreeGates() int {
	n := 0
	for _, until := range s.gateBusyUntil {
		if until <= s.Clock+timeEps {
			n++
		}
	}
	return n
}

// occupyGate marks one idle gate busy for the gate service time. Returns
// false if every gate is busy; the admission bound makes that unreachable in
// a correct tick.
func (s *State) occupyGate() bool {
	for i, until := range s.gateBusyUntil {
		if until <= s.Clock+timeEps {
			s.gateBusyUntil[i] = s.Clock + s.Params.GateServiceTime
			return true
		}
	}
	return false
}

// SecurityQueue counts checked passengers held in the entry area past their
// due time: the visible queue in front of the security lane.
func (s *State) SecurityQueue() int {
	n := 0
	for _, p := range s.Passengers {
		if p.Zone == ZoneEntry && p.Type == Checked && p.EntryAdd > 0 {
			n++
		}
	}
	return n
}

// ConservationError reports a violated conservation invariant: the zone
// counters plus the departed total no longer account for every passenger
// ever created. It signals a defect in transfer logic and aborts the run.
type ConservationError struct {
	Time     float64
	InZones  int
	Departed int
	Arrived  int
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("conservation violated at T=%.1fs: zones=%d departed=%d, want total %d (diff %+d)",
		e.Time, e.InZones, e.Departed, e.Arrived, e.InZones+e.Departed-e.Arrived)
}

// CheckConservation verifies Σ(zone counts) + departed == total arrivals.
func (s *State) CheckConservation() error {
	inZones := s.EntryCount + s.SecurityCount + s.FastLaneCount + s.PreGateCount
	if inZones+s.Departed != s.Arrived {
		return &ConservationError{
			Time:     s.Clock,
			InZones:  inZones,
			Departed: s.Departed,
			Arrived:  s.Arrived,
		}
	}
	return nil
}

func (s *State) String() string {
	return fmt.Sprintf("State(T=%.1fs, passengers=%d, departed=%d/%d)",
		s.Clock, len(s.Passengers), s.Departed, s.Arrived)
}
