package sim

import "fmt"

// PassengerType distinguishes the two passenger classes.
type PassengerType int

const (
	// Checked passengers carry a bag and must pass the security lane.
	Checked PassengerType = iota
	// Unchecked passengers carry nothing and take the fast lane.
	Unchecked
)

func (t PassengerType) String() string {
	switch t {
	case Checked:
		return "checked"
	case Unchecked:
		return "unchecked"
	default:
		return fmt.Sprintf("PassengerType(%d)", int(t))
	}
}

// Zone is one of the logical subareas a passenger occupies in sequence.
type Zone int

const (
	ZoneEntry Zone = iota
	ZoneSecurityLane
	ZoneFastLane
	ZonePreGate
	ZoneDeparted
)

func (z Zone) String() string {
	switch z {
	case ZoneEntry:
		return "entry"
	case ZoneSecurityLane:
		return "security-lane"
	case ZoneFastLane:
		return "fast-lane"
	case ZonePreGate:
		return "pre-gate"
	case ZoneDeparted:
		return "departed"
	default:
		return fmt.Sprintf("Zone(%d)", int(z))
	}
}

// Passenger is the per-passenger record driving the recurrence.
//
// Basic times are fixed exactly once, at the moment the passenger enters a
// zone, from that tick's density snapshot. Additional times accrue by one
// tick size for every tick the passenger is blocked from advancing and reset
// to zero on a successful transfer. Once Zone is ZoneDeparted the record is
// never mutated again.
type Passenger struct {
	Index int           // globally unique, monotonically assigned at arrival
	Type  PassengerType // Checked or Unchecked
	Zone  Zone          // current position

	// Zone entry timestamps (s)
	EnterEntry   float64 // arrival time
	EnterLane    float64 // entering the security or fast lane
	EnterPreGate float64 // entering the pre-gate holding area
	ExitTime     float64 // passing a gate and leaving the system

	// Basic (congestion-free) traversal times per zone (s)
	EntryBasic   float64
	LaneBasic    float64
	PreGateBasic float64 // includes the gate service time

	// Additional (blocked) waiting times per zone (s)
	EntryAdd   float64
	LaneAdd    float64
	PreGateAdd float64
}

// TotalTime is the passenger's full transit time through the corridor:
// the sum of all basic and all additional components.
func (p *Passenger) TotalTime() float64 {
	return p.EntryBasic + p.LaneBasic + p.PreGateBasic +
		p.EntryAdd + p.LaneAdd + p.PreGateAdd
}

// DueTime is the scheduled departure time from the passenger's current zone:
// zone entry time + basic time + accrued additional time. Passengers whose
// due time has reached the clock become transfer candidates.
func (p *Passenger) DueTime() float64 {
	switch p.Zone {
	case ZoneEntry:
		return p.EnterEntry + p.EntryBasic + p.EntryAdd
	case ZoneSecurityLane, ZoneFastLane:
		return p.EnterLane + p.LaneBasic + p.LaneAdd
	case ZonePreGate:
		return p.EnterPreGate + p.PreGateBasic + p.PreGateAdd
	default:
		return p.ExitTime
	}
}

func (p *Passenger) String() string {
	return fmt.Sprintf("Passenger(index=%d, type=%s, zone=%s, total=%.2fs)",
		p.Index, p.Type, p.Zone, p.TotalTime())
}
