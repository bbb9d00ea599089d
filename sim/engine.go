package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/metro-sim/metro-sim/sim/history"
)

// timeEps absorbs float accumulation when comparing due times against the
// clock. The clock itself is re-rounded to 1 µs after every advance.
const timeEps = 1e-9

// RateFunc supplies the two class arrival rates (passengers/s) at time t.
// Time-varying shapes (pulses, ramps, waves) are the caller's responsibility;
// the engine invokes it exactly once per tick.
type RateFunc func(t float64) (checked, unchecked float64)

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeDrained means every arrived passenger departed.
	OutcomeDrained Outcome = "drained"
	// OutcomeTimedOut means the safety ceiling was hit before the system
	// drained. A reportable result, not a crash.
	OutcomeTimedOut Outcome = "timed-out"
	// OutcomeAborted means an internal-consistency defect stopped the run;
	// it only ever accompanies a non-nil error.
	OutcomeAborted Outcome = "aborted"
)

// Result summarizes a completed run.
type Result struct {
	Outcome  Outcome
	EndTime  float64
	Ticks    int
	Arrived  int
	Departed int
}

// Engine advances the system state one tick at a time through the fixed,
// non-reorderable sub-step sequence. It is single-threaded by design;
// determinism is a hard requirement and candidate ordering is always by
// passenger index.
type Engine struct {
	State    *State
	Rate     RateFunc
	Security SecurityPolicy
	Gate     GatePolicy

	// MaxTime is the safety ceiling (s) for Run; reaching it yields
	// OutcomeTimedOut rather than an error.
	MaxTime float64

	// ArrivalEnd marks the end of the arrival window (s). Run suppresses
	// drain detection until the clock reaches it: a quiet gap inside a
	// pattern must not end the run before a later platoon arrives.
	ArrivalEnd float64

	ticks int
}

// NewEngine validates the parameter set and assembles an engine. Nil policies
// default to single-server and fixed-count.
func NewEngine(p Params, rate RateFunc, security SecurityPolicy, gate GatePolicy, maxTime float64) (*Engine, error) {
	if _, err := NewParams(p); err != nil {
		return nil, err
	}
	if rate == nil {
		rate = func(float64) (float64, float64) { return 0, 0 }
	}
	if security == nil {
		security = SingleServer{}
	}
	if gate == nil {
		gate = FixedCount{}
	}
	return &Engine{
		State:    NewState(p),
		Rate:     rate,
		Security: security,
		Gate:     gate,
		MaxTime:  maxTime,
	}, nil
}

// snapshot holds the densities captured at the start of a tick, before any
// transfer mutates occupancy. Every basic-time computation within the tick
// reads this value and nothing else, which makes the discrete synchronous
// update rule structural rather than a comment.
type snapshot struct {
	FastLaneDensity float64
	PreGateDensity  float64
	FreeGates       int
}

// candidates groups the per-transition FIFO candidate lists for one tick.
// Lists are ordered by passenger index; lanesToPreGate merges both lane
// sources into a single queue.
type candidates struct {
	preGateToGate   []*Passenger
	lanesToPreGate  []*Passenger
	entryToSecurity []*Passenger
	entryToFastLane []*Passenger
}

// Tick executes one fixed-order recurrence step. Reordering these phases
// corrupts density-synchronized time computation or starves upstream zones.
func (e *Engine) Tick() error {
	s := e.State

	// Phase 1: arrivals.
	e.generateArrivals()

	// Phase 2: density snapshot, before any transfer this tick.
	snap := snapshot{
		FastLaneDensity: s.FastLaneDensity(),
		PreGateDensity:  s.PreGateDensity(),
		FreeGates:       s.FreeGates(),
	}

	// Phase 3: candidate construction from due times.
	cands := e.collectCandidates()

	// Phases 4-6: ordered transfers, downstream before upstream, so slots
	// vacated this tick are visible to the transfer feeding them.
	e.transferPreGateToGates(cands.preGateToGate, snap)
	e.transferLanesToPreGate(cands.lanesToPreGate, snap)
	e.transferEntryToLanes(cands.entryToSecurity, cands.entryToFastLane, snap)

	// Phase 7: history record. Counts and densities are both the end-of-tick
	// values, so every row is internally consistent.
	s.History.Append(history.Record{
		Time:            s.Clock,
		EntryCount:      s.EntryCount,
		SecurityCount:   s.SecurityCount,
		FastLaneCount:   s.FastLaneCount,
		PreGateCount:    s.PreGateCount,
		Departed:        s.Departed,
		FastLaneDensity: s.FastLaneDensity(),
		PreGateDensity:  s.PreGateDensity(),
		SecurityQueue:   s.SecurityQueue(),
	})

	// Phase 8: conservation check. A violation is an internal defect and
	// aborts the run; it is never silently corrected.
	if err := s.CheckConservation(); err != nil {
		return err
	}

	// Phase 9: clock advance, rounded to 1 µs against float drift.
	s.Clock = math.Round((s.Clock+s.Params.TickSize)*1e6) / 1e6
	e.ticks++
	return nil
}

// Run ticks until the system drains or the safety ceiling is reached. The
// two outcomes are distinguished in the Result; only internal-consistency
// defects surface as errors.
func (e *Engine) Run() (Result, error) {
	s := e.State
	for s.Clock < e.MaxTime {
		if err := e.Tick(); err != nil {
			return e.result(OutcomeAborted), err
		}
		if s.Clock+timeEps >= e.ArrivalEnd && s.Arrived > 0 && s.Departed == s.Arrived {
			logrus.Debugf("drained at T=%.1fs: %d passengers through in %d ticks", s.Clock, s.Departed, e.ticks)
			return e.result(OutcomeDrained), nil
		}
	}
	logrus.Warnf("simulation ceiling %.0fs reached with %d/%d departed", e.MaxTime, s.Departed, s.Arrived)
	return e.result(OutcomeTimedOut), nil
}

func (e *Engine) result(o Outcome) Result {
	return Result{
		Outcome:  o,
		EndTime:  e.State.Clock,
		Ticks:    e.ticks,
		Arrived:  e.State.Arrived,
		Departed: e.State.Departed,
	}
}

// generateArrivals adds rate·Δt to each class accumulator, emits the integer
// parts, and interleaves the two classes in emission order so indices stay
// balanced between classes under equal rates.
func (e *Engine) generateArrivals() {
	s := e.State
	qChecked, qUnchecked := e.Rate(s.Clock)

	s.accChecked += qChecked * s.Params.TickSize
	s.accUnchecked += qUnchecked * s.Params.TickSize

	nChecked := int(s.accChecked)
	nUnchecked := int(s.accUnchecked)
	s.accChecked -= float64(nChecked)
	s.accUnchecked -= float64(nUnchecked)

	for i := 0; i < nChecked || i < nUnchecked; i++ {
		if i < nChecked {
			e.admitArrival(Checked)
		}
		if i < nUnchecked {
			e.admitArrival(Unchecked)
		}
	}
}

func (e *Engine) admitArrival(t PassengerType) {
	s := e.State
	p := &Passenger{
		Index:      s.nextIndex,
		Type:       t,
		Zone:       ZoneEntry,
		EnterEntry: s.Clock,
		EntryBasic: s.Params.EntryTime(t),
	}
	s.nextIndex++
	s.Passengers = append(s.Passengers, p)
	s.EntryCount++
	s.Arrived++
}

// collectCandidates builds the per-transition FIFO lists: passengers whose
// scheduled departure time has reached the clock, sorted by index. Both lane
// sources merge into one pre-gate queue.
func (e *Engine) collectCandidates() candidates {
	s := e.State
	var c candidates
	for _, p := range s.Passengers {
		if p.Zone == ZoneDeparted || p.DueTime() > s.Clock+timeEps {
			continue
		}
		switch p.Zone {
		case ZonePreGate:
			c.preGateToGate = append(c.preGateToGate, p)
		case ZoneSecurityLane, ZoneFastLane:
			c.lanesToPreGate = append(c.lanesToPreGate, p)
		case ZoneEntry:
			if p.Type == Checked {
				c.entryToSecurity = append(c.entryToSecurity, p)
			} else {
				c.entryToFastLane = append(c.entryToFastLane, p)
			}
		}
	}
	// Passengers is append-ordered by index, but the ordering guarantee is
	// load-bearing, so sort explicitly.
	byIndex(c.preGateToGate)
	byIndex(c.lanesToPreGate)
	byIndex(c.entryToSecurity)
	byIndex(c.entryToFastLane)
	return c
}

func byIndex(ps []*Passenger) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Index < ps[j].Index })
}

// transferPreGateToGates executes the gate transfer. The card tap is already
// inside the pre-gate basic time, so admitted passengers depart immediately.
func (e *Engine) transferPreGateToGates(cands []*Passenger, snap snapshot) {
	s := e.State
	k := e.Gate.Admit(len(cands), snap.FreeGates, s.Params)
	for _, p := range cands[:k] {
		p.Zone = ZoneDeparted
		p.ExitTime = s.Clock
		s.PreGateCount--
		s.Departed++
		if e.Gate.Tracked() {
			s.occupyGate()
		}
	}
	for _, p := range cands[k:] {
		p.PreGateAdd += s.Params.TickSize
	}
}

// transferLanesToPreGate moves the merged lane queue into the holding area.
// Admission sees the live occupancy (gate departures this tick already freed
// space); the basic time uses the tick's density snapshot.
func (e *Engine) transferLanesToPreGate(cands []*Passenger, snap snapshot) {
	s := e.State
	k := AdmitPreGate(len(cands), s.PreGateCount, s.Params)
	for _, p := range cands[:k] {
		if p.Zone == ZoneSecurityLane {
			s.SecurityCount--
		} else {
			s.FastLaneCount--
		}
		p.Zone = ZonePreGate
		p.EnterPreGate = s.Clock
		p.PreGateBasic = s.Params.PreGateTime(p.Type, snap.PreGateDensity)
		p.PreGateAdd = 0
		s.PreGateCount++
	}
	for _, p := range cands[k:] {
		p.LaneAdd += s.Params.TickSize
	}
}

// transferEntryToLanes routes checked passengers to the security lane and
// unchecked passengers to the fast lane. Fast-lane admission uses the live
// density (lane departures this tick already freed space); the fast-lane
// basic time uses the snapshot density.
func (e *Engine) transferEntryToLanes(toSecurity, toFastLane []*Passenger, snap snapshot) {
	s := e.State

	k := e.Security.Admit(len(toSecurity), s.SecurityCount, s.Params)
	for _, p := range toSecurity[:k] {
		p.Zone = ZoneSecurityLane
		p.EnterLane = s.Clock
		p.LaneBasic = s.Params.SecurityTime()
		p.LaneAdd = 0
		s.EntryCount--
		s.SecurityCount++
	}
	for _, p := range toSecurity[k:] {
		p.EntryAdd += s.Params.TickSize
	}

	k = AdmitFastLane(len(toFastLane), s.FastLaneCount, s.FastLaneDensity(), s.Params)
	for _, p := range toFastLane[:k] {
		p.Zone = ZoneFastLane
		p.EnterLane = s.Clock
		p.LaneBasic = s.Params.FastLaneTime(snap.FastLaneDensity)
		p.LaneAdd = 0
		s.EntryCount--
		s.FastLaneCount++
	}
	for _, p := range toFastLane[k:] {
		p.EntryAdd += s.Params.TickSize
	}
}
