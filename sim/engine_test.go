package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// burst returns a rate function that emits exactly n checked and m unchecked
// passengers on the first tick and nothing afterwards. The half-passenger
// offset keeps the accumulator truncation robust against float noise.
func burst(n, m int) RateFunc {
	tick := DefaultParams().TickSize
	return func(t float64) (float64, float64) {
		if t > 0 {
			return 0, 0
		}
		return (float64(n) + 0.5) / tick, (float64(m) + 0.5) / tick
	}
}

func mustEngine(t *testing.T, rate RateFunc, security SecurityPolicy, gate GatePolicy, maxTime float64) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultParams(), rate, security, gate, maxTime)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_RejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.TickSize = 0
	_, err := NewEngine(p, nil, nil, nil, 100)
	assert.Error(t, err)
}

// TestRun_SingleUncheckedFreeFlow walks one unchecked passenger through an
// empty corridor: every transfer happens on the first tick at or past the due
// time and no additional time accrues anywhere.
func TestRun_SingleUncheckedFreeFlow(t *testing.T) {
	e := mustEngine(t, burst(0, 1), nil, nil, 60)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)
	assert.Equal(t, 1, res.Arrived)
	assert.Equal(t, 1, res.Departed)

	p := e.State.Params
	pass := e.State.Passengers[0]
	assert.Equal(t, ZoneDeparted, pass.Zone)
	assert.InDelta(t, p.EntryTime(Unchecked), pass.EntryBasic, 1e-9)
	assert.InDelta(t, p.FastLaneTime(0), pass.LaneBasic, 1e-9)
	assert.InDelta(t, p.PreGateTime(Unchecked, 0), pass.PreGateBasic, 1e-9)
	assert.Zero(t, pass.EntryAdd)
	assert.Zero(t, pass.LaneAdd)
	assert.Zero(t, pass.PreGateAdd)

	// Due times 2.913 / 5.826 / 11.928 land the transfers on ticks
	// 3.0 / 5.9 / 12.0.
	assert.InDelta(t, 3.0, pass.EnterLane, 1e-6)
	assert.InDelta(t, 5.9, pass.EnterPreGate, 1e-6)
	assert.InDelta(t, 12.0, pass.ExitTime, 1e-6)
}

func TestRun_SingleCheckedFreeFlow(t *testing.T) {
	e := mustEngine(t, burst(1, 0), nil, nil, 60)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)

	p := e.State.Params
	pass := e.State.Passengers[0]
	assert.InDelta(t, p.EntryTime(Checked), pass.EntryBasic, 1e-9)
	assert.InDelta(t, 15.5, pass.LaneBasic, 1e-9)
	assert.InDelta(t, p.PreGateTime(Checked, 0), pass.PreGateBasic, 1e-9)

	// Entry due 3.329 -> lane at 3.4; lane due 18.9 -> pre-gate at 18.9;
	// pre-gate due 24.667 -> gone at 24.7.
	assert.InDelta(t, 3.4, pass.EnterLane, 1e-6)
	assert.InDelta(t, 18.9, pass.EnterPreGate, 1e-6)
	assert.InDelta(t, 24.7, pass.ExitTime, 1e-6)
	assert.InDelta(t, pass.TotalTime(),
		pass.EntryBasic+pass.LaneBasic+pass.PreGateBasic, 1e-9)
}

// TestRun_SingleServerAdmitsOnePerTick floods the security lane with five
// simultaneous candidates: exactly one enters per tick, in index order, and
// the blocked ones accrue one tick of additional time per rejection.
func TestRun_SingleServerAdmitsOnePerTick(t *testing.T) {
	e := mustEngine(t, burst(5, 0), SingleServer{}, nil, 300)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)
	assert.Equal(t, 5, res.Departed)

	for i, pass := range e.State.Passengers {
		assert.Equal(t, i, pass.Index)
		assert.InDelta(t, 3.4+0.1*float64(i), pass.EnterLane, 1e-6,
			"passenger %d entered the lane off schedule", i)
		assert.InDelta(t, 0.1*float64(i), pass.EntryAdd, 1e-6)
		assert.InDelta(t, 15.5, pass.LaneBasic, 1e-9)
	}
}

// TestRun_FastLaneParallelCap floods the fast lane with ten simultaneous
// candidates: the side-by-side cap admits four per tick and each wave's basic
// time is fixed from that tick's density snapshot.
func TestRun_FastLaneParallelCap(t *testing.T) {
	e := mustEngine(t, burst(0, 10), nil, nil, 300)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)

	p := e.State.Params
	waves := map[string]int{}
	for _, pass := range e.State.Passengers {
		switch {
		case pass.Index < 4:
			assert.InDelta(t, 3.0, pass.EnterLane, 1e-6)
			assert.InDelta(t, p.FastLaneTime(0), pass.LaneBasic, 1e-9)
			waves["first"]++
		case pass.Index < 8:
			assert.InDelta(t, 3.1, pass.EnterLane, 1e-6)
			assert.InDelta(t, p.FastLaneTime(4/p.FastLaneArea), pass.LaneBasic, 1e-9)
			assert.InDelta(t, 0.1, pass.EntryAdd, 1e-6)
			waves["second"]++
		default:
			assert.InDelta(t, 3.2, pass.EnterLane, 1e-6)
			assert.InDelta(t, p.FastLaneTime(8/p.FastLaneArea), pass.LaneBasic, 1e-9)
			assert.InDelta(t, 0.2, pass.EntryAdd, 1e-6)
			waves["third"]++
		}
	}
	assert.Equal(t, map[string]int{"first": 4, "second": 4, "third": 2}, waves)
}

// TestRun_SecurityLaneNeverExceedsConveyorCapacity holds the lane occupancy
// invariant under a 30-passenger flood: the single-server rule stops admitting
// at the bag capacity and resumes only as inspections complete.
func TestRun_SecurityLaneNeverExceedsConveyorCapacity(t *testing.T) {
	e := mustEngine(t, burst(30, 0), SingleServer{}, nil, 600)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)
	assert.Equal(t, 30, res.Departed)

	peak := 0
	for _, r := range e.State.History.Records() {
		if r.SecurityCount > peak {
			peak = r.SecurityCount
		}
	}
	assert.Equal(t, e.State.Params.ConveyorCapacity(), peak)
}

// TestTick_ConservationHoldsEveryTick drives a mixed flood tick by tick and
// relies on the engine's internal conservation check to surface any leak.
func TestTick_ConservationHoldsEveryTick(t *testing.T) {
	e := mustEngine(t, burst(20, 20), nil, nil, 600)
	for i := 0; i < 1000; i++ {
		if err := e.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	s := e.State
	assert.Equal(t, 40, s.Arrived)
	inZones := s.EntryCount + s.SecurityCount + s.FastLaneCount + s.PreGateCount
	assert.Equal(t, s.Arrived, inZones+s.Departed)
}

// TestRun_Deterministic runs the identical configuration twice and demands
// bit-identical trajectories.
func TestRun_Deterministic(t *testing.T) {
	rate := func(t float64) (float64, float64) {
		if t >= 30 {
			return 0, 0
		}
		return 1.3, 2.7
	}
	e1 := mustEngine(t, rate, SingleServer{}, FixedCount{}, 2000)
	e2 := mustEngine(t, rate, SingleServer{}, FixedCount{}, 2000)

	res1, err1 := e1.Run()
	res2, err2 := e2.Run()
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, res1, res2)

	assert.Equal(t, len(e1.State.Passengers), len(e2.State.Passengers))
	for i := range e1.State.Passengers {
		a, b := e1.State.Passengers[i], e2.State.Passengers[i]
		assert.Equal(t, a.Type, b.Type)
		assert.Equal(t, a.ExitTime, b.ExitTime)
		assert.Equal(t, a.TotalTime(), b.TotalTime())
	}
}

// TestRun_CeilingYieldsTimedOut stops the clock before anybody can cross the
// corridor: the run reports timed-out as a result, not an error.
func TestRun_CeilingYieldsTimedOut(t *testing.T) {
	e := mustEngine(t, burst(0, 5), nil, nil, 2.0)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	assert.Equal(t, 5, res.Arrived)
	assert.Equal(t, 0, res.Departed)
}

// TestRun_GappedPatternWaitsForLaterPlatoons drives a two-burst arrival
// pattern whose quiet gap outlasts the corridor transit time. With the
// arrival window declared, the run must not report drained after the first
// platoon clears; the second platoon still arrives and departs.
func TestRun_GappedPatternWaitsForLaterPlatoons(t *testing.T) {
	rate := func(t float64) (float64, float64) {
		if t < 10 || (t >= 60 && t < 70) {
			return 0, 2.0
		}
		return 0, 0
	}
	e := mustEngine(t, rate, nil, nil, 300)
	e.ArrivalEnd = 70

	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)
	assert.Greater(t, res.EndTime, 70.0)
	assert.GreaterOrEqual(t, res.Arrived, 30)
	assert.Equal(t, res.Arrived, res.Departed)

	secondPlatoon := 0
	for _, p := range e.State.Passengers {
		assert.Equal(t, ZoneDeparted, p.Zone)
		if p.EnterEntry >= 60 {
			secondPlatoon++
		}
	}
	assert.GreaterOrEqual(t, secondPlatoon, 15)
}

// TestTick_HistoryRowsInternallyConsistent checks that every history record
// pairs its densities with its own occupancy counts.
func TestTick_HistoryRowsInternallyConsistent(t *testing.T) {
	e := mustEngine(t, burst(5, 10), nil, nil, 600)
	for i := 0; i < 100; i++ {
		if err := e.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	p := e.State.Params
	for _, r := range e.State.History.Records() {
		assert.InDelta(t, float64(r.FastLaneCount)/p.FastLaneArea, r.FastLaneDensity, 1e-9,
			"fast-lane row at T=%.1f", r.Time)
		assert.InDelta(t, float64(r.PreGateCount)/p.PreGateArea, r.PreGateDensity, 1e-9,
			"pre-gate row at T=%.1f", r.Time)
	}
}

// TestRun_AbortedOnConservationDefect corrupts the bookkeeping and verifies
// the abort path labels its result as aborted, not timed-out.
func TestRun_AbortedOnConservationDefect(t *testing.T) {
	e := mustEngine(t, nil, nil, nil, 10)
	e.State.Arrived = 3 // no matching passengers anywhere

	res, err := e.Run()
	assert.Error(t, err)
	var cerr *ConservationError
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, OutcomeAborted, res.Outcome)
}

func TestRun_EmptySystemTimesOut(t *testing.T) {
	e := mustEngine(t, nil, nil, nil, 1.0)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	assert.Equal(t, 0, res.Arrived)
}

// seedPreGate plants n passengers directly in the holding area, all due
// immediately, with consistent counters.
func seedPreGate(e *Engine, n int) {
	s := e.State
	for i := 0; i < n; i++ {
		s.Passengers = append(s.Passengers, &Passenger{
			Index: i,
			Type:  Unchecked,
			Zone:  ZonePreGate,
		})
		s.PreGateCount++
		s.Arrived++
	}
	s.nextIndex = n
}

// TestGateTransfer_FixedCountBatches drains twelve pre-gate candidates at
// five per tick.
func TestGateTransfer_FixedCountBatches(t *testing.T) {
	e := mustEngine(t, nil, nil, FixedCount{}, 100)
	seedPreGate(e, 12)

	wantDeparted := []int{5, 10, 12}
	for i, want := range wantDeparted {
		if err := e.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		assert.Equal(t, want, e.State.Departed)
	}
}

// TestGateTransfer_PerGateServiceCycle drains twelve pre-gate candidates
// through the tracked gate bank: five leave immediately, five more once the
// gates free up after one service time, and the last two one cycle later.
func TestGateTransfer_PerGateServiceCycle(t *testing.T) {
	e := mustEngine(t, nil, nil, PerGate{}, 100)
	seedPreGate(e, 12)

	for e.State.Departed < 12 {
		if err := e.Tick(); err != nil {
			t.Fatalf("tick at T=%.1f: %v", e.State.Clock, err)
		}
	}

	exits := map[float64]int{}
	for _, p := range e.State.Passengers {
		exits[p.ExitTime]++
	}
	assert.Equal(t, 5, exits[0.0])
	assert.Equal(t, 5, exits[3.5])
	assert.Equal(t, 2, exits[7.0])
}

// TestRun_TwoClassesNoCongestion sends one passenger of each class through an
// otherwise empty corridor: both finish with zero additional time and a total
// equal to the sum of their three basic times.
func TestRun_TwoClassesNoCongestion(t *testing.T) {
	e := mustEngine(t, burst(1, 1), nil, nil, 60)
	res, err := e.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDrained, res.Outcome)
	assert.Equal(t, 2, res.Departed)

	for _, pass := range e.State.Passengers {
		assert.Zero(t, pass.EntryAdd, "passenger %d", pass.Index)
		assert.Zero(t, pass.LaneAdd, "passenger %d", pass.Index)
		assert.Zero(t, pass.PreGateAdd, "passenger %d", pass.Index)
		assert.InDelta(t, pass.EntryBasic+pass.LaneBasic+pass.PreGateBasic,
			pass.TotalTime(), 1e-9)
	}
}

// TestRun_HistoryMonotonicity checks the recorded series: the clock advances
// by exactly one tick size per record and departures never decrease.
func TestRun_HistoryMonotonicity(t *testing.T) {
	e := mustEngine(t, burst(10, 10), nil, nil, 600)
	_, err := e.Run()
	assert.NoError(t, err)

	records := e.State.History.Records()
	assert.NotEmpty(t, records)
	tick := e.State.Params.TickSize
	for i := 1; i < len(records); i++ {
		assert.InDelta(t, tick, records[i].Time-records[i-1].Time, 1e-6,
			"clock step at record %d", i)
		assert.GreaterOrEqual(t, records[i].Departed, records[i-1].Departed)
	}
}

// TestRun_MergedLaneQueueIsFIFO checks that pre-gate admission takes the
// merged security and fast lane candidates in index order when the holding
// area cannot take everybody.
func TestRun_MergedLaneQueueIsFIFO(t *testing.T) {
	e := mustEngine(t, burst(0, 8), nil, nil, 300)
	_, err := e.Run()
	assert.NoError(t, err)

	// With a free corridor the exit order must match the arrival order.
	var prev float64
	for _, p := range e.State.Passengers {
		assert.GreaterOrEqual(t, p.ExitTime, prev)
		prev = p.ExitTime
	}
}
