// Package workload provides deterministic arrival-rate patterns for the two
// passenger classes. A pattern is a pure function of simulated time; the
// engine's fractional accumulators turn rates into integer arrivals, so the
// patterns themselves carry no randomness and no state.
package workload

import (
	"fmt"
	"math"
)

// Rates is the instantaneous arrival rate pair (passengers/s).
type Rates struct {
	Checked   float64
	Unchecked float64
}

// Pattern is a named, time-varying arrival-rate shape.
type Pattern struct {
	name string
	rate func(t float64) Rates
}

// Name returns the pattern's construction name.
func (p Pattern) Name() string { return p.name }

// At returns the arrival rates at simulated time t. Outside the pattern's
// own window the rates are zero.
func (p Pattern) At(t float64) Rates {
	if p.rate == nil {
		return Rates{}
	}
	return p.rate(t)
}

// Uniform holds both rates constant over [0, duration).
func Uniform(checked, unchecked, duration float64) Pattern {
	return Pattern{
		name: "uniform",
		rate: func(t float64) Rates {
			if t < 0 || t >= duration {
				return Rates{}
			}
			return Rates{Checked: checked, Unchecked: unchecked}
		},
	}
}

// Pulsed alternates between peak rates and silence: each cycle is `period`
// seconds with arrivals only during the first `burst` seconds. Models trainload
// platoons hitting the mezzanine.
func Pulsed(checked, unchecked, burst, period, duration float64) Pattern {
	return Pattern{
		name: "pulsed",
		rate: func(t float64) Rates {
			if t < 0 || t >= duration || period <= 0 {
				return Rates{}
			}
			if math.Mod(t, period) >= burst {
				return Rates{}
			}
			return Rates{Checked: checked, Unchecked: unchecked}
		},
	}
}

// Wave modulates both rates sinusoidally around their mean:
// rate(t) = mean * (1 + sin(2*pi*t/period)), clipped at zero. The crest is
// twice the mean; troughs go quiet.
func Wave(checkedMean, uncheckedMean, period, duration float64) Pattern {
	return Pattern{
		name: "wave",
		rate: func(t float64) Rates {
			if t < 0 || t >= duration || period <= 0 {
				return Rates{}
			}
			f := 1 + math.Sin(2*math.Pi*t/period)
			if f < 0 {
				f = 0
			}
			return Rates{Checked: checkedMean * f, Unchecked: uncheckedMean * f}
		},
	}
}

// RushHour ramps linearly from zero to the peak rates over the first third of
// the window, holds the peak for the middle third, and ramps back down.
func RushHour(checkedPeak, uncheckedPeak, duration float64) Pattern {
	return Pattern{
		name: "rush-hour",
		rate: func(t float64) Rates {
			if t < 0 || t >= duration || duration <= 0 {
				return Rates{}
			}
			third := duration / 3
			var f float64
			switch {
			case t < third:
				f = t / third
			case t < 2*third:
				f = 1
			default:
				f = (duration - t) / third
			}
			return Rates{Checked: checkedPeak * f, Unchecked: uncheckedPeak * f}
		},
	}
}

// ValidPatterns lists the recognized pattern names.
var ValidPatterns = []string{"uniform", "pulsed", "wave", "rush-hour"}

// New creates a pattern by name using the given per-class rates and arrival
// window. Pulsed uses a 30s burst in a 120s cycle; wave uses a 120s period.
// An empty name defaults to uniform. Panics on unrecognized names.
func New(name string, checked, unchecked, duration float64) Pattern {
	switch name {
	case "", "uniform":
		return Uniform(checked, unchecked, duration)
	case "pulsed":
		return Pulsed(checked, unchecked, 30, 120, duration)
	case "wave":
		return Wave(checked, unchecked, 120, duration)
	case "rush-hour":
		return RushHour(checked, unchecked, duration)
	default:
		panic(fmt.Sprintf("unknown arrival pattern %q; valid patterns: %v", name, ValidPatterns))
	}
}
