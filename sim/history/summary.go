package history

// Summary aggregates the peaks of a completed run's history.
type Summary struct {
	Ticks    int
	Duration float64 // last recorded clock value (s)

	PeakEntryCount    int
	PeakSecurityCount int
	PeakFastLaneCount int
	PeakPreGateCount  int
	PeakSecurityQueue int

	PeakFastLaneDensity float64
	PeakPreGateDensity  float64

	FinalDeparted int
}

// Summarize scans the log once and returns its peak statistics.
func Summarize(l *Log) Summary {
	s := Summary{Ticks: l.Len()}
	if last, ok := l.Last(); ok {
		s.Duration = last.Time
		s.FinalDeparted = last.Departed
	}
	for _, r := range l.Records() {
		s.PeakEntryCount = max(s.PeakEntryCount, r.EntryCount)
		s.PeakSecurityCount = max(s.PeakSecurityCount, r.SecurityCount)
		s.PeakFastLaneCount = max(s.PeakFastLaneCount, r.FastLaneCount)
		s.PeakPreGateCount = max(s.PeakPreGateCount, r.PreGateCount)
		s.PeakSecurityQueue = max(s.PeakSecurityQueue, r.SecurityQueue)
		if r.FastLaneDensity > s.PeakFastLaneDensity {
			s.PeakFastLaneDensity = r.FastLaneDensity
		}
		if r.PreGateDensity > s.PeakPreGateDensity {
			s.PeakPreGateDensity = r.PreGateDensity
		}
	}
	return s
}
