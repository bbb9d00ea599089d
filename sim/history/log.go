package history

// Log is the append-only sequence of per-tick records. The engine appends
// exactly one record per tick; consumers iterate but never mutate.
type Log struct {
	records []Record
}

// NewLog creates an empty Log ready for recording.
func NewLog() *Log {
	return &Log{records: make([]Record, 0)}
}

// Append adds one tick's record to the log.
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Len returns the number of recorded ticks.
func (l *Log) Len() int {
	return len(l.records)
}

// Records returns the log contents for iteration.
// The returned slice is the log's internal storage -- callers may iterate
// over it but MUST NOT append to or modify it.
func (l *Log) Records() []Record {
	return l.records
}

// Last returns the most recent record, or false if nothing was recorded yet.
func (l *Log) Last() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}
