package telem

// MultiSeries is an ordered accumulation of series written to a
// single channel across one or more ticks. On flush, all but the
// most-recently written series are dropped: downstream nodes and egress
// only ever observe a channel's latest value once the tick that produced it
// has settled.
type MultiSeries struct {
	dataType DataType
	series   []*Series
}

// NewMultiSeries returns an empty accumulator for the given data type.
func NewMultiSeries(dt DataType) *MultiSeries {
	return &MultiSeries{dataType: dt}
}

// DataType returns the accumulator's declared element type. Pushed series
// are not checked against it, so an accumulated series may differ.
func (m *MultiSeries) DataType() DataType { return m.dataType }

// Push appends a series written during the current tick. A type mismatch
// against the accumulator's declared type is accepted, not rejected: the
// consumer sees the typed view and casts if needed.
func (m *MultiSeries) Push(s *Series) {
	m.series = append(m.series, s)
}

// Len returns the number of series currently accumulated.
func (m *MultiSeries) Len() int { return len(m.series) }

// Empty reports whether no series has been pushed since the last flush.
func (m *MultiSeries) Empty() bool { return len(m.series) == 0 }

// Latest returns the most recently pushed series, or nil if none has been
// pushed.
func (m *MultiSeries) Latest() *Series {
	if len(m.series) == 0 {
		return nil
	}
	return m.series[len(m.series)-1]
}

// All returns every series accumulated since the last flush, oldest first.
func (m *MultiSeries) All() []*Series {
	return m.series
}

// Flush resets the accumulator to hold only its latest series (or nothing,
// if empty), discarding intermediate writes from the settled tick.
func (m *MultiSeries) Flush() {
	if len(m.series) <= 1 {
		return
	}
	last := m.series[len(m.series)-1]
	m.series = m.series[:1]
	m.series[0] = last
}

// Clear empties the accumulator entirely.
func (m *MultiSeries) Clear() {
	m.series = m.series[:0]
}
