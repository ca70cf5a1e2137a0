package tick

import "sync/atomic"

// metrics holds lightweight reactor-wide counters. It is a deliberate
// trim of the teacher's Metrics/LatencyMetrics (which track per-tick
// P-Square latency percentiles for the JS task queue): a reactor has no
// task queue to percentile over, so only the counters meaningful to its
// own lifecycle survive — live listeners/streams and cumulative
// accept/removal/overload counts.
type metrics struct {
	listeners atomic.Int64
	streams   atomic.Int64
	accepted  atomic.Int64
	removed   atomic.Int64
	overload  atomic.Int64 // TooManySockets occurrences
}

// newMetrics returns a zeroed metrics block.
func newMetrics() *metrics {
	return &metrics{}
}

// Snapshot is a point-in-time copy of the counters, safe to read after
// Tick.Metrics() returns it.
type Snapshot struct {
	Listeners int64
	Streams   int64
	Accepted  int64
	Removed   int64
	Overload  int64
}

func (m *metrics) snapshot() Snapshot {
	return Snapshot{
		Listeners: m.listeners.Load(),
		Streams:   m.streams.Load(),
		Accepted:  m.accepted.Load(),
		Removed:   m.removed.Load(),
		Overload:  m.overload.Load(),
	}
}
