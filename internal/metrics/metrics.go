package metrics

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Counter is a monotonic event count, safe for concurrent use. The zero
// value is ready.
type Counter struct {
	v atomic.Uint64
}

func (c *Counter) Inc() {
	c.v.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.v.Add(n)
}

func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// Timer measures one fetch.
type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// SearchStats counts what happened to the fetches of one search pipeline.
type SearchStats struct {
	Issued  Counter
	Applied Counter
	Stale   Counter
	Failed  Counter

	// lastLatency holds nanoseconds of the most recent applied fetch.
	lastLatency atomic.Int64
}

func (s *SearchStats) ObserveLatency(d time.Duration) {
	s.lastLatency.Store(int64(d))
}

func (s *SearchStats) LastLatency() time.Duration {
	return time.Duration(s.lastLatency.Load())
}

// Fields renders the counters for a zap log line.
func (s *SearchStats) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("fetch_issued", s.Issued.Load()),
		zap.Uint64("fetch_applied", s.Applied.Load()),
		zap.Uint64("fetch_stale", s.Stale.Load()),
		zap.Uint64("fetch_failed", s.Failed.Load()),
		zap.Duration("last_latency", s.LastLatency()),
	}
}
