package telemetry

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// LatencyTracker keeps the most recent maxKeep samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewLatencyTracker(maxKeep int) *LatencyTracker {
	return &LatencyTracker{maxKeep: maxKeep}
}

func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, d)
	if len(lt.samples) > lt.maxKeep {
		lt.samples = lt.samples[len(lt.samples)-lt.maxKeep:]
	}
}

func (lt *LatencyTracker) P50() time.Duration { return lt.percentile(0.50) }
func (lt *LatencyTracker) P99() time.Duration { return lt.percentile(0.99) }

func (lt *LatencyTracker) percentile(p float64) time.Duration {
	lt.mu.Lock()
	sorted := slices.Clone(lt.samples)
	lt.mu.Unlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	RequestsReceived  Counter
	RequestErrors     Counter
	RateLimited       Counter
	CoalescedRequests Counter
	ScenariosComputed Counter
	WinningRows       Counter
	LosingRows        Counter
	FanoutWatchers    Gauge
	FanoutDropped     Counter
	StoreWrites       Counter
	StoreErrors       Counter
	HandlerFailures   Counter
	ComputeLatency    *LatencyTracker
	RequestLatency    *LatencyTracker
}{
	ComputeLatency: NewLatencyTracker(1000),
	RequestLatency: NewLatencyTracker(1000),
}

// Snapshot flattens the registry for /api/metrics and the shutdown line.
// Latencies are reported in microseconds.
func Snapshot() map[string]int64 {
	m := &Metrics
	return map[string]int64{
		"requests_received":  m.RequestsReceived.Value(),
		"request_errors":     m.RequestErrors.Value(),
		"rate_limited":       m.RateLimited.Value(),
		"coalesced_requests": m.CoalescedRequests.Value(),
		"scenarios_computed": m.ScenariosComputed.Value(),
		"winning_rows":       m.WinningRows.Value(),
		"losing_rows":        m.LosingRows.Value(),
		"fanout_watchers":    m.FanoutWatchers.Value(),
		"fanout_dropped":     m.FanoutDropped.Value(),
		"store_writes":       m.StoreWrites.Value(),
		"store_errors":       m.StoreErrors.Value(),
		"handler_failures":   m.HandlerFailures.Value(),
		"compute_p50_us":     m.ComputeLatency.P50().Microseconds(),
		"compute_p99_us":     m.ComputeLatency.P99().Microseconds(),
		"request_p50_us":     m.RequestLatency.P50().Microseconds(),
		"request_p99_us":     m.RequestLatency.P99().Microseconds(),
	}
}
