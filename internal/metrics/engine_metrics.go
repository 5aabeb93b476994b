package metrics

import (
	"sync/atomic"
	"time"
)

// EngineMetrics tracks draft bot activity. A nil *EngineMetrics is valid and
// records nothing.
type EngineMetrics struct {
	EvaluationLatency *Histogram
	PickLatency       *Histogram
	BuildLatency      *Histogram

	Evaluations    atomic.Uint64
	OptimizerSteps atomic.Uint64
	Picks          atomic.Uint64
	DeckBuilds     atomic.Uint64
	BuildFailures  atomic.Uint64
	ReplayWarnings atomic.Uint64
	CacheHits      atomic.Uint64
	CacheMisses    atomic.Uint64

	startTime time.Time
}

// NewEngineMetrics creates a new metrics collector.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		EvaluationLatency: NewHistogram(10000),
		PickLatency:       NewHistogram(10000),
		BuildLatency:      NewHistogram(1000),
		startTime:         time.Now(),
	}
}

// RecordEvaluation records one candidate evaluation and the optimizer steps
// it took.
func (m *EngineMetrics) RecordEvaluation(d time.Duration, steps int) {
	if m == nil {
		return
	}
	m.Evaluations.Add(1)
	m.OptimizerSteps.Add(uint64(steps))
	m.EvaluationLatency.Record(d)
}

// RecordPick records one bot pick.
func (m *EngineMetrics) RecordPick(d time.Duration) {
	if m == nil {
		return
	}
	m.Picks.Add(1)
	m.PickLatency.Record(d)
}

// RecordBuild records a deck build attempt.
func (m *EngineMetrics) RecordBuild(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.DeckBuilds.Add(1)
	if failed {
		m.BuildFailures.Add(1)
	}
	m.BuildLatency.Record(d)
}

// RecordReplayWarning counts a replay inconsistency.
func (m *EngineMetrics) RecordReplayWarning() {
	if m == nil {
		return
	}
	m.ReplayWarnings.Add(1)
}

// SetCacheStats stores the latest memo cache counters.
func (m *EngineMetrics) SetCacheStats(hits, misses int64) {
	if m == nil {
		return
	}
	m.CacheHits.Store(uint64(hits))
	m.CacheMisses.Store(uint64(misses))
}

// EngineStats is a point-in-time copy of the metrics.
type EngineStats struct {
	EvaluationLatency LatencyStats `json:"evaluation_latency"`
	PickLatency       LatencyStats `json:"pick_latency"`
	BuildLatency      LatencyStats `json:"build_latency"`

	Evaluations    uint64  `json:"evaluations"`
	OptimizerSteps uint64  `json:"optimizer_steps"`
	Picks          uint64  `json:"picks"`
	DeckBuilds     uint64  `json:"deck_builds"`
	BuildFailures  uint64  `json:"build_failures"`
	ReplayWarnings uint64  `json:"replay_warnings"`
	CacheHitRate   float64 `json:"cache_hit_rate"` // percentage

	Uptime string `json:"uptime"`
}

// LatencyStats summarizes a latency histogram in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Stats returns a snapshot of the current statistics.
func (m *EngineMetrics) Stats() *EngineStats {
	if m == nil {
		return &EngineStats{}
	}
	hits, misses := m.CacheHits.Load(), m.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}
	return &EngineStats{
		EvaluationLatency: m.EvaluationLatency.Snapshot(),
		PickLatency:       m.PickLatency.Snapshot(),
		BuildLatency:      m.BuildLatency.Snapshot(),
		Evaluations:       m.Evaluations.Load(),
		OptimizerSteps:    m.OptimizerSteps.Load(),
		Picks:             m.Picks.Load(),
		DeckBuilds:        m.DeckBuilds.Load(),
		BuildFailures:     m.BuildFailures.Load(),
		ReplayWarnings:    m.ReplayWarnings.Load(),
		CacheHitRate:      hitRate,
		Uptime:            time.Since(m.startTime).Round(time.Second).String(),
	}
}
