package engine

import (
	"sync"
	"time"
)

const cycleTraceSamplesDefault = 240

// CyclePhaseTimings captures time spent in each cycle phase (ms).
type CyclePhaseTimings struct {
	NormalizeMs float64 `json:"normalizeMs"`
	DiffMs      float64 `json:"diffMs"`
	PatchMs     float64 `json:"patchMs"`
	SweepMs     float64 `json:"sweepMs"`
}

// CycleCounts captures per-cycle workload indicators.
type CycleCounts struct {
	Adds    int `json:"adds"`
	Removes int `json:"removes"`
	Changes int `json:"changes"`
	Nodes   int `json:"nodes"`
	Mounted int `json:"mounted"`
}

// CycleSample is a single reconciliation cycle trace sample.
type CycleSample struct {
	Timestamp int64             `json:"ts"`
	CycleMs   float64           `json:"cycleMs"`
	Phases    CyclePhaseTimings `json:"phases"`
	Counts    CycleCounts       `json:"counts"`
	Error     string            `json:"error,omitempty"`
}

// CycleTimeline is the debug server response shape.
type CycleTimeline struct {
	Samples     []CycleSample `json:"samples"`
	SlowCycles  int           `json:"slowCycles"`
	ThresholdMs float64       `json:"thresholdMs"`
}

// CycleTraceBuffer stores recent cycle samples in a ring buffer. Cycles
// longer than the threshold are counted as slow.
type CycleTraceBuffer struct {
	mu        sync.RWMutex
	samples   []CycleSample
	index     int
	count     int
	slow      int
	threshold time.Duration
}

// NewCycleTraceBuffer creates a buffer holding capacity samples.
func NewCycleTraceBuffer(capacity int, threshold time.Duration) *CycleTraceBuffer {
	if capacity <= 0 {
		capacity = cycleTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = DefaultInterval
	}
	return &CycleTraceBuffer{
		samples:   make([]CycleSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *CycleTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Add records a sample and updates the slow cycle count.
func (b *CycleTraceBuffer) Add(sample CycleSample, duration time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if duration > b.threshold {
		b.slow++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *CycleTraceBuffer) Snapshot() CycleTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return CycleTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]CycleSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return CycleTimeline{
		Samples:     result,
		SlowCycles:  b.slow,
		ThresholdMs: durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
