package engine

import (
	"runtime"
	"sync"
	"time"
)

const (
	runtimeSampleIntervalDefault = 5 * time.Second
	runtimeSampleWindowDefault   = 60 * time.Second
	runtimeSampleMinInterval     = 10 * time.Millisecond
	runtimeSampleMaxSamples      = 120
)

// RuntimeSample captures a snapshot of runtime memory/GC stats.
type RuntimeSample struct {
	Timestamp    int64  `json:"ts"`
	HeapAlloc    uint64 `json:"heapAlloc"`
	HeapInuse    uint64 `json:"heapInuse"`
	NumGC        uint32 `json:"numGC"`
	PauseTotalNs uint64 `json:"pauseTotalNs"`
	LastPauseNs  uint64 `json:"lastPauseNs"`
	Goroutines   int    `json:"goroutines"`
}

// RuntimeSampleBuffer stores recent runtime samples in a ring buffer.
type RuntimeSampleBuffer struct {
	mu       sync.RWMutex
	samples  []RuntimeSample
	index    int
	count    int
	interval time.Duration
}

// NewRuntimeSampleBuffer creates a buffer holding window worth of samples
// taken every interval, capped at 120 samples.
func NewRuntimeSampleBuffer(window, interval time.Duration) *RuntimeSampleBuffer {
	if interval <= 0 {
		interval = runtimeSampleIntervalDefault
	}
	interval = max(interval, runtimeSampleMinInterval)
	if window <= 0 {
		window = runtimeSampleWindowDefault
	}
	window = max(window, interval)

	capacity := min(max(int(window/interval), 1), runtimeSampleMaxSamples)
	return &RuntimeSampleBuffer{
		samples:  make([]RuntimeSample, capacity),
		interval: interval,
	}
}

// Interval returns the sampling interval.
func (b *RuntimeSampleBuffer) Interval() time.Duration {
	return b.interval
}

// Capacity returns the number of samples the buffer keeps.
func (b *RuntimeSampleBuffer) Capacity() int {
	return len(b.samples)
}

// Add stores a runtime sample, overwriting the oldest when full.
func (b *RuntimeSampleBuffer) Add(sample RuntimeSample) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	b.mu.Unlock()
}

// Snapshot returns samples in chronological order.
func (b *RuntimeSampleBuffer) Snapshot() []RuntimeSample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	result := make([]RuntimeSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}
	return result
}

func readRuntimeSample() RuntimeSample {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	lastPause := uint64(0)
	if stats.NumGC > 0 {
		lastPause = stats.PauseNs[(stats.NumGC+255)%256]
	}

	return RuntimeSample{
		Timestamp:    time.Now().UnixMilli(),
		HeapAlloc:    stats.HeapAlloc,
		HeapInuse:    stats.HeapInuse,
		NumGC:        stats.NumGC,
		PauseTotalNs: stats.PauseTotalNs,
		LastPauseNs:  lastPause,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// runtimeSampler fills a buffer from a background goroutine until stopped.
type runtimeSampler struct {
	buffer *RuntimeSampleBuffer
	stop   chan struct{}
	done   chan struct{}
}

func startRuntimeSampler(buffer *RuntimeSampleBuffer) *runtimeSampler {
	s := &runtimeSampler{buffer: buffer, stop: make(chan struct{}), done: make(chan struct{})}
	buffer.Add(readRuntimeSample())

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(buffer.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				buffer.Add(readRuntimeSample())
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

func (s *runtimeSampler) Stop() {
	close(s.stop)
	<-s.done
}
