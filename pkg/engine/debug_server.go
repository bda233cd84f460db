package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// debugServer manages the HTTP server for tree inspection.
type debugServer struct {
	server   *http.Server
	listener net.Listener
	sampler  *runtimeSampler
	mu       sync.Mutex
}

// StartDebugServer serves the engine's retained tree, stats and cycle trace
// over HTTP on port. It returns the actual port, which differs from port
// when port is 0. Starting an already running server returns its port.
func (e *Engine) StartDebugServer(port int) (int, error) {
	e.debug.mu.Lock()
	defer e.debug.mu.Unlock()

	if e.debug.server != nil {
		return e.debug.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/tree", e.handleTree)
	mux.HandleFunc("/stats", e.handleStats)
	mux.HandleFunc("/cycles", e.handleCycles)
	mux.HandleFunc("/runtime", e.handleRuntime)

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	e.debug.server = server
	e.debug.listener = listener
	e.debug.sampler = startRuntimeSampler(NewRuntimeSampleBuffer(0, e.opts.RuntimeSampleInterval))

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			e.debug.mu.Lock()
			if e.debug.server == server {
				e.debug.server = nil
				e.debug.listener = nil
			}
			e.debug.mu.Unlock()
			e.logger.Error("debug server failed", "error", err)
		}
	}()

	e.logger.Info("debug server listening", "port", actualPort)
	return actualPort, nil
}

// StopDebugServer gracefully shuts down the debug server.
func (e *Engine) StopDebugServer() {
	e.debug.mu.Lock()
	server := e.debug.server
	sampler := e.debug.sampler
	e.debug.server = nil
	e.debug.listener = nil
	e.debug.sampler = nil
	e.debug.mu.Unlock()

	if sampler != nil {
		sampler.Stop()
	}
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleTree returns the retained tree of the last completed cycle, as JSON
// or, with ?format=yaml, as YAML.
func (e *Engine) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record := e.Snapshot()
	if record == nil {
		http.Error(w, "no tree", http.StatusServiceUnavailable)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		data, err := record.EncodeYAML()
		if err != nil {
			http.Error(w, fmt.Sprintf("yaml encode error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	writeJSON(w, record)
}

// handleStats returns the engine counters and state.
func (e *Engine) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := struct {
		State string `json:"state"`
		Stats
	}{
		State: e.State().String(),
		Stats: e.Stats(),
	}
	writeJSON(w, resp)
}

// handleCycles returns recent cycle samples. ?limit=N keeps the newest N,
// ?min_ms=X keeps cycles that took at least X ms, ?errors=true keeps failed
// cycles.
func (e *Engine) handleCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := e.trace.Snapshot()
	applyCycleFilters(r, &resp)
	writeJSON(w, resp)
}

func applyCycleFilters(r *http.Request, resp *CycleTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(CycleSample) bool
	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s CycleSample) bool { return s.CycleMs >= v })
	}
	if value := r.URL.Query().Get("errors"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil && parsed {
			filters = append(filters, func(s CycleSample) bool { return s.Error != "" })
		}
	}

	if len(filters) > 0 {
		filtered := make([]CycleSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

// handleRuntime returns recent runtime/GC samples. ?window=S keeps the last
// S seconds, ?limit=N the newest N samples.
func (e *Engine) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	e.debug.mu.Lock()
	sampler := e.debug.sampler
	e.debug.mu.Unlock()
	if sampler == nil {
		http.Error(w, "runtime sampling disabled", http.StatusServiceUnavailable)
		return
	}

	resp := struct {
		IntervalMs float64         `json:"intervalMs"`
		Samples    []RuntimeSample `json:"samples"`
	}{
		IntervalMs: durationToMillis(sampler.buffer.Interval()),
		Samples:    applyRuntimeFilters(r, sampler.buffer.Snapshot()),
	}
	writeJSON(w, resp)
}

func applyRuntimeFilters(r *http.Request, samples []RuntimeSample) []RuntimeSample {
	if windowSeconds := parseFloatQuery(r, "window"); windowSeconds > 0 {
		cutoff := time.Now().Add(-time.Duration(windowSeconds * float64(time.Second))).UnixMilli()
		filtered := make([]RuntimeSample, 0, len(samples))
		for _, sample := range samples {
			if sample.Timestamp >= cutoff {
				filtered = append(filtered, sample)
			}
		}
		samples = filtered
	}

	if value := r.URL.Query().Get("limit"); value != "" {
		if limit, err := strconv.Atoi(value); err == nil && limit > 0 && len(samples) > limit {
			samples = samples[len(samples)-limit:]
		}
	}
	return samples
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
