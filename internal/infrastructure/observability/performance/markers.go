// Package performance provides performance monitoring data structures and
// utilities for tracking operation latency across the Helixdesk engine.
package performance

import (
	"runtime"
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation.
// Markers can be completed from the request path or from a context watcher
// goroutine; mu serializes the two (held as a pointer so snapshot copies
// share it).
type Marker struct {
	Operation   string         `json:"operation"`       // e.g., "auth:verify_credentials", "conversation:process_request"
	SessionID   string         `json:"sessionId"`       // Masked session identifier for correlation
	StartTime   time.Time      `json:"startTime"`       // When the operation started
	EndTime     time.Time      `json:"endTime"`         // When the operation completed
	Duration    time.Duration  `json:"duration"`        // Total operation duration
	Success     bool           `json:"success"`         // Whether the operation completed successfully
	Error       string         `json:"error,omitempty"` // Error message if operation failed
	Metadata    map[string]any `json:"metadata"`        // Additional operation-specific data
	MemoryUsage int64          `json:"memoryUsage"`     // Memory allocated during operation (bytes)
	CacheHits   int            `json:"cacheHits"`       // Number of cache hits during operation
	CacheMisses int            `json:"cacheMisses"`     // Number of cache misses during operation
	Completed   bool           `json:"completed"`       // Whether completion has been recorded

	mu   *sync.Mutex
	done chan struct{}
}

func (m *Marker) lock() {
	if m.mu != nil {
		m.mu.Lock()
	}
}

func (m *Marker) unlock() {
	if m.mu != nil {
		m.mu.Unlock()
	}
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	m.finish(nil)
}

// finish records completion exactly once, optionally attaching an error.
// It reports whether this call performed the completion.
func (m *Marker) finish(err error) bool {
	m.lock()
	defer m.unlock()

	if m.Completed {
		return false
	}
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.MemoryUsage = int64(memStats.Alloc)

	if m.done != nil {
		close(m.done)
	}
	return true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.lock()
	defer m.unlock()
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err == nil {
		return
	}
	m.lock()
	defer m.unlock()
	m.Error = err.Error()
	m.Success = false
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	m.lock()
	defer m.unlock()
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// AddCacheHit increments the cache hit counter
func (m *Marker) AddCacheHit() {
	m.lock()
	defer m.unlock()
	m.CacheHits++
}

// AddCacheMiss increments the cache miss counter
func (m *Marker) AddCacheMiss() {
	m.lock()
	defer m.unlock()
	m.CacheMisses++
}

// GetCacheHitRatio returns the cache hit ratio (0.0 to 1.0)
func (m *Marker) GetCacheHitRatio() float64 {
	m.lock()
	defer m.unlock()
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(total)
}

// snapshot returns a consistent copy for the ops surface.
func (m *Marker) snapshot() Marker {
	m.lock()
	defer m.unlock()

	dup := *m
	if m.Metadata != nil {
		md := make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			md[k] = v
		}
		dup.Metadata = md
	}
	return dup
}

// isCompleted reports completion under the marker lock.
func (m *Marker) isCompleted() bool {
	m.lock()
	defer m.unlock()
	return m.Completed
}
