package performance

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers    map[string]*Marker
	alerts     []*Alert
	thresholds *AlertThresholds
	mu         sync.RWMutex
	started    time.Time
	config     *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`   // Maximum number of markers to retain
	MaxAlerts    int  `json:"maxAlerts"`    // Maximum number of alerts to retain
	EnableAlerts bool `json:"enableAlerts"` // Whether to generate performance alerts
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   10000,
		MaxAlerts:    500,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`     // 500ms
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"` // 5s
	AuthOperationThreshold    time.Duration `json:"authOperationThreshold"`    // verifier round trip included
	StoreOperationThreshold   time.Duration `json:"storeOperationThreshold"`   // durable tier write
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		SlowResponseThreshold:     500 * time.Millisecond,
		CriticalResponseThreshold: 5 * time.Second,
		AuthOperationThreshold:    12 * time.Second,
		StoreOperationThreshold:   200 * time.Millisecond,
	}
}

// AlertSeverity classifies performance alerts
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Alert is a threshold breach recorded for the ops surface
type Alert struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  AlertSeverity `json:"severity"`
	Operation string        `json:"operation"`
	Actual    time.Duration `json:"actual"`
	Message   string        `json:"message"`
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers:    make(map[string]*Marker),
		alerts:     make([]*Alert, 0),
		thresholds: DefaultAlertThresholds(),
		started:    time.Now(),
		config:     config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
		mu:        &sync.Mutex{},
		done:      make(chan struct{}),
	}

	markerID := fmt.Sprintf("%s_%s_%d", sessionID, operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	if len(t.markers) > t.config.MaxMarkers {
		t.evictOldestLocked()
	}
	t.mu.Unlock()

	return marker
}

// StartOperationWithContext creates a performance marker that is completed
// with the context error if the context is cancelled before CompleteOperation
// runs. The watcher exits as soon as either side finishes.
func (t *Tracker) StartOperationWithContext(ctx context.Context, operation, sessionID string) *Marker {
	marker := t.StartOperation(operation, sessionID)

	go func() {
		select {
		case <-marker.done:
		case <-ctx.Done():
			if marker.finish(ctx.Err()) && t.config.EnableAlerts {
				t.checkForAlerts(marker.snapshot())
			}
		}
	}()

	return marker
}

// CompleteOperation manually completes an operation and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil {
		return
	}
	if !marker.finish(nil) {
		return
	}

	if t.config.EnableAlerts {
		t.checkForAlerts(marker.snapshot())
	}
}

func (t *Tracker) checkForAlerts(marker Marker) {
	var alerts []*Alert

	if marker.Duration > t.thresholds.CriticalResponseThreshold {
		alerts = append(alerts, t.newAlert(marker, AlertCritical, "Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.thresholds.SlowResponseThreshold {
		alerts = append(alerts, t.newAlert(marker, AlertWarning, "Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.Contains(marker.Operation, "auth"):
		if marker.Duration > t.thresholds.AuthOperationThreshold {
			alerts = append(alerts, t.newAlert(marker, AlertWarning, "Authentication operation exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "store"):
		if marker.Duration > t.thresholds.StoreOperationThreshold {
			alerts = append(alerts, t.newAlert(marker, AlertWarning, "Session store operation exceeded threshold"))
		}
	}

	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

func (t *Tracker) newAlert(marker Marker, severity AlertSeverity, message string) *Alert {
	return &Alert{
		ID:        fmt.Sprintf("alert_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		Actual:    marker.Duration,
		Message:   message,
	}
}

// GetRecentMetrics returns markers for operations completed within the specified duration
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker

	for _, marker := range t.markers {
		snap := marker.snapshot()
		if snap.Completed && snap.EndTime.After(cutoff) {
			metrics = append(metrics, snap)
		}
	}
	return metrics
}

// GetActiveOperations returns currently running operations
func (t *Tracker) GetActiveOperations() []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var active []Marker
	for _, marker := range t.markers {
		snap := marker.snapshot()
		if !snap.Completed {
			snap.Duration = time.Since(snap.StartTime)
			active = append(active, snap)
		}
	}
	return active
}

// GetAlerts returns recorded performance alerts
func (t *Tracker) GetAlerts() []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Alert, len(t.alerts))
	copy(out, t.alerts)
	return out
}

// Cleanup removes old completed markers to prevent unbounded growth
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for id, marker := range t.markers {
		snap := marker.snapshot()
		if snap.Completed && snap.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}
}

// evictOldestLocked drops the oldest completed markers; caller holds mu.
func (t *Tracker) evictOldestLocked() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for id, marker := range t.markers {
		snap := marker.snapshot()
		if snap.Completed && snap.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount := 0
	completedCount := 0

	for _, marker := range t.markers {
		if marker.isCompleted() {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
		"systemMemoryMB":      memStats.Sys / (1024 * 1024),
	}
}
