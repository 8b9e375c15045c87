package performance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(tracker *Tracker, operation string) (Marker, bool) {
	for _, m := range tracker.GetRecentMetrics(time.Minute) {
		if m.Operation == operation {
			return m, true
		}
	}
	return Marker{}, false
}

func TestCancelledContextCompletesMarkerWithError(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, MaxAlerts: 10, EnableAlerts: false})
	ctx, cancel := context.WithCancel(context.Background())

	marker := tracker.StartOperationWithContext(ctx, "store_load", "sess-1")
	require.NotNil(t, marker)
	require.Len(t, tracker.GetActiveOperations(), 1)

	cancel()

	require.Eventually(t, func() bool {
		return len(tracker.GetActiveOperations()) == 0
	}, time.Second, 5*time.Millisecond)

	metric, ok := findMetric(tracker, "store_load")
	require.True(t, ok)
	assert.True(t, metric.Completed)
	assert.False(t, metric.Success)
	assert.Equal(t, context.Canceled.Error(), metric.Error)
}

func TestCompleteOperationBeforeCancelKeepsSuccess(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, MaxAlerts: 10, EnableAlerts: false})
	ctx, cancel := context.WithCancel(context.Background())

	marker := tracker.StartOperationWithContext(ctx, "auth_verify", "sess-1")
	tracker.CompleteOperation(marker)
	cancel()

	// The watcher must not rewrite an already completed marker.
	time.Sleep(20 * time.Millisecond)

	metric, ok := findMetric(tracker, "auth_verify")
	require.True(t, ok)
	assert.True(t, metric.Completed)
	assert.True(t, metric.Success)
	assert.Empty(t, metric.Error)
}

func TestCompleteOperationIsIdempotent(t *testing.T) {
	tracker := NewTracker(nil)

	marker := tracker.StartOperation("intent_resolve", "sess-1")
	tracker.CompleteOperation(marker)

	first, ok := findMetric(tracker, "intent_resolve")
	require.True(t, ok)

	tracker.CompleteOperation(marker)

	second, ok := findMetric(tracker, "intent_resolve")
	require.True(t, ok)
	assert.Equal(t, first.EndTime, second.EndTime)
	assert.Equal(t, first.Duration, second.Duration)
}
