package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAggregates(t *testing.T) {
	c := NewCollector()

	c.RecordTiming("tools/call search_dependencies", 10*time.Millisecond)
	c.RecordTiming("tools/call search_dependencies", 30*time.Millisecond)
	c.RecordFailure("tools/call search_dependencies", 20*time.Millisecond)

	snap := c.Snapshot()
	op, ok := snap.Operations["tools/call search_dependencies"]
	require.True(t, ok)
	assert.Equal(t, int64(3), op.Count)
	assert.Equal(t, int64(1), op.Errors)
	assert.Equal(t, int64(60), op.TotalTimeMs)
	assert.InDelta(t, 20.0, op.AvgTimeMs, 0.001)
	assert.Equal(t, int64(10), op.MinTimeMs)
	assert.Equal(t, int64(30), op.MaxTimeMs)
}

func TestSnapshotEmptyAndUptime(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	current := start
	c := newCollector(func() time.Time { return current })

	current = start.Add(90 * time.Second)
	snap := c.Snapshot()
	assert.Empty(t, snap.Operations)
	assert.NotNil(t, snap.Operations)
	assert.InDelta(t, 90.0, snap.UptimeSeconds, 0.001)
}

func TestCollectorConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming("initialize", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot().Operations["initialize"].Count)
}
