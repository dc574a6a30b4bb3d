//go:build unit

package stats

import (
	"context"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestStats_Snapshot(t *testing.T) {
	t.Run("snapshot reflects counters", func(t *testing.T) {
		// Prepare
		var s Stats
		s.Gets.Add(3)
		s.Hits.Inc()
		s.Misses.Add(2)
		s.Relocations.Inc()

		// Execute
		snap := s.Snapshot()

		// Check
		assert.Equal(t, uint64(3), snap.Gets, "gets")
		assert.Equal(t, uint64(1), snap.Hits, "hits")
		assert.Equal(t, uint64(2), snap.Misses, "misses")
		assert.Equal(t, uint64(1), snap.Relocations, "relocations")
		assert.Zero(t, snap.Sets, "no sets")
	})
}

func TestStats_Report(t *testing.T) {
	t.Run("publishes gauges per name", func(t *testing.T) {
		// Prepare
		var s Stats
		s.Sets.Add(5)
		s.SlabAllocations.Add(2)

		// Execute
		s.Report("report-test")

		// Check
		assert.Equal(t, float64(5), testutil.ToFloat64(Gauge("sets", "report-test")), "sets gauge")
		assert.Equal(t, float64(2), testutil.ToFloat64(Gauge("slab_allocations", "report-test")), "slab allocations gauge")
	})
}

func TestStats_RunReporter(t *testing.T) {
	t.Run("reports until context is done", func(t *testing.T) {
		// Prepare
		var s Stats
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		// Execute
		go func() {
			s.RunReporter(ctx, "reporter-test", time.Millisecond)
			close(done)
		}()
		s.Gets.Add(7)
		cancel()
		<-done

		// Check
		assert.Equal(t, float64(7), testutil.ToFloat64(Gauge("gets", "reporter-test")), "final report on exit")
	})
}
