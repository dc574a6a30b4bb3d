package stats

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
	"time"
)

// Stats - Counters kept by a slab hash map. The hash map itself is single owner, the counters are atomic
// so a reporter can read them from another goroutine.
type Stats struct {
	Gets   atomic.Uint64
	Hits   atomic.Uint64
	Misses atomic.Uint64

	Sets    atomic.Uint64
	Inserts atomic.Uint64
	Updates atomic.Uint64

	ForwardHops        atomic.Uint64
	SlabAllocations    atomic.Uint64
	BufferAllocations  atomic.Uint64
	Relocations        atomic.Uint64
	DiscardedOccupants atomic.Uint64
}

// Snapshot - Point in time copy of Stats
type Snapshot struct {
	Gets               uint64
	Hits               uint64
	Misses             uint64
	Sets               uint64
	Inserts            uint64
	Updates            uint64
	ForwardHops        uint64
	SlabAllocations    uint64
	BufferAllocations  uint64
	Relocations        uint64
	DiscardedOccupants uint64
}

var gauges = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "slabhashmap_stats",
	Help: "Stats about usage of slab hash maps",
}, []string{"metric", "name"})

// Snapshot - Returns the current value of every counter
func (S *Stats) Snapshot() Snapshot {
	return Snapshot{
		Gets:               S.Gets.Load(),
		Hits:               S.Hits.Load(),
		Misses:             S.Misses.Load(),
		Sets:               S.Sets.Load(),
		Inserts:            S.Inserts.Load(),
		Updates:            S.Updates.Load(),
		ForwardHops:        S.ForwardHops.Load(),
		SlabAllocations:    S.SlabAllocations.Load(),
		BufferAllocations:  S.BufferAllocations.Load(),
		Relocations:        S.Relocations.Load(),
		DiscardedOccupants: S.DiscardedOccupants.Load(),
	}
}

// Report - Publishes the counters to prometheus under the given hash map name
func (S *Stats) Report(name string) {
	s := S.Snapshot()
	gauges.WithLabelValues("gets", name).Set(float64(s.Gets))
	gauges.WithLabelValues("hits", name).Set(float64(s.Hits))
	gauges.WithLabelValues("misses", name).Set(float64(s.Misses))
	gauges.WithLabelValues("sets", name).Set(float64(s.Sets))
	gauges.WithLabelValues("inserts", name).Set(float64(s.Inserts))
	gauges.WithLabelValues("updates", name).Set(float64(s.Updates))
	gauges.WithLabelValues("forward_hops", name).Set(float64(s.ForwardHops))
	gauges.WithLabelValues("slab_allocations", name).Set(float64(s.SlabAllocations))
	gauges.WithLabelValues("buffer_allocations", name).Set(float64(s.BufferAllocations))
	gauges.WithLabelValues("relocations", name).Set(float64(s.Relocations))
	gauges.WithLabelValues("discarded_occupants", name).Set(float64(s.DiscardedOccupants))
}

// RunReporter - Calls Report every interval until ctx is done, and once more on the way out
func (S *Stats) RunReporter(ctx context.Context, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			S.Report(name)
			return
		case <-ticker.C:
			S.Report(name)
		}
	}
}

// Gauge - Returns the prometheus gauge for one metric of one hash map, mainly for inspection in tests
func Gauge(metric, name string) prometheus.Gauge {
	return gauges.WithLabelValues(metric, name)
}
