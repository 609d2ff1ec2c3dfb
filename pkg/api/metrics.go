package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clydefs/clydefs/pkg/blink"
)

// Metrics holds the Prometheus collectors the debug/inspection server
// exposes at /metrics.
type Metrics struct {
	TreesCreated       prometheus.Counter
	TreesRemoved       prometheus.Counter
	DirEntriesInserted prometheus.Counter
	BytesWritten       prometheus.Counter
	DescentHighWater   prometheus.GaugeFunc
}

// NewMetrics registers a fresh set of collectors against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		TreesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clydefs_trees_created_total",
			Help: "Number of B-link trees created via tree_create.",
		}),
		TreesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clydefs_trees_removed_total",
			Help: "Number of B-link trees removed via tree_remove.",
		}),
		DirEntriesInserted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clydefs_dir_entries_inserted_total",
			Help: "Number of directory entries inserted via the itbl layer.",
		}),
		BytesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clydefs_node_bytes_written_total",
			Help: "Number of payload bytes written via node_write.",
		}),
		DescentHighWater: promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "clydefs_descent_stack_high_water",
			Help: "Deepest clystack.Stack any Insert/Remove descent has recorded so far.",
		}, func() float64 {
			return float64(blink.DescentHighWater())
		}),
	}
}
