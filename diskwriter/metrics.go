package diskwriter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queuedWrites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swarm_disk_queued_writes",
		Help: "Writes accepted but not yet completed by a worker.",
	})
	completedWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarm_disk_writes_completed_total",
		Help: "Writes flushed to storage successfully.",
	})
	failedWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarm_disk_writes_failed_total",
		Help: "Writes whose storage commit returned an error.",
	})
)
