package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mirrorFlushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "mirror",
		Name:      "flushes_total",
		Help:      "Count of block batches written to the analytics mirror.",
	}, []string{"operation", "status"})

	mirrorFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "mirror",
		Name:      "flush_duration_seconds",
		Help:      "Duration of mirror writes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	mirrorBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "mirror",
		Name:      "blocks_total",
		Help:      "Count of blocks written to the analytics mirror.",
	}, []string{"operation"})

	mirrorDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "mirror",
		Name:      "dropped_total",
		Help:      "Count of blocks that could not be queued for mirroring.",
	})
)

// Mirror tracks the ClickHouse analytics mirror.
type Mirror struct{}

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m Mirror) ObserveFlush(err error, blocks int, started time.Time) {
	m.observe("flush", err, blocks, started)
}

func (m Mirror) ObserveResync(err error, blocks int, started time.Time) {
	m.observe("resync", err, blocks, started)
}

func (m Mirror) ObserveDropped() {
	mirrorDroppedTotal.Inc()
}

func (m Mirror) observe(operation string, err error, blocks int, started time.Time) {
	status := statusLabel(err)
	mirrorFlushesTotal.WithLabelValues(operation, status).Inc()
	mirrorFlushDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
	if err == nil {
		mirrorBlocksTotal.WithLabelValues(operation).Add(float64(blocks))
	}
}
