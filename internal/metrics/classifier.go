package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classifierRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "classifier",
		Name:      "requests_total",
		Help:      "Count of material classifier calls.",
	}, []string{"method", "status"})
	classifierRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "classifier",
		Name:      "request_duration_seconds",
		Help:      "Duration of material classifier calls.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "status"})
)

// Classifier tracks calls to the remote material classifier.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (m Classifier) Observe(method string, err error, started time.Time) {
	status := statusLabel(err)
	classifierRequestsTotal.WithLabelValues(method, status).Inc()
	classifierRequestDuration.WithLabelValues(method, status).Observe(time.Since(started).Seconds())
}
