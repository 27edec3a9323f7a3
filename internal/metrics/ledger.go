package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

var (
	ledgerAppendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "appends_total",
		Help:      "Count of block appends by outcome.",
	}, []string{"status"})

	ledgerAppendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "append_duration_seconds",
		Help:      "Duration of a block append including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	ledgerAppendConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "append_conflicts_total",
		Help:      "Count of append attempts lost to a concurrent writer.",
	})

	ledgerVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "verifications_total",
		Help:      "Count of chain verifications by verdict.",
	}, []string{"result"})

	ledgerVerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "verify_duration_seconds",
		Help:      "Duration of a full chain verification.",
		Buckets:   prometheus.DefBuckets,
	})

	ledgerChainLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "plasticledger",
		Subsystem: "ledger",
		Name:      "verified_blocks",
		Help:      "Blocks checked by the most recent verification.",
	})
)

// Ledger tracks append and verification metrics.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// ObserveAppend records one Append call. Every attempt beyond the first was
// caused by a storage conflict.
func (m Ledger) ObserveAppend(err error, attempts int, started time.Time) {
	status := statusLabel(err)
	if errors.Is(err, model.ErrAppendRetriesExhausted) {
		status = "exhausted"
	}
	conflicts := attempts - 1
	if status == "exhausted" {
		conflicts = attempts
	}
	if conflicts > 0 {
		ledgerAppendConflictsTotal.Add(float64(conflicts))
	}
	ledgerAppendsTotal.WithLabelValues(status).Inc()
	ledgerAppendDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}

func (m Ledger) ObserveVerify(status model.ChainStatus, blocks int, err error, started time.Time) {
	result := string(status)
	if err != nil {
		result = "error"
	}
	ledgerVerificationsTotal.WithLabelValues(result).Inc()
	ledgerVerifyDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		ledgerChainLength.Set(float64(blocks))
	}
}
