package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "evaluator",
		Name:      "evaluations_total",
		Help:      "Count of evaluations by material, contamination and recommendation.",
	}, []string{"material", "contamination", "recommendation"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "evaluator",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of image analysis and scoring.",
		Buckets:   prometheus.DefBuckets,
	})

	evaluationScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "evaluator",
		Name:      "recyclability_score",
		Help:      "Distribution of recyclability scores.",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plasticledger",
		Subsystem: "assessment",
		Name:      "requests_total",
		Help:      "Count of full assessments (classify, evaluate, record).",
	}, []string{"status"})

	assessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plasticledger",
		Subsystem: "assessment",
		Name:      "duration_seconds",
		Help:      "Duration of full assessments.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// Assessment tracks evaluator and assessment service metrics.
type Assessment struct{}

func NewAssessment() *Assessment {
	return &Assessment{}
}

// ObserveEvaluate records a finished evaluation. Failed evaluations only
// contribute to the duration histogram.
func (m Assessment) ObserveEvaluate(result model.AssessmentResult, err error, started time.Time) {
	evaluationDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return
	}
	evaluationsTotal.WithLabelValues(
		string(result.Material),
		string(result.Contamination),
		string(result.Recommendation),
	).Inc()
	evaluationScore.Observe(result.Score)
}

func (m Assessment) ObserveAssess(err error, started time.Time) {
	status := statusLabel(err)
	assessmentsTotal.WithLabelValues(status).Inc()
	assessmentDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}
