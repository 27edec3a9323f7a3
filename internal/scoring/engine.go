package scoring

import (
	"math"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const (
	acceptedThreshold      = 0.75
	needsCleaningThreshold = 0.4
)

// Score is the engine output for one sample.
type Score struct {
	Value                    float64
	MaterialWeight           float64
	LocalRecyclabilityFactor float64
}

// Engine computes scores from two weight tables. It holds no mutable state.
type Engine struct {
	materialWeights WeightTable
	localFactors    WeightTable
}

// NewEngine returns an Engine over the built-in tables.
func NewEngine() *Engine {
	return NewEngineWithTables(MaterialWeights, LocalRecyclability)
}

// NewEngineWithTables returns an Engine over custom tables.
func NewEngineWithTables(materialWeights, localFactors WeightTable) *Engine {
	return &Engine{materialWeights: materialWeights, localFactors: localFactors}
}

// Score computes round2(materialWeight * cleanliness * localFactor).
func (e *Engine) Score(material model.Material, cleanliness float64) Score {
	w := e.materialWeights.Lookup(material)
	l := e.localFactors.Lookup(material)
	return Score{
		Value:                    Round2(w * cleanliness * l),
		MaterialWeight:           w,
		LocalRecyclabilityFactor: l,
	}
}

// Recommend maps a score onto a recommendation.
func (e *Engine) Recommend(score float64) model.Recommendation {
	return Recommend(score)
}

// Recommend maps a score onto a recommendation.
func Recommend(score float64) model.Recommendation {
	switch {
	case score >= acceptedThreshold:
		return model.RecommendationAccepted
	case score >= needsCleaningThreshold:
		return model.RecommendationNeedsCleaning
	default:
		return model.RecommendationRejected
	}
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
