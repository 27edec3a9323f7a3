package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// Evaluator turns a material label and a sample photo into an AssessmentResult.
// It is stateless and safe for concurrent use.
type Evaluator struct {
	extractor SignalExtractor
	engine    ScoringEngine
	metrics   Metrics
	logger    *zap.Logger
}

// NewEvaluator builds an Evaluator with dependencies.
func NewEvaluator(extractor SignalExtractor, engine ScoringEngine, metrics Metrics, logger *zap.Logger) (*Evaluator, error) {
	if extractor == nil {
		return nil, errors.New("evaluator extractor is required")
	}
	if engine == nil {
		return nil, errors.New("evaluator scoring engine is required")
	}
	if metrics == nil {
		return nil, errors.New("evaluator metrics is required")
	}
	return &Evaluator{extractor: extractor, engine: engine, metrics: metrics, logger: logger}, nil
}

// Evaluate extracts the contamination signal, scores it and derives the
// recommendation. Undecodable images are scored with neutral cleanliness;
// only context cancellation fails an evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, material model.Material, imagePath string) (result model.AssessmentResult, err error) {
	started := time.Now()
	defer func() {
		e.metrics.ObserveEvaluate(result, err, started)
	}()

	if err = ctx.Err(); err != nil {
		return model.AssessmentResult{}, err
	}

	signal := e.extractor.Extract(imagePath)
	if err = ctx.Err(); err != nil {
		return model.AssessmentResult{}, err
	}

	score := e.engine.Score(material, signal.Cleanliness)
	result = model.AssessmentResult{
		Material:          material,
		Contamination:     signal.Level,
		CleanlinessFactor: signal.Cleanliness,
		Score:             score.Value,
		Breakdown: model.ScoreBreakdown{
			MaterialWeight:           score.MaterialWeight,
			CleanlinessFactor:        signal.Cleanliness,
			LocalRecyclabilityFactor: score.LocalRecyclabilityFactor,
		},
		Recommendation: e.engine.Recommend(score.Value),
	}

	e.logger.Debug("sample evaluated",
		zap.String("material", string(material)),
		zap.String("contamination", string(result.Contamination)),
		zap.Float64("score", result.Score),
		zap.String("recommendation", string(result.Recommendation)),
	)
	return result, nil
}
