package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// AssessmentService runs the full pipeline for one uploaded sample and keeps
// the ledger as its system of record.
type AssessmentService struct {
	classifier MaterialClassifier
	evaluator  AssessmentEvaluator
	ledger     Ledger
	publisher  BlockPublisher
	metrics    Metrics
	logger     *zap.Logger
}

// NewAssessmentService builds an AssessmentService. publisher may be nil.
func NewAssessmentService(
	classifier MaterialClassifier,
	evaluator AssessmentEvaluator,
	ledger Ledger,
	publisher BlockPublisher,
	metrics Metrics,
	logger *zap.Logger,
) (*AssessmentService, error) {
	if classifier == nil {
		return nil, errors.New("assessment classifier is required")
	}
	if evaluator == nil {
		return nil, errors.New("assessment evaluator is required")
	}
	if ledger == nil {
		return nil, errors.New("assessment ledger is required")
	}
	if metrics == nil {
		return nil, errors.New("assessment metrics is required")
	}

	return &AssessmentService{
		classifier: classifier,
		evaluator:  evaluator,
		ledger:     ledger,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Assess classifies the sample at imagePath, evaluates it and records the
// result. The returned block carries the assessment.
func (s *AssessmentService) Assess(ctx context.Context, imagePath string) (_ model.Block, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveAssess(err, started)
	}()

	material, err := s.classifier.Classify(ctx, imagePath)
	if err != nil {
		return model.Block{}, fmt.Errorf("classify sample: %w", err)
	}

	return s.Evaluate(ctx, material, imagePath)
}

// Evaluate records an assessment for a sample whose material is already known.
func (s *AssessmentService) Evaluate(ctx context.Context, material model.Material, imagePath string) (model.Block, error) {
	result, err := s.evaluator.Evaluate(ctx, material, imagePath)
	if err != nil {
		return model.Block{}, fmt.Errorf("evaluate sample: %w", err)
	}
	return s.RecordAssessment(ctx, result)
}

// RecordAssessment appends result to the ledger and forwards the new block
// to the publisher.
func (s *AssessmentService) RecordAssessment(ctx context.Context, result model.AssessmentResult) (model.Block, error) {
	block, err := s.ledger.Append(ctx, result)
	if err != nil {
		return model.Block{}, fmt.Errorf("record assessment: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, block); err != nil {
			s.logger.Warn("block not published to mirror",
				zap.Uint64("block_number", block.Number), zap.Error(err))
		}
	}

	s.logger.Info("assessment recorded",
		zap.Uint64("block_number", block.Number),
		zap.String("material", string(result.Material)),
		zap.String("recommendation", string(result.Recommendation)),
		zap.String("hash", block.CurrentHash),
	)
	return block, nil
}

// VerifyChain checks the integrity of the whole ledger.
func (s *AssessmentService) VerifyChain(ctx context.Context) (model.Verification, error) {
	v, err := s.ledger.Verify(ctx)
	if err != nil {
		return model.Verification{}, fmt.Errorf("verify chain: %w", err)
	}
	return v, nil
}
