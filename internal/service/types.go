package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/contamination"
	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/scoring"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	SignalExtractor interface {
		Extract(imagePath string) contamination.Result
	}
	ScoringEngine interface {
		Score(material model.Material, cleanliness float64) scoring.Score
		Recommend(score float64) model.Recommendation
	}
	MaterialClassifier interface {
		Classify(ctx context.Context, imagePath string) (model.Material, error)
	}
	AssessmentEvaluator interface {
		Evaluate(ctx context.Context, material model.Material, imagePath string) (model.AssessmentResult, error)
	}
	Ledger interface {
		Append(ctx context.Context, result model.AssessmentResult) (model.Block, error)
		Verify(ctx context.Context) (model.Verification, error)
	}
	// BlockPublisher receives every recorded block; failures do not fail the assessment.
	BlockPublisher interface {
		Publish(ctx context.Context, block model.Block) error
	}
	Metrics interface {
		ObserveEvaluate(result model.AssessmentResult, err error, started time.Time)
		ObserveAssess(err error, started time.Time)
	}
)
