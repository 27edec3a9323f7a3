// Command assess evaluates a batch of sample images and records each result in the ledger.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/classifier"
	"github.com/goodnatureofminers/plasticledger-backend/internal/contamination"
	"github.com/goodnatureofminers/plasticledger-backend/internal/ledger"
	"github.com/goodnatureofminers/plasticledger-backend/internal/metrics"
	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/sqlite"
	"github.com/goodnatureofminers/plasticledger-backend/internal/scoring"
	"github.com/goodnatureofminers/plasticledger-backend/internal/service"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/workerpool"
)

type config struct {
	DBPath        string        `long:"db-path" env:"PLASTIC_LEDGER_DB_PATH" description:"sqlite ledger database" default:"ledger.db"`
	ClassifierURL string        `long:"classifier-url" env:"PLASTIC_LEDGER_CLASSIFIER_URL" description:"inference service base URL"`
	Timeout       time.Duration `long:"classifier-timeout" env:"PLASTIC_LEDGER_CLASSIFIER_TIMEOUT" description:"inference request timeout" default:"30s"`
	Material      string        `long:"material" env:"PLASTIC_LEDGER_MATERIAL" description:"label every sample with this material instead of classifying"`
	Workers       int           `long:"workers" env:"PLASTIC_LEDGER_ASSESS_WORKERS" description:"concurrent evaluations" default:"4"`
	Args          struct {
		Images []string `positional-arg-name:"image" required:"1"`
	} `positional-args:"yes"`
}

type outcome struct {
	Image       string                  `json:"image"`
	BlockNumber uint64                  `json:"block_number,omitempty"`
	Hash        string                  `json:"hash,omitempty"`
	Result      *model.AssessmentResult `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}
	if cfg.ClassifierURL == "" && cfg.Material == "" {
		logger.Fatal("either --classifier-url or --material is required")
	}

	failed, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("assess failed", zap.Error(err))
	}
	if failed > 0 {
		logger.Error("some samples were not recorded", zap.Int("failed", failed))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) (int, error) {
	store, err := sqlite.NewRepository(cfg.DBPath, metrics.NewRepository("sqlite"))
	if err != nil {
		return 0, fmt.Errorf("open ledger store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close ledger store", zap.Error(err))
		}
	}()
	if err := store.Migrate(); err != nil {
		return 0, fmt.Errorf("migrate ledger store: %w", err)
	}

	chain, err := ledger.NewLedger(store, metrics.NewLedger(), logger.Named("ledger"))
	if err != nil {
		return 0, err
	}
	assessmentMetrics := metrics.NewAssessment()
	evaluator, err := service.NewEvaluator(
		contamination.NewExtractor(logger.Named("contamination")),
		scoring.NewEngine(),
		assessmentMetrics,
		logger.Named("evaluator"),
	)
	if err != nil {
		return 0, err
	}

	var clf service.MaterialClassifier = classifier.Fixed(model.ParseMaterial(cfg.Material))
	if cfg.Material == "" {
		clf, err = classifier.NewRemote(cfg.ClassifierURL, &http.Client{Timeout: cfg.Timeout}, metrics.NewClassifier(), logger.Named("classifier"))
		if err != nil {
			return 0, err
		}
	}

	svc, err := service.NewAssessmentService(clf, evaluator, chain, nil, assessmentMetrics, logger.Named("assessment"))
	if err != nil {
		return 0, err
	}

	outcomes, err := workerpool.Map(ctx, cfg.Workers, cfg.Args.Images, func(ctx context.Context, image string) (outcome, error) {
		block, err := svc.Assess(ctx, image)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome{}, ctxErr
			}
			return outcome{Image: image, Error: err.Error()}, nil
		}
		return outcome{
			Image:       image,
			BlockNumber: block.Number,
			Hash:        block.CurrentHash,
			Result:      &block.Assessment,
		}, nil
	})
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
		if err := enc.Encode(o); err != nil {
			return failed, fmt.Errorf("write outcome: %w", err)
		}
	}
	return failed, nil
}
