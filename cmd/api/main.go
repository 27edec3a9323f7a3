package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/classifier"
	"github.com/goodnatureofminers/plasticledger-backend/internal/contamination"
	"github.com/goodnatureofminers/plasticledger-backend/internal/export"
	"github.com/goodnatureofminers/plasticledger-backend/internal/ledger"
	"github.com/goodnatureofminers/plasticledger-backend/internal/metrics"
	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/sqlite"
	"github.com/goodnatureofminers/plasticledger-backend/internal/scoring"
	"github.com/goodnatureofminers/plasticledger-backend/internal/service"
	"github.com/goodnatureofminers/plasticledger-backend/internal/transport"
	"github.com/goodnatureofminers/plasticledger-backend/internal/upload"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/batcher"
)

const shutdownTimeout = 10 * time.Second

type config struct {
	Addr              string        `long:"addr" env:"PLASTIC_LEDGER_API_ADDR" description:"HTTP listen address" default:":8000"`
	DBPath            string        `long:"db-path" env:"PLASTIC_LEDGER_DB_PATH" description:"sqlite ledger database" default:"ledger.db"`
	UploadDir         string        `long:"upload-dir" env:"PLASTIC_LEDGER_UPLOAD_DIR" description:"directory for uploaded samples" default:"uploads"`
	ClassifierURL     string        `long:"classifier-url" env:"PLASTIC_LEDGER_CLASSIFIER_URL" description:"inference service base URL"`
	ClassifierTimeout time.Duration `long:"classifier-timeout" env:"PLASTIC_LEDGER_CLASSIFIER_TIMEOUT" description:"inference request timeout" default:"30s"`
	Material          string        `long:"material" env:"PLASTIC_LEDGER_MATERIAL" description:"skip the classifier and label every sample with this material"`
	ClickhouseDSN     string        `long:"clickhouse-dsn" env:"PLASTIC_LEDGER_CLICKHOUSE_DSN" description:"ClickHouse DSN for the analytics mirror; empty disables it"`
	MirrorFlushSize   int           `long:"mirror-flush-size" env:"PLASTIC_LEDGER_MIRROR_FLUSH_SIZE" description:"blocks per mirror insert" default:"100"`
	MirrorInterval    time.Duration `long:"mirror-flush-interval" env:"PLASTIC_LEDGER_MIRROR_FLUSH_INTERVAL" description:"mirror flush period" default:"1s"`
	CORSOrigins       []string      `long:"cors-origin" env:"PLASTIC_LEDGER_CORS_ORIGINS" env-delim:"," description:"allowed CORS origins" default:"*"`
	LogJSON           bool          `long:"log-json" env:"PLASTIC_LEDGER_LOG_JSON" description:"production JSON logging"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}
	if cfg.LogJSON {
		if logger, err = zap.NewProduction(); err != nil {
			panic("can't initialize zap logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.ClassifierURL == "" && cfg.Material == "" {
		logger.Fatal("either --classifier-url or --material is required")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	store, err := sqlite.NewRepository(cfg.DBPath, metrics.NewRepository("sqlite"))
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close ledger store", zap.Error(err))
		}
	}()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate ledger store: %w", err)
	}

	chain, err := ledger.NewLedger(store, metrics.NewLedger(), logger.Named("ledger"))
	if err != nil {
		return err
	}

	assessmentMetrics := metrics.NewAssessment()
	evaluator, err := service.NewEvaluator(
		contamination.NewExtractor(logger.Named("contamination")),
		scoring.NewEngine(),
		assessmentMetrics,
		logger.Named("evaluator"),
	)
	if err != nil {
		return err
	}

	clf, err := newClassifier(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var (
		publisher service.BlockPublisher
		stats     transport.StatsReader
	)
	if cfg.ClickhouseDSN != "" {
		analytics, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewRepository("clickhouse"))
		if err != nil {
			return fmt.Errorf("init analytics repository: %w", err)
		}
		defer func() {
			if err := analytics.Close(); err != nil {
				logger.Error("close analytics repository", zap.Error(err))
			}
		}()

		if err := analytics.Ping(ctx); err != nil {
			logger.Warn("analytics mirror unreachable, blocks will be resynced later", zap.Error(err))
		}

		mirror, err := export.NewMirror(analytics, store, metrics.NewMirror(), logger.Named("mirror"), export.Config{
			Batch: batcher.Config{FlushSize: cfg.MirrorFlushSize, FlushInterval: cfg.MirrorInterval},
		})
		if err != nil {
			return err
		}
		// The mirror outlives the signal context; Stop flushes it after the
		// server has drained.
		mirror.Start(context.WithoutCancel(ctx))
		defer mirror.Stop()

		publisher = mirror
		stats = analytics
	}

	svc, err := service.NewAssessmentService(clf, evaluator, chain, publisher, assessmentMetrics, logger.Named("assessment"))
	if err != nil {
		return err
	}

	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	handler, err := transport.NewHandler(svc, uploads, stats, metrics.NewHTTP(), logger.Named("http"))
	if err != nil {
		return err
	}
	mux := handler.Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	s := &http.Server{
		Addr: cfg.Addr,
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	return serve(ctx, s, ln, logger)
}

// serve runs s until ctx is done and returns once in-flight requests have finished.
func serve(ctx context.Context, s *http.Server, ln net.Listener, logger *zap.Logger) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	if err := s.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	<-shutdownDone
	return nil
}

func newClassifier(ctx context.Context, cfg config, logger *zap.Logger) (service.MaterialClassifier, error) {
	if cfg.Material != "" {
		material := model.ParseMaterial(cfg.Material)
		logger.Info("using fixed material label", zap.String("material", string(material)))
		return classifier.Fixed(material), nil
	}

	lazy, err := classifier.NewLazy(func(ctx context.Context) (classifier.Classifier, error) {
		remote, err := classifier.NewRemote(
			cfg.ClassifierURL,
			&http.Client{Timeout: cfg.ClassifierTimeout},
			metrics.NewClassifier(),
			logger.Named("classifier"),
		)
		if err != nil {
			return nil, err
		}
		if err := remote.Ping(ctx); err != nil {
			logger.Warn("classifier service not ready yet", zap.String("url", cfg.ClassifierURL), zap.Error(err))
		}
		return remote, nil
	})
	if err != nil {
		return nil, err
	}

	if err := lazy.Warm(ctx); err != nil {
		return nil, err
	}
	return lazy, nil
}
