// Command verify-chain checks the ledger hash chain and exits with status 2 when it is corrupted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/ledger"
	"github.com/goodnatureofminers/plasticledger-backend/internal/metrics"
	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/sqlite"
)

const exitCorrupted = 2

type config struct {
	DBPath string `long:"db-path" env:"PLASTIC_LEDGER_DB_PATH" description:"sqlite ledger database" default:"ledger.db"`
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

	v, err := verify(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("verify chain failed", zap.Error(err))
	}
	if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
		logger.Fatal("write verification", zap.Error(err))
	}
	if v.Status == model.ChainCorrupted {
		_ = logger.Sync()
		os.Exit(exitCorrupted)
	}
}

func verify(ctx context.Context, cfg config, logger *zap.Logger) (model.Verification, error) {
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return model.Verification{}, err
	}

	store, err := sqlite.NewReadOnlyRepository(cfg.DBPath, metrics.NewRepository("sqlite"))
	if err != nil {
		return model.Verification{}, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close ledger store", zap.Error(err))
		}
	}()

	chain, err := ledger.NewLedger(store, metrics.NewLedger(), logger.Named("ledger"))
	if err != nil {
		return model.Verification{}, err
	}
	return chain.Verify(ctx)
}
