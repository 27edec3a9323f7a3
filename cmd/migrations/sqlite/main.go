package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/metrics"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/sqlite"
)

type config struct {
	DBPath string `long:"db-path" env:"PLASTIC_LEDGER_DB_PATH" default:"ledger.db" description:"sqlite ledger database"`
	Down   bool   `long:"down" description:"revert every migration instead of applying them"`
}

func main() {
	cfg := config{}

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

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("migration run failed", zap.Error(err))
	}
}

func runMigrations(cfg config, logger *zap.Logger) error {
	repo, err := sqlite.NewRepository(cfg.DBPath, metrics.NewRepository("sqlite"))
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}()

	if cfg.Down {
		err = repo.MigrateDown()
	} else {
		err = repo.Migrate()
	}
	if err != nil {
		return err
	}

	version, dirty, err := repo.MigrationVersion()
	if err != nil {
		return err
	}
	logger.Info("migrations applied",
		zap.String("db", cfg.DBPath),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
