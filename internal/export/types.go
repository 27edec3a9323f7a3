package export

import (
	"context"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Repository is the analytics store blocks are mirrored into.
	Repository interface {
		InsertBlocks(ctx context.Context, blocks []model.Block) error
		MaxBlockNumber(ctx context.Context) (uint64, error)
		ContiguousBlockNumber(ctx context.Context) (uint64, error)
	}
	// Source reads blocks back from the authoritative chain.
	Source interface {
		BlocksAfter(ctx context.Context, after uint64, limit int) ([]model.Block, error)
	}
	BlockWriter interface {
		Start(ctx context.Context)
		Stop()
		Add(ctx context.Context, block model.Block) error
	}
	Metrics interface {
		ObserveFlush(err error, blocks int, started time.Time)
		ObserveResync(err error, blocks int, started time.Time)
		ObserveDropped()
	}
)
