package ledger

import (
	"context"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store persists blocks. ReadTail returns nil when the chain is empty.
	// AppendAtomic must fail with model.ErrStorageConflict when the tail it
	// finds no longer precedes the block being written.
	Store interface {
		ReadTail(ctx context.Context) (*model.Block, error)
		AppendAtomic(ctx context.Context, block model.Block) error
		ReadAll(ctx context.Context) ([]model.Block, error)
	}
	Metrics interface {
		ObserveAppend(err error, attempts int, started time.Time)
		ObserveVerify(status model.ChainStatus, blocks int, err error, started time.Time)
	}
)
