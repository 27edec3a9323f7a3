// Package ledger keeps assessment results in an append-only, hash-linked chain.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/clock"
	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const (
	defaultMaxAppendAttempts = 5
	appendBackoffBase        = 10 * time.Millisecond
	appendBackoffLimit       = 200 * time.Millisecond
)

// Ledger appends blocks one at a time and verifies the stored chain.
type Ledger struct {
	store   Store
	metrics Metrics
	logger  *zap.Logger

	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
	maxAttempts  int
	backoffBase  time.Duration
	backoffLimit time.Duration

	mu sync.Mutex
}

// NewLedger builds a Ledger over store.
func NewLedger(store Store, metrics Metrics, logger *zap.Logger) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if metrics == nil {
		return nil, errors.New("ledger metrics is required")
	}

	return &Ledger{
		store:        store,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		sleep:        clock.SleepWithContext,
		maxAttempts:  defaultMaxAppendAttempts,
		backoffBase:  appendBackoffBase,
		backoffLimit: appendBackoffLimit,
	}, nil
}

// Append records result as the next block and returns it once persisted.
// Storage conflicts are retried against a freshly read tail.
func (l *Ledger) Append(ctx context.Context, result model.AssessmentResult) (_ model.Block, err error) {
	started := time.Now()
	attempts := 0
	defer func() {
		l.metrics.ObserveAppend(err, attempts, started)
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for attempts < l.maxAttempts {
		if err = ctx.Err(); err != nil {
			return model.Block{}, err
		}
		attempts++

		block, appendErr := l.tryAppend(ctx, result)
		if appendErr == nil {
			l.logger.Debug("block appended",
				zap.Uint64("block_number", block.Number),
				zap.String("hash", block.CurrentHash),
				zap.Int("attempts", attempts),
			)
			return block, nil
		}
		if !errors.Is(appendErr, model.ErrStorageConflict) {
			err = appendErr
			return model.Block{}, err
		}

		lastErr = appendErr
		l.logger.Warn("ledger tail moved during append, retrying",
			zap.Int("attempt", attempts), zap.Error(appendErr))
		if attempts == l.maxAttempts {
			break
		}
		if err = l.sleep(ctx, clock.Backoff(attempts, l.backoffBase, l.backoffLimit)); err != nil {
			return model.Block{}, err
		}
	}

	err = fmt.Errorf("%w after %d attempts: %w", model.ErrAppendRetriesExhausted, attempts, lastErr)
	return model.Block{}, err
}

func (l *Ledger) tryAppend(ctx context.Context, result model.AssessmentResult) (model.Block, error) {
	tail, err := l.store.ReadTail(ctx)
	if err != nil {
		return model.Block{}, fmt.Errorf("read chain tail: %w", err)
	}

	block := model.Block{
		Number:       1,
		Timestamp:    l.now().UTC().Truncate(time.Microsecond),
		Assessment:   result,
		PreviousHash: model.GenesisHash,
	}
	if tail != nil {
		block.Number = tail.Number + 1
		block.PreviousHash = tail.CurrentHash
	}

	if block.CurrentHash, err = ComputeHash(block); err != nil {
		return model.Block{}, fmt.Errorf("hash block %d: %w", block.Number, err)
	}
	if err = l.store.AppendAtomic(ctx, block); err != nil {
		return model.Block{}, fmt.Errorf("append block %d: %w", block.Number, err)
	}
	return block, nil
}

// Verify rescans the chain from the genesis block and reports the first
// block whose link or hash does not match. It never writes.
func (l *Ledger) Verify(ctx context.Context) (v model.Verification, err error) {
	started := time.Now()
	defer func() {
		l.metrics.ObserveVerify(v.Status, v.BlocksChecked, err, started)
	}()

	blocks, err := l.store.ReadAll(ctx)
	if err != nil {
		return model.Verification{}, fmt.Errorf("read chain: %w", err)
	}

	v, err = VerifyBlocks(blocks)
	if err != nil {
		return model.Verification{}, err
	}
	if v.Status == model.ChainCorrupted {
		l.logger.Warn("chain corrupted",
			zap.Uint64("block_number", *v.FirstBadBlockNumber),
			zap.String("reason", string(v.Reason)),
		)
	}
	return v, nil
}

// VerifyBlocks checks blocks, ordered by number, as a complete chain.
func VerifyBlocks(blocks []model.Block) (model.Verification, error) {
	expected := model.GenesisHash
	for i, b := range blocks {
		if b.PreviousHash != expected {
			return corrupted(b.Number, model.PreviousHashMismatch, i+1), nil
		}
		hash, err := ComputeHash(b)
		if err != nil {
			return model.Verification{}, fmt.Errorf("hash block %d: %w", b.Number, err)
		}
		if hash != b.CurrentHash {
			return corrupted(b.Number, model.HashMismatch, i+1), nil
		}
		expected = b.CurrentHash
	}
	return model.Verification{Status: model.ChainValid, BlocksChecked: len(blocks)}, nil
}

func corrupted(number uint64, reason model.CorruptionReason, checked int) model.Verification {
	return model.Verification{
		Status:              model.ChainCorrupted,
		FirstBadBlockNumber: &number,
		Reason:              reason,
		BlocksChecked:       checked,
	}
}
