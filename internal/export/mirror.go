// Package export copies appended ledger blocks into the analytics mirror.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/batcher"
)

const defaultResyncPageSize = 500

// Config tunes batching and catch-up.
type Config struct {
	Batch          batcher.Config
	ResyncPageSize int
}

// Mirror forwards blocks to the analytics repository in batches. Blocks the
// mirror missed while it was down are copied by Resync on Start.
type Mirror struct {
	repo     Repository
	source   Source
	metrics  Metrics
	logger   *zap.Logger
	writer   BlockWriter
	pageSize int
}

// NewMirror builds a Mirror.
func NewMirror(repo Repository, source Source, metrics Metrics, logger *zap.Logger, cfg Config) (*Mirror, error) {
	if repo == nil {
		return nil, errors.New("mirror repository is required")
	}
	if source == nil {
		return nil, errors.New("mirror source is required")
	}
	if metrics == nil {
		return nil, errors.New("mirror metrics is required")
	}
	if cfg.ResyncPageSize <= 0 {
		cfg.ResyncPageSize = defaultResyncPageSize
	}

	m := &Mirror{
		repo:     repo,
		source:   source,
		metrics:  metrics,
		logger:   logger,
		pageSize: cfg.ResyncPageSize,
	}
	m.writer = batcher.New(logger.Named("batcher"), m.flush, cfg.Batch)
	return m, nil
}

// Start copies missing blocks and then begins accepting Publish calls.
// A failed resync is logged; the next start retries it.
func (m *Mirror) Start(ctx context.Context) {
	if n, err := m.Resync(ctx); err != nil {
		m.logger.Warn("mirror resync failed", zap.Int("copied", n), zap.Error(err))
	} else if n > 0 {
		m.logger.Info("mirror resynced", zap.Int("copied", n))
	}
	m.writer.Start(ctx)
}

// Stop flushes queued blocks and stops the writer.
func (m *Mirror) Stop() {
	m.writer.Stop()
}

// Publish queues block for mirroring.
func (m *Mirror) Publish(ctx context.Context, block model.Block) error {
	if err := m.writer.Add(ctx, block); err != nil {
		m.metrics.ObserveDropped()
		return fmt.Errorf("queue block %d for mirror: %w", block.Number, err)
	}
	return nil
}

// Resync copies every block above the mirror's gap-free prefix and returns
// how many were copied. Blocks lost to a failed flush are recopied together
// with everything after them; the mirror table collapses the duplicates.
func (m *Mirror) Resync(ctx context.Context) (copied int, err error) {
	started := time.Now()
	defer func() {
		m.metrics.ObserveResync(err, copied, started)
	}()

	after, err := m.repo.ContiguousBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("read mirrored contiguous block: %w", err)
	}
	highest, err := m.repo.MaxBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("read mirrored max block: %w", err)
	}
	if highest > after {
		m.logger.Warn("mirror has gaps, recopying",
			zap.Uint64("contiguous", after), zap.Uint64("max", highest))
	}

	for {
		blocks, err := m.source.BlocksAfter(ctx, after, m.pageSize)
		if err != nil {
			return copied, fmt.Errorf("read blocks after %d: %w", after, err)
		}
		if len(blocks) == 0 {
			return copied, nil
		}
		if err := m.repo.InsertBlocks(ctx, blocks); err != nil {
			return copied, fmt.Errorf("mirror blocks after %d: %w", after, err)
		}
		copied += len(blocks)
		after = blocks[len(blocks)-1].Number
		if len(blocks) < m.pageSize {
			return copied, nil
		}
	}
}

func (m *Mirror) flush(ctx context.Context, blocks []model.Block) (err error) {
	started := time.Now()
	defer func() {
		m.metrics.ObserveFlush(err, len(blocks), started)
	}()

	if err = m.repo.InsertBlocks(ctx, blocks); err != nil {
		return fmt.Errorf("mirror %d blocks: %w", len(blocks), err)
	}
	return nil
}
