package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/safe"
)

const readAllQuery = `SELECT` + blockColumns + `
FROM blocks
ORDER BY block_number ASC`

const blocksAfterQuery = `SELECT` + blockColumns + `
FROM blocks
WHERE block_number > ?
ORDER BY block_number ASC
LIMIT ?`

// ReadAll returns the whole chain ordered by block number. The single SELECT
// runs in one implicit read transaction, so concurrent appends are either
// fully visible or not at all.
func (r *Repository) ReadAll(ctx context.Context) (_ []model.Block, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("read_all", err, start)
	}()

	blocks, err := r.queryBlocks(ctx, readAllQuery)
	if err != nil {
		return nil, fmt.Errorf("read chain: %w", err)
	}
	return blocks, nil
}

// BlocksAfter returns up to limit blocks numbered above after, ascending.
func (r *Repository) BlocksAfter(ctx context.Context, after uint64, limit int) (_ []model.Block, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("blocks_after", err, start)
	}()

	from, err := safe.Int64(after)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	blocks, err := r.queryBlocks(ctx, blocksAfterQuery, from, limit)
	if err != nil {
		return nil, fmt.Errorf("read blocks after %d: %w", after, err)
	}
	return blocks, nil
}

func (r *Repository) queryBlocks(ctx context.Context, query string, args ...any) (_ []model.Block, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var blocks []model.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}
