package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// Ledger block numbers start at 1, so a block sits in the gap-free prefix
// exactly when its rank equals its number.
const contiguousBlockNumberQuery = `
WITH ranked AS (
	SELECT
		block_number,
		row_number() OVER (ORDER BY block_number) AS rn
	FROM ledger_blocks
	GROUP BY block_number
)
SELECT coalesce(max(block_number), toUInt64(0)) AS contiguous_block_number
FROM ranked
WHERE rn = block_number`

// ContiguousBlockNumber returns the highest N such that blocks 1..N are all
// mirrored, zero when block 1 is missing.
func (r *Repository) ContiguousBlockNumber(ctx context.Context) (_ uint64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("contiguous_block_number", err, start)
	}()

	rows, err := r.conn.Query(ctx, contiguousBlockNumberQuery)
	if err != nil {
		return 0, fmt.Errorf("query contiguous block number: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var number uint64
	if !rows.Next() {
		return 0, fmt.Errorf("contiguous block number not found")
	}
	if err = rows.Scan(&number); err != nil {
		return 0, fmt.Errorf("scan contiguous block number: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate contiguous block number: %w", err)
	}

	return number, nil
}
