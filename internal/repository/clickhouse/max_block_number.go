package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const maxBlockNumberQuery = `
SELECT coalesce(max(block_number), toUInt64(0)) AS max_block_number
FROM ledger_blocks`

// MaxBlockNumber returns the highest mirrored block number, zero when empty.
func (r *Repository) MaxBlockNumber(ctx context.Context) (_ uint64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_block_number", err, start)
	}()

	rows, err := r.conn.Query(ctx, maxBlockNumberQuery)
	if err != nil {
		return 0, fmt.Errorf("query max block number: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var number uint64
	if !rows.Next() {
		return 0, fmt.Errorf("max block number not found")
	}
	if err = rows.Scan(&number); err != nil {
		return 0, fmt.Errorf("scan max block number: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate max block number: %w", err)
	}

	return number, nil
}
