package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const readTailQuery = `SELECT` + blockColumns + `
FROM blocks
ORDER BY block_number DESC
LIMIT 1`

// ReadTail returns the highest numbered block, or nil for an empty chain.
func (r *Repository) ReadTail(ctx context.Context) (_ *model.Block, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("read_tail", err, start)
	}()

	b, err := scanBlock(r.db.QueryRowContext(ctx, readTailQuery))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tail block: %w", err)
	}
	return &b, nil
}
