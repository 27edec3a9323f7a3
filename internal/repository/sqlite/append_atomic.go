package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/safe"
)

const insertBlockQuery = `
INSERT INTO blocks (` + blockColumns + `
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const tailLinkQuery = `
SELECT block_number, current_hash
FROM blocks
ORDER BY block_number DESC
LIMIT 1`

// AppendAtomic inserts block if it directly follows the current tail.
// It returns model.ErrStorageConflict when another writer appended first.
func (r *Repository) AppendAtomic(ctx context.Context, block model.Block) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("append_block", err, start)
	}()

	number, err := safe.Int64(block.Number)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapConflict("begin append", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = checkLink(ctx, tx, block); err != nil {
		return err
	}

	a := block.Assessment
	if _, err = tx.ExecContext(ctx, insertBlockQuery,
		number,
		model.FormatTimestamp(block.Timestamp),
		string(a.Material),
		string(a.Contamination),
		a.CleanlinessFactor,
		a.Breakdown.MaterialWeight,
		a.Breakdown.LocalRecyclabilityFactor,
		a.Score,
		string(a.Recommendation),
		block.PreviousHash,
		block.CurrentHash,
	); err != nil {
		return wrapConflict(fmt.Sprintf("insert block %d", block.Number), err)
	}

	if err = tx.Commit(); err != nil {
		return wrapConflict("commit append", err)
	}
	return nil
}

// checkLink re-reads the tail inside the write transaction.
func checkLink(ctx context.Context, tx *sql.Tx, block model.Block) error {
	var (
		tailNumber int64
		tailHash   string
	)
	err := tx.QueryRowContext(ctx, tailLinkQuery).Scan(&tailNumber, &tailHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if block.Number != 1 || block.PreviousHash != model.GenesisHash {
			return fmt.Errorf("block %d does not start an empty chain: %w", block.Number, model.ErrStorageConflict)
		}
		return nil
	case err != nil:
		return wrapConflict("read tail link", err)
	}

	next, err := safe.Uint64(tailNumber + 1)
	if err != nil {
		return fmt.Errorf("tail block number: %w", err)
	}
	if block.Number != next || block.PreviousHash != tailHash {
		return fmt.Errorf("block %d does not follow tail %d: %w", block.Number, tailNumber, model.ErrStorageConflict)
	}
	return nil
}

func wrapConflict(op string, err error) error {
	if isConflict(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrStorageConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
