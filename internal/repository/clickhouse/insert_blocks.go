package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const insertBlocksQuery = `
INSERT INTO ledger_blocks (
	block_number,
	timestamp,
	material,
	contamination,
	cleanliness_factor,
	material_weight,
	local_recyclability_factor,
	recyclability_score,
	recommendation,
	previous_hash,
	current_hash
) VALUES`

// InsertBlocks stores block rows. Re-inserting a block number replaces the
// earlier row on merge.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []model.Block) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_blocks", err, start)
	}()

	if len(blocks) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertBlocksQuery)
	if err != nil {
		return fmt.Errorf("prepare blocks batch: %w", err)
	}

	for _, block := range blocks {
		a := block.Assessment
		if err = batch.Append(
			block.Number,
			block.Timestamp,
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
			_ = batch.Abort()
			return fmt.Errorf("append block %d: %w", block.Number, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
