package sqlite

import (
	"fmt"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/pkg/safe"
)

const blockColumns = `
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
	current_hash`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBlock reads one row selected with blockColumns. Stored labels are kept
// verbatim so that verification hashes exactly what was written.
func scanBlock(row rowScanner) (model.Block, error) {
	var (
		number                                int64
		timestamp, material, contamination    string
		recommendation, previousHash, current string
		b                                     model.Block
	)
	if err := row.Scan(
		&number,
		&timestamp,
		&material,
		&contamination,
		&b.Assessment.CleanlinessFactor,
		&b.Assessment.Breakdown.MaterialWeight,
		&b.Assessment.Breakdown.LocalRecyclabilityFactor,
		&b.Assessment.Score,
		&recommendation,
		&previousHash,
		&current,
	); err != nil {
		return model.Block{}, err
	}

	var err error
	if b.Number, err = safe.Uint64(number); err != nil {
		return model.Block{}, fmt.Errorf("block number: %w", err)
	}
	if b.Timestamp, err = model.ParseTimestamp(timestamp); err != nil {
		return model.Block{}, err
	}
	b.Assessment.Material = model.Material(material)
	b.Assessment.Contamination = model.ContaminationLevel(contamination)
	b.Assessment.Breakdown.CleanlinessFactor = b.Assessment.CleanlinessFactor
	b.Assessment.Recommendation = model.Recommendation(recommendation)
	b.PreviousHash = previousHash
	b.CurrentHash = current
	return b, nil
}
