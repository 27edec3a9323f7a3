package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// MaterialSummary aggregates mirrored assessments of one material and outcome.
type MaterialSummary struct {
	Material       model.Material       `json:"material"`
	Recommendation model.Recommendation `json:"recommendation"`
	Samples        uint64               `json:"samples"`
	AverageScore   float64              `json:"average_score"`
}

const materialSummaryQuery = `
SELECT
	material,
	recommendation,
	sum(samples)                  AS samples,
	sum(score_sum) / sum(samples) AS average_score
FROM ledger_material_daily
WHERE day >= toDate(?)
GROUP BY material, recommendation
ORDER BY material, recommendation`

// MaterialSummary returns per-material outcome counts since the given day.
func (r *Repository) MaterialSummary(ctx context.Context, since time.Time) (_ []MaterialSummary, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("material_summary", err, start)
	}()

	rows, err := r.conn.Query(ctx, materialSummaryQuery, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query material summary: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var out []MaterialSummary
	for rows.Next() {
		var (
			material, recommendation string
			s                        MaterialSummary
		)
		if err = rows.Scan(&material, &recommendation, &s.Samples, &s.AverageScore); err != nil {
			return nil, fmt.Errorf("scan material summary: %w", err)
		}
		s.Material = model.Material(material)
		s.Recommendation = model.Recommendation(recommendation)
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material summary: %w", err)
	}
	return out, nil
}
