package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// canonicalFields lists every hashed block field under its stored column name.
// current_hash is excluded.
func canonicalFields(b model.Block) map[string]any {
	a := b.Assessment
	return map[string]any{
		"block_number":               b.Number,
		"timestamp":                  model.FormatTimestamp(b.Timestamp),
		"material":                   string(a.Material),
		"contamination":              string(a.Contamination),
		"cleanliness_factor":         a.CleanlinessFactor,
		"material_weight":            a.Breakdown.MaterialWeight,
		"local_recyclability_factor": a.Breakdown.LocalRecyclabilityFactor,
		"recyclability_score":        a.Score,
		"recommendation":             string(a.Recommendation),
		"previous_hash":              b.PreviousHash,
	}
}

// CanonicalJSON encodes the hashed fields of b as a compact JSON object with
// sorted keys.
func CanonicalJSON(b model.Block) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonicalFields(b)); err != nil {
		return nil, fmt.Errorf("encode block %d: %w", b.Number, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ComputeHash returns hex(sha256(CanonicalJSON(b) + b.PreviousHash)).
func ComputeHash(b model.Block) (string, error) {
	canonical, err := CanonicalJSON(b)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(canonical)
	h.Write([]byte(b.PreviousHash))
	return hex.EncodeToString(h.Sum(nil)), nil
}
