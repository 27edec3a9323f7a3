// Package scoring turns a material label and cleanliness factor into a recyclability score.
package scoring

import "github.com/goodnatureofminers/plasticledger-backend/internal/model"

// DefaultWeight is used by both tables for labels they do not list.
const DefaultWeight = 0.2

// WeightTable is an immutable per-material lookup with an explicit fallback.
type WeightTable struct {
	weights  map[model.Material]float64
	fallback float64
}

// NewWeightTable copies weights so later changes to the argument are not observed.
func NewWeightTable(weights map[model.Material]float64, fallback float64) WeightTable {
	cp := make(map[model.Material]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return WeightTable{weights: cp, fallback: fallback}
}

// Lookup returns the weight for m, or the table fallback when m is absent.
func (t WeightTable) Lookup(m model.Material) float64 {
	if w, ok := t.weights[m]; ok {
		return w
	}
	return t.fallback
}

// MaterialWeights reflects how recyclable a resin is in general.
var MaterialWeights = NewWeightTable(map[model.Material]float64{
	model.PET:  1.0,
	model.HDPE: 0.9,
	model.PP:   0.8,
	model.LDPE: 0.6,
	model.PS:   0.4,
	model.PVC:  0.3,
}, DefaultWeight)

// LocalRecyclability reflects regional processing capacity per resin.
var LocalRecyclability = NewWeightTable(map[model.Material]float64{
	model.PET:  1.0,
	model.HDPE: 0.8,
	model.PP:   0.7,
	model.LDPE: 0.6,
	model.PS:   0.3,
	model.PVC:  0.2,
}, DefaultWeight)
