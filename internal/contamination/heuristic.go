package contamination

import (
	"math"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const (
	// UnknownCleanliness is reported when an image cannot be analysed.
	UnknownCleanliness = 0.5
	// MinCleanliness is the floor of the cleanliness factor.
	MinCleanliness = 0.2

	edgeDensityWeight = 4.0

	darkBrightness     = 60.0
	darkEdgeDensity    = 0.10
	highEdgeDensity    = 0.12
	mediumEdgeDensity  = 0.06
	muddyColorVariance = 500.0
)

// Signal holds the raw measurements taken from an image.
type Signal struct {
	EdgeDensity    float64
	MeanBrightness float64
	ColorVariance  float64
}

// CleanlinessFactor maps edge density onto [MinCleanliness, 1], rounded to two decimals.
func CleanlinessFactor(edgeDensity float64) float64 {
	f := math.Max(MinCleanliness, 1-edgeDensity*edgeDensityWeight)
	return math.Round(f*100) / 100
}

// Classify assigns a contamination level to a signal.
//
// A dark irregular surface (burnt plastic) is HIGH. A highly irregular surface
// with strong colour variation is muddy, which washes off, so it is MEDIUM.
func Classify(s Signal) model.ContaminationLevel {
	switch {
	case s.MeanBrightness < darkBrightness && s.EdgeDensity > darkEdgeDensity:
		return model.ContaminationHigh
	case s.EdgeDensity > highEdgeDensity && s.ColorVariance > muddyColorVariance:
		return model.ContaminationMedium
	case s.EdgeDensity > highEdgeDensity:
		return model.ContaminationHigh
	case s.EdgeDensity > mediumEdgeDensity:
		return model.ContaminationMedium
	default:
		return model.ContaminationLow
	}
}
