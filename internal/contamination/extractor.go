package contamination

import (
	"image"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// Result is the extractor output for one image.
type Result struct {
	Level       model.ContaminationLevel
	Cleanliness float64
	Signal      Signal
}

// Unknown is reported for images that cannot be read or decoded.
var Unknown = Result{Level: model.ContaminationUnknown, Cleanliness: UnknownCleanliness}

// Extractor reads sample photos and measures their surface irregularity.
type Extractor struct {
	logger *zap.Logger
	load   func(path string) (image.Image, error)
}

// NewExtractor builds an Extractor that decodes images from disk.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger, load: LoadImage}
}

// Extract analyses the image at path. It never fails: unreadable images
// yield Unknown.
func (e *Extractor) Extract(imagePath string) Result {
	img, err := e.load(imagePath)
	if err != nil {
		e.logger.Debug("image not decodable, using neutral cleanliness",
			zap.String("path", imagePath), zap.Error(err))
		return Unknown
	}
	res := Analyze(img)
	e.logger.Debug("contamination signal",
		zap.String("path", imagePath),
		zap.String("level", string(res.Level)),
		zap.Float64("edge_density", res.Signal.EdgeDensity),
		zap.Float64("mean_brightness", res.Signal.MeanBrightness),
		zap.Float64("color_variance", res.Signal.ColorVariance),
	)
	return res
}

// Analyze measures a decoded image.
func Analyze(img image.Image) Result {
	if img == nil || img.Bounds().Empty() {
		return Unknown
	}

	colour := resize(img, WorkingSize)
	_, colorVariance := stat.PopMeanVariance(channelSamples(colour), nil)

	luma := equalize(toLuma(colour))
	brightness := make([]float64, len(luma.pix))
	for i, v := range luma.pix {
		brightness[i] = float64(v)
	}

	s := Signal{
		EdgeDensity:    density(canny(luma, cannyLowThreshold, cannyHighThreshold)),
		MeanBrightness: stat.Mean(brightness, nil),
		ColorVariance:  colorVariance,
	}
	return Result{
		Level:       Classify(s),
		Cleanliness: CleanlinessFactor(s.EdgeDensity),
		Signal:      s,
	}
}
