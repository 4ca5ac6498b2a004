package blob

import (
	"image"

	"github.com/LdDl/blobtrack/mot"
	"github.com/pkg/errors"
)

// Detection is one blob candidate found in one frame.
type Detection struct {
	Box      mot.Rectangle
	Centroid mot.Point
	Diameter float64
	// Confidence is fixed to 1.0: the candidate extractor is not probabilistic
	Confidence float64
}

// Detector wraps a CandidateExtractor and turns its candidates into
// Detection records with scaled bounding boxes.
type Detector struct {
	extractor CandidateExtractor
}

// NewDetector creates a Detector. A nil extractor selects the built-in
// ComponentExtractor.
func NewDetector(extractor CandidateExtractor) *Detector {
	if extractor == nil {
		extractor = ComponentExtractor{}
	}
	return &Detector{extractor: extractor}
}

// Detect finds blobs in the given image. An empty result is the common
// no-object-present case, not an error.
func (d *Detector) Detect(img *image.Gray, params Params) ([]Detection, error) {
	candidates, err := d.extractor.Extract(img, params)
	if err != nil {
		return nil, errors.Wrap(err, "candidate extraction failed")
	}

	detections := make([]Detection, 0, len(candidates))
	for _, c := range candidates {
		half := c.Diameter / 2.0 * params.BoxScale
		detections = append(detections, Detection{
			Box: mot.NewRectFromCorners(
				c.Centroid.X-half, c.Centroid.Y-half,
				c.Centroid.X+half, c.Centroid.Y+half,
			),
			Centroid:   c.Centroid,
			Diameter:   c.Diameter,
			Confidence: 1.0,
		})
	}
	return detections, nil
}
