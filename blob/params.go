// Package blob turns binary (or near-binary) grayscale images into
// structured blob detections: connected dark components measured and
// filtered by shape, then wrapped into bounding-box records for the tracker.
package blob

import "github.com/pkg/errors"

// ErrPartialRange reports a filter criterion configured with only one of its
// two bounds. Filters are either fully disabled or bounded on both sides;
// partially specified ranges are rejected when configuration is loaded.
var ErrPartialRange = errors.New("filter range must specify both min and max")

// Range bounds a single blob filter criterion. A nil *Range disables the
// criterion entirely.
type Range struct {
	Min float64
	Max float64
}

// NewRange is a convenience constructor for filter bounds.
func NewRange(min, max float64) *Range {
	return &Range{Min: min, Max: max}
}

func (r *Range) contains(v float64) bool {
	if r == nil {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// Params configures candidate extraction and detection.
type Params struct {
	// Intensity sweep bounds: components are extracted at every threshold
	// level in [MinThreshold, MaxThreshold] stepping by ThresholdStep,
	// where a pixel strictly below the level counts as foreground.
	MinThreshold  uint8
	MaxThreshold  uint8
	ThresholdStep uint8

	// Candidates closer than MinDistance (centroid to centroid) across
	// threshold levels are merged into one.
	MinDistance float64

	// Shape filters: disabled when nil, otherwise complete min/max ranges.
	Area        *Range // pixel area
	Circularity *Range // 4*pi*area/perimeter^2, in (0, 1]
	Convexity   *Range // area / convex hull area, in (0, 1]
	Inertia     *Range // elongation: min/max second-moment eigenvalue ratio

	// Detection boxes span Diameter * BoxScale per side, centred on the
	// centroid, so the box encloses the whole blob with margin.
	BoxScale float64
}

// DefaultParams returns the permissive defaults: full intensity sweep, no
// shape filters, x2 bounding boxes.
func DefaultParams() Params {
	return Params{
		MinThreshold:  1,
		MaxThreshold:  255,
		ThresholdStep: 10,
		MinDistance:   10,
		BoxScale:      2,
	}
}

// Validate checks internal consistency of the parameter set.
func (p Params) Validate() error {
	if p.MaxThreshold <= p.MinThreshold {
		return errors.Errorf("threshold sweep is empty: min %d, max %d", p.MinThreshold, p.MaxThreshold)
	}
	if p.ThresholdStep == 0 {
		return errors.New("threshold step must be positive")
	}
	if p.MinDistance < 0 {
		return errors.New("min distance must be non-negative")
	}
	if p.BoxScale <= 0 {
		return errors.New("box scale must be positive")
	}
	for _, f := range []struct {
		name string
		r    *Range
	}{
		{"area", p.Area},
		{"circularity", p.Circularity},
		{"convexity", p.Convexity},
		{"inertia", p.Inertia},
	} {
		if f.r != nil && f.r.Min > f.r.Max {
			return errors.Errorf("%s filter range is inverted: min %v > max %v", f.name, f.r.Min, f.r.Max)
		}
	}
	return nil
}
