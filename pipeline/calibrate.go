package pipeline

import (
	"image"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/LdDl/blobtrack/blob"
	"github.com/LdDl/blobtrack/pix"
	"github.com/pkg/errors"
)

// ErrCalibrationFailed reports a calibration pass that found no blob in any
// sampled frame. There is no sensible default threshold, so this is fatal.
var ErrCalibrationFailed = errors.New("calibration found no blobs in any sampled frame")

const (
	// DefaultThresholdSamples is the number of random frames drawn for calibration
	DefaultThresholdSamples = 10
	// DefaultThresholdMargin widens the detector's sweep below the hard cut
	DefaultThresholdMargin = 20
)

// ThresholdProfile is the calibrated foreground/background separation.
// MeanThreshold is the hard binarization cut; MinThreshold is the permissive
// lower bound (MeanThreshold - Margin) used as the live detector's sweep
// start. Immutable after calibration.
type ThresholdProfile struct {
	MeanThreshold uint8
	MinThreshold  uint8
	Margin        uint8
}

// Calibrate derives the threshold profile from sampleCount frames drawn at
// random indices (sorted ascending for sequential seek efficiency). Each
// frame's raw foreground image is scanned with permissive detection
// parameters; a bimodal Otsu threshold is computed on every detected blob's
// crop, and the per-blob thresholds are averaged.
func Calibrate(src FrameSource, bg *BackgroundModel, det *blob.Detector, params blob.Params, sampleCount int, margin uint8, rng *rand.Rand) (*ThresholdProfile, error) {
	total := src.FrameCount()
	if total == 0 {
		return nil, ErrInsufficientFrames
	}
	if sampleCount <= 0 {
		sampleCount = DefaultThresholdSamples
	}

	indices := make([]int, sampleCount)
	for i := range indices {
		indices[i] = rng.Intn(total)
	}
	sort.Ints(indices)

	// Full intensity sweep: the calibrator must see blobs before any
	// threshold is known
	permissive := params
	permissive.MinThreshold = 1
	permissive.MaxThreshold = 255

	var thresholds []float64
	for _, idx := range indices {
		if err := src.Seek(idx); err != nil {
			return nil, errors.Wrapf(err, "can't seek to calibration sample %d", idx)
		}
		frame, err := src.Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "can't read calibration sample %d", idx)
		}

		foreground := pix.Invert(pix.AbsDiff(pix.ToGray(frame), bg.Image()))
		detections, err := det.Detect(foreground, permissive)
		if err != nil {
			return nil, errors.Wrapf(err, "calibration detection failed on frame %d", idx)
		}
		for _, d := range detections {
			crop := pix.Crop(foreground, image.Rect(
				int(math.Floor(d.Box.X)), int(math.Floor(d.Box.Y)),
				int(math.Ceil(d.Box.X2())), int(math.Ceil(d.Box.Y2())),
			))
			if crop.Bounds().Empty() {
				continue
			}
			thresholds = append(thresholds, float64(pix.Otsu(crop)))
		}
	}
	if len(thresholds) == 0 {
		return nil, ErrCalibrationFailed
	}

	sum := 0.0
	for _, t := range thresholds {
		sum += t
	}
	mean := uint8(math.Round(sum / float64(len(thresholds))))

	minThreshold := uint8(0)
	if mean > margin {
		minThreshold = mean - margin
	}
	if minThreshold == 0 {
		minThreshold = 1
	}

	return &ThresholdProfile{
		MeanThreshold: mean,
		MinThreshold:  minThreshold,
		Margin:        margin,
	}, nil
}
