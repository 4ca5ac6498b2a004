package pipeline

import (
	"image"

	"github.com/LdDl/blobtrack/pix"
)

// DefaultMedianKernel is the spatial median filter size applied to the
// binary mask.
const DefaultMedianKernel = 7

// Prepare converts a raw frame into the binary detection mask: grayscale,
// absolute difference against the background, inversion back to dark-on-light
// polarity, hard binarization at the calibrated threshold and a median filter
// to knock out speckle noise.
func Prepare(frame image.Image, bg *BackgroundModel, profile *ThresholdProfile, medianKernel int) *image.Gray {
	if medianKernel <= 0 {
		medianKernel = DefaultMedianKernel
	}
	gray := pix.ToGray(frame)
	diff := pix.AbsDiff(gray, bg.Image())
	inverted := pix.Invert(diff)
	binary := pix.Binarize(inverted, profile.MeanThreshold)
	return pix.Median(binary, medianKernel)
}
