package pipeline

import (
	"image"
	"io"

	"github.com/LdDl/blobtrack/pix"
	"github.com/pkg/errors"
)

// ErrInsufficientFrames reports a frame source that yielded no frames.
var ErrInsufficientFrames = errors.New("frame source yielded no frames")

// DefaultBackgroundSamples is the number of frames sampled for the
// background model.
const DefaultBackgroundSamples = 30

// BackgroundModel is the static reference image of the empty scene: the
// per-pixel median of a temporal sample of frames. Immutable once built.
type BackgroundModel struct {
	img     *image.Gray
	samples int
}

// Image returns the background image. Callers must not mutate it.
func (m *BackgroundModel) Image() *image.Gray {
	return m.img
}

// Samples returns the number of frames the model was built from.
func (m *BackgroundModel) Samples() int {
	return m.samples
}

// BuildBackground samples sampleCount frames at evenly spaced indices across
// the video and computes their per-pixel median. If the video has fewer
// frames than requested, every frame is sampled.
func BuildBackground(src FrameSource, sampleCount int) (*BackgroundModel, error) {
	total := src.FrameCount()
	if total == 0 {
		return nil, ErrInsufficientFrames
	}
	if sampleCount <= 0 {
		sampleCount = DefaultBackgroundSamples
	}
	if sampleCount > total {
		sampleCount = total
	}

	indices := make([]int, sampleCount)
	if sampleCount == 1 {
		indices[0] = 0
	} else {
		for i := range indices {
			indices[i] = i * (total - 1) / (sampleCount - 1)
		}
	}

	stack := make([]*image.Gray, 0, sampleCount)
	for _, idx := range indices {
		if err := src.Seek(idx); err != nil {
			return nil, errors.Wrapf(err, "can't seek to background sample %d", idx)
		}
		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "can't read background sample %d", idx)
		}
		stack = append(stack, pix.ToGray(frame))
	}
	if len(stack) == 0 {
		return nil, ErrInsufficientFrames
	}

	return &BackgroundModel{
		img:     pix.MedianStack(stack),
		samples: len(stack),
	}, nil
}
