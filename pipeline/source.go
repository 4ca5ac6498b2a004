// Package pipeline sequences the blob tracking run: background modeling,
// threshold calibration, per-frame preprocessing, detection and track
// management, with one annotated frame and one record group emitted per
// input frame.
package pipeline

import (
	"image"
	"io"

	"github.com/pkg/errors"
)

// FrameSource yields ordered raw frames from a video. Implementations must
// support seeking by frame index; the calibration phases sample the video
// non-sequentially before the main loop rewinds to frame zero.
type FrameSource interface {
	// Next returns the next frame, or io.EOF after the last one
	Next() (image.Image, error)
	// Seek positions the source at the given frame index
	Seek(frame int) error
	// FrameCount returns the total number of frames
	FrameCount() int
	// FrameRate returns the nominal frame rate in frames per second
	FrameRate() float64
	// Bounds returns the frame dimensions
	Bounds() image.Rectangle
}

// SliceSource serves in-memory frames. Used for synthetic runs and tests.
type SliceSource struct {
	frames []image.Image
	rate   float64
	pos    int
}

func NewSliceSource(frames []image.Image, rate float64) *SliceSource {
	return &SliceSource{frames: frames, rate: rate}
}

func (s *SliceSource) Next() (image.Image, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *SliceSource) Seek(frame int) error {
	if frame < 0 || frame > len(s.frames) {
		return errors.Errorf("seek out of range: frame %d of %d", frame, len(s.frames))
	}
	s.pos = frame
	return nil
}

func (s *SliceSource) FrameCount() int {
	return len(s.frames)
}

func (s *SliceSource) FrameRate() float64 {
	return s.rate
}

func (s *SliceSource) Bounds() image.Rectangle {
	if len(s.frames) == 0 {
		return image.Rectangle{}
	}
	return s.frames[0].Bounds()
}
