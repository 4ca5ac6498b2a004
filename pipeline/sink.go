package pipeline

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FrameSink consumes annotated output frames in order. The pipeline does not
// close its sinks; the caller does once the run is over.
type FrameSink interface {
	WriteFrame(frame image.Image) error
	Close() error
}

// PNGDirSink writes each frame as a numbered PNG in one directory.
type PNGDirSink struct {
	dir string
	n   int
}

func NewPNGDirSink(dir string) (*PNGDirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "can't create output directory")
	}
	return &PNGDirSink{dir: dir}, nil
}

func (s *PNGDirSink) WriteFrame(frame image.Image) error {
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", s.n))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create %s", path)
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return errors.Wrapf(err, "can't encode %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "can't close %s", path)
	}
	s.n++
	return nil
}

func (s *PNGDirSink) Close() error {
	return nil
}

// DiscardSink drops frames. Used when only the record stream matters.
type DiscardSink struct{}

func (DiscardSink) WriteFrame(frame image.Image) error {
	return nil
}

func (DiscardSink) Close() error {
	return nil
}
