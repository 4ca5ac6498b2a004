package pipeline

import (
	"encoding/binary"
	"image"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// FlyMovieFormat (FMF) version 3, MONO8 only: a fixed little-endian header
// followed by fixed-size chunks of one float64 timestamp plus raw 8-bit
// pixels. This is the raw capture format the tracking videos come in.
//
//	uint32  version (3)
//	uint32  format string length
//	bytes   format ("MONO8")
//	uint32  bits per pixel (8)
//	uint32  height
//	uint32  width
//	uint64  bytes per chunk (8 + width*height)
//	uint64  frame count (0 means unknown; derived from file size)
const (
	fmfVersion = 3
	fmfFormat  = "MONO8"
)

// FMFReader is a seekable FrameSource over an FMF file.
type FMFReader struct {
	f          *os.File
	width      int
	height     int
	frameCount int
	rate       float64
	headerSize int64
	chunkSize  int64
	pos        int
	buf        []byte
}

// OpenFMF opens an FMF file for reading. The format carries no frame rate,
// so the nominal rate is supplied by the caller (as recorded).
func OpenFMF(path string, frameRate float64) (*FMFReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open FMF file")
	}
	r := &FMFReader{f: f, rate: frameRate}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "can't parse FMF header of %s", path)
	}
	return r, nil
}

func (r *FMFReader) readHeader() error {
	var version, formatLen uint32
	if err := binary.Read(r.f, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != fmfVersion {
		return errors.Errorf("unsupported FMF version %d", version)
	}
	if err := binary.Read(r.f, binary.LittleEndian, &formatLen); err != nil {
		return err
	}
	format := make([]byte, formatLen)
	if _, err := io.ReadFull(r.f, format); err != nil {
		return err
	}
	if string(format) != fmfFormat {
		return errors.Errorf("unsupported FMF pixel format %q", string(format))
	}
	var bpp, height, width uint32
	var chunkSize, frameCount uint64
	for _, v := range []any{&bpp, &height, &width, &chunkSize, &frameCount} {
		if err := binary.Read(r.f, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if bpp != 8 {
		return errors.Errorf("unsupported FMF bit depth %d", bpp)
	}
	if chunkSize != uint64(8+width*height) {
		return errors.Errorf("FMF chunk size %d doesn't match %dx%d MONO8 frames", chunkSize, width, height)
	}

	r.width = int(width)
	r.height = int(height)
	r.chunkSize = int64(chunkSize)
	r.buf = make([]byte, chunkSize)

	offset, err := r.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	r.headerSize = offset

	if frameCount == 0 {
		end, err := r.f.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		frameCount = uint64((end - r.headerSize) / r.chunkSize)
		if _, err := r.f.Seek(r.headerSize, io.SeekStart); err != nil {
			return err
		}
	}
	r.frameCount = int(frameCount)
	return nil
}

func (r *FMFReader) Next() (image.Image, error) {
	if r.pos >= r.frameCount {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(r.f, r.buf); err != nil {
		return nil, errors.Wrapf(err, "can't read frame %d", r.pos)
	}
	r.pos++
	img := image.NewGray(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.buf[8:])
	return img, nil
}

// Timestamp returns the capture timestamp of the most recently read frame.
func (r *FMFReader) Timestamp() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8]))
}

func (r *FMFReader) Seek(frame int) error {
	if frame < 0 || frame > r.frameCount {
		return errors.Errorf("seek out of range: frame %d of %d", frame, r.frameCount)
	}
	if _, err := r.f.Seek(r.headerSize+int64(frame)*r.chunkSize, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek failed")
	}
	r.pos = frame
	return nil
}

func (r *FMFReader) FrameCount() int {
	return r.frameCount
}

func (r *FMFReader) FrameRate() float64 {
	return r.rate
}

func (r *FMFReader) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

func (r *FMFReader) Close() error {
	return r.f.Close()
}

// FMFWriter writes MONO8 FMF files. The frame count field is patched on
// Close.
type FMFWriter struct {
	f      *os.File
	width  int
	height int
	count  uint64
	// offset of the frame count field in the header
	countOffset int64
}

func CreateFMF(path string, width, height int) (*FMFWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't create FMF file")
	}
	w := &FMFWriter{f: f, width: width, height: height}
	for _, v := range []any{
		uint32(fmfVersion),
		uint32(len(fmfFormat)),
		[]byte(fmfFormat),
		uint32(8),
		uint32(height),
		uint32(width),
		uint64(8 + width*height),
	} {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "can't write FMF header")
		}
	}
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.countOffset = offset
	if err := binary.Write(f, binary.LittleEndian, uint64(0)); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "can't write FMF header")
	}
	return w, nil
}

func (w *FMFWriter) WriteFrame(img *image.Gray, timestamp float64) error {
	b := img.Bounds()
	if b.Dx() != w.width || b.Dy() != w.height {
		return errors.Errorf("frame size %dx%d doesn't match movie size %dx%d", b.Dx(), b.Dy(), w.width, w.height)
	}
	if err := binary.Write(w.f, binary.LittleEndian, timestamp); err != nil {
		return errors.Wrap(err, "can't write frame timestamp")
	}
	for y := 0; y < w.height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w.width]
		if _, err := w.f.Write(row); err != nil {
			return errors.Wrap(err, "can't write frame pixels")
		}
	}
	w.count++
	return nil
}

func (w *FMFWriter) Close() error {
	if _, err := w.f.Seek(w.countOffset, io.SeekStart); err != nil {
		w.f.Close()
		return errors.Wrap(err, "can't patch FMF frame count")
	}
	if err := binary.Write(w.f, binary.LittleEndian, w.count); err != nil {
		w.f.Close()
		return errors.Wrap(err, "can't patch FMF frame count")
	}
	return w.f.Close()
}
