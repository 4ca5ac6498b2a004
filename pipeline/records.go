package pipeline

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// FrameRecord is one track observation on one frame. A frame with no live
// tracks still produces one sentinel record (TrackID -1, NaN coordinates) so
// downstream consumers can count frames from the record stream alone.
type FrameRecord struct {
	Frame    int
	TrackID  int64
	CX       float64
	CY       float64
	Diameter float64
	X1       float64
	Y1       float64
	X2       float64
	Y2       float64
}

// SentinelRecord marks a frame on which nothing was tracked.
func SentinelRecord(frame int) FrameRecord {
	nan := math.NaN()
	return FrameRecord{
		Frame:    frame,
		TrackID:  -1,
		CX:       nan,
		CY:       nan,
		Diameter: nan,
		X1:       nan,
		Y1:       nan,
		X2:       nan,
		Y2:       nan,
	}
}

// Sentinel reports whether the record is a no-tracks placeholder.
func (r FrameRecord) Sentinel() bool {
	return r.TrackID < 0
}

// RecordSink consumes the per-frame record stream.
type RecordSink interface {
	WriteRecord(rec FrameRecord) error
}

// CSVSink writes records to a CSV file, one row per record. NaN fields are
// left empty. The header row is written lazily with the first record.
type CSVSink struct {
	f           *os.File
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't create records CSV")
	}
	return &CSVSink{f: f, w: csv.NewWriter(f)}, nil
}

func (s *CSVSink) WriteRecord(rec FrameRecord) error {
	if !s.wroteHeader {
		header := []string{"frame", "track_id", "cx", "cy", "diameter", "x1", "y1", "x2", "y2"}
		if err := s.w.Write(header); err != nil {
			return errors.Wrap(err, "can't write CSV header")
		}
		s.wroteHeader = true
	}
	row := []string{
		strconv.Itoa(rec.Frame),
		strconv.FormatInt(rec.TrackID, 10),
		formatCoord(rec.CX),
		formatCoord(rec.CY),
		formatCoord(rec.Diameter),
		formatCoord(rec.X1),
		formatCoord(rec.Y1),
		formatCoord(rec.X2),
		formatCoord(rec.Y2),
	}
	if err := s.w.Write(row); err != nil {
		return errors.Wrap(err, "can't write CSV record")
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return errors.Wrap(err, "can't flush records CSV")
	}
	return s.f.Close()
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
