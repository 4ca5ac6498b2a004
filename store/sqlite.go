// Package store persists tracking records in SQLite so multiple runs over
// the same capture can be compared with plain SQL.
package store

import (
	"database/sql"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/LdDl/blobtrack/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS frame_records (
	run_id   TEXT NOT NULL,
	frame    INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	cx       REAL,
	cy       REAL,
	diameter REAL,
	x1       REAL,
	y1       REAL,
	x2       REAL,
	y2       REAL
);
CREATE INDEX IF NOT EXISTS idx_frame_records_run ON frame_records (run_id, frame);
`

// DB is a record store backed by a single SQLite file.
type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open records database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't create records schema")
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// RunSink returns a record sink that writes every record under the given run
// identifier.
func (d *DB) RunSink(runID uuid.UUID) *RunSink {
	return &RunSink{db: d.db, runID: runID.String()}
}

// RunSink writes frame records for one run. Implements pipeline.RecordSink.
type RunSink struct {
	db    *sql.DB
	runID string
}

func (s *RunSink) WriteRecord(rec pipeline.FrameRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO frame_records (run_id, frame, track_id, cx, cy, diameter, x1, y1, x2, y2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, rec.Frame, rec.TrackID,
		nullable(rec.CX), nullable(rec.CY), nullable(rec.Diameter),
		nullable(rec.X1), nullable(rec.Y1), nullable(rec.X2), nullable(rec.Y2),
	)
	return errors.Wrap(err, "can't insert frame record")
}

// TrackRecords returns the records of one track in one run, ordered by frame.
func (d *DB) TrackRecords(runID uuid.UUID, trackID int64) ([]pipeline.FrameRecord, error) {
	rows, err := d.db.Query(
		`SELECT frame, track_id, cx, cy, diameter, x1, y1, x2, y2
		 FROM frame_records WHERE run_id = ? AND track_id = ? ORDER BY frame`,
		runID.String(), trackID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "can't query track records")
	}
	defer rows.Close()

	var records []pipeline.FrameRecord
	for rows.Next() {
		var rec pipeline.FrameRecord
		var cx, cy, diameter, x1, y1, x2, y2 sql.NullFloat64
		if err := rows.Scan(&rec.Frame, &rec.TrackID, &cx, &cy, &diameter, &x1, &y1, &x2, &y2); err != nil {
			return nil, errors.Wrap(err, "can't scan track record")
		}
		rec.CX = fromNullable(cx)
		rec.CY = fromNullable(cy)
		rec.Diameter = fromNullable(diameter)
		rec.X1 = fromNullable(x1)
		rec.Y1 = fromNullable(y1)
		rec.X2 = fromNullable(x2)
		rec.Y2 = fromNullable(y2)
		records = append(records, rec)
	}
	return records, errors.Wrap(rows.Err(), "can't read track records")
}

// RunFrameCount returns how many frames a run produced records for.
func (d *DB) RunFrameCount(runID uuid.UUID) (int, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(DISTINCT frame) FROM frame_records WHERE run_id = ?`,
		runID.String(),
	).Scan(&n)
	return n, errors.Wrap(err, "can't count run frames")
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
