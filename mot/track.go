package mot

import "github.com/pkg/errors"

// TrackState is the lifecycle state of a track.
type TrackState int

const (
	// TrackTentative is a freshly spawned track not yet trusted
	TrackTentative TrackState = iota
	// TrackConfirmed is a track with enough matched detections
	TrackConfirmed
	// TrackDeleted is a track that exceeded the allowed silence and is about to be removed
	TrackDeleted
)

func (s TrackState) String() string {
	switch s {
	case TrackTentative:
		return "tentative"
	case TrackConfirmed:
		return "confirmed"
	case TrackDeleted:
		return "deleted"
	}
	return "unknown"
}

// Track is a persistent identity assigned to a sequence of detections.
// Its bounding box is always derived from the Kalman filter state and never
// stored separately.
type Track struct {
	id              int64
	kf              *boxKalman
	age             int
	hits            int
	timeSinceUpdate int
	state           TrackState
}

func newTrack(id int64, box Rectangle) *Track {
	return &Track{
		id:    id,
		kf:    newBoxKalman(box),
		age:   0,
		hits:  1,
		state: TrackTentative,
	}
}

// ID returns the track's identifier. Identifiers are assigned in strictly
// increasing order of creation and never reused.
func (t *Track) ID() int64 {
	return t.id
}

// BBox returns the bounding box derived from the current filter state.
func (t *Track) BBox() Rectangle {
	return t.kf.currentBox()
}

// Age returns the number of frames since the track was created.
func (t *Track) Age() int {
	return t.age
}

// Hits returns the total number of frames with a matched detection.
func (t *Track) Hits() int {
	return t.hits
}

// TimeSinceUpdate returns the number of frames since the last matched detection.
func (t *Track) TimeSinceUpdate() int {
	return t.timeSinceUpdate
}

// State returns the track's lifecycle state.
func (t *Track) State() TrackState {
	return t.state
}

// Confirmed reports whether the track has been confirmed.
func (t *Track) Confirmed() bool {
	return t.state == TrackConfirmed
}

// predict advances the motion state one frame and returns the predicted box.
func (t *Track) predict() Rectangle {
	t.age++
	return t.kf.predict()
}

// update feeds a matched detection box into the filter and refreshes the
// lifecycle counters.
func (t *Track) update(box Rectangle, minHits int) error {
	if err := t.kf.update(box); err != nil {
		return errors.Wrapf(err, "can't update track %d", t.id)
	}
	t.hits++
	t.timeSinceUpdate = 0
	if t.state == TrackTentative && t.hits >= minHits {
		t.state = TrackConfirmed
	}
	return nil
}

// markMissed ages a track with no accepted match this frame. The box keeps
// coasting on the constant-velocity prediction.
func (t *Track) markMissed(maxAge int) {
	t.timeSinceUpdate++
	if t.timeSinceUpdate > maxAge {
		t.state = TrackDeleted
	}
}
