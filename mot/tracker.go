package mot

import (
	"sort"

	"github.com/arthurkushman/go-hungarian"
)

// TrackedBox is a tracker output for a single freshly matched track.
type TrackedBox struct {
	ID        int64
	Box       Rectangle
	Confirmed bool
}

// Tracker is a SORT-style multi-object tracker. Detections are associated to
// tracks by solving the assignment problem over the IoU matrix between
// predicted track boxes and detection boxes with the Hungarian algorithm.
// Greedy nearest-neighbour matching is deliberately not offered: it produces
// inconsistent identities under swap ambiguity.
type Tracker struct {
	// Max number of frames a track survives without a matched detection
	maxAge int
	// Cumulative matched frames required to confirm a track
	minHits int
	// Minimum IoU for a match to be accepted
	iouThreshold float64
	// Live tracks in creation order
	tracks []*Track
	// Next track identifier, monotonically increasing, never reused
	nextID int64
}

// NewDefaultTracker creates a Tracker with default parameters:
// maxAge=5, minHits=1, iouThreshold=0.3
func NewDefaultTracker() *Tracker {
	return NewTracker(5, 1, 0.3)
}

// NewTracker creates a new instance of Tracker with specified parameters.
func NewTracker(maxAge, minHits int, iouThreshold float64) *Tracker {
	return &Tracker{
		maxAge:       maxAge,
		minHits:      minHits,
		iouThreshold: iouThreshold,
		tracks:       make([]*Track, 0),
	}
}

// Tracks returns the live track set in creation order. The slice is shared
// with the tracker; callers must not mutate it.
func (tr *Tracker) Tracks() []*Track {
	return tr.tracks
}

// TotalTracks returns the number of tracks ever created, dead ones included.
func (tr *Tracker) TotalTracks() int64 {
	return tr.nextID
}

// Update runs one frame of the tracker against the given detection boxes.
// An empty detection list is valid: all tracks age one step and nothing is
// returned. The result holds every track matched in this frame (including
// freshly spawned ones), ordered by id.
func (tr *Tracker) Update(detections []Rectangle) ([]TrackedBox, error) {
	// 1. Predict: advance every track's motion state by one frame
	predicted := make([]Rectangle, len(tr.tracks))
	for i, track := range tr.tracks {
		predicted[i] = track.predict()
	}

	// 2-3. Associate predictions to detections, reject weak overlaps
	trackToDet := tr.associate(predicted, detections)

	// 4-5. Update matched tracks, age the rest
	matchedDets := make(map[int]struct{}, len(trackToDet))
	for i, track := range tr.tracks {
		if j, ok := trackToDet[i]; ok {
			if err := track.update(detections[j], tr.minHits); err != nil {
				return nil, err
			}
			matchedDets[j] = struct{}{}
		} else {
			track.markMissed(tr.maxAge)
		}
	}

	// 6. Spawn a tentative track for every unmatched detection.
	// A track born while no confirmed track is competing is confirmed
	// immediately, so a lone new object is not suppressed.
	hasConfirmed := false
	for _, track := range tr.tracks {
		if track.state == TrackConfirmed {
			hasConfirmed = true
			break
		}
	}
	for j, det := range detections {
		if _, ok := matchedDets[j]; ok {
			continue
		}
		track := newTrack(tr.nextID, det)
		tr.nextID++
		if !hasConfirmed || track.hits >= tr.minHits {
			track.state = TrackConfirmed
		}
		tr.tracks = append(tr.tracks, track)
	}

	// 7. Cull dead tracks and collect the freshly matched ones
	alive := tr.tracks[:0]
	output := make([]TrackedBox, 0, len(tr.tracks))
	for _, track := range tr.tracks {
		if track.state == TrackDeleted {
			continue
		}
		alive = append(alive, track)
		if track.timeSinceUpdate == 0 {
			output = append(output, TrackedBox{
				ID:        track.id,
				Box:       track.BBox(),
				Confirmed: track.Confirmed(),
			})
		}
	}
	tr.tracks = alive

	sort.Slice(output, func(i, j int) bool { return output[i].ID < output[j].ID })
	return output, nil
}

// associate solves the assignment between predicted track boxes and detection
// boxes, maximizing total IoU over the full matrix. Pairs below the IoU
// threshold are rejected; both sides revert to unmatched.
func (tr *Tracker) associate(predicted, detections []Rectangle) map[int]int {
	assigned := make(map[int]int)
	if len(predicted) == 0 || len(detections) == 0 {
		return assigned
	}

	numTracks := len(predicted)
	numDets := len(detections)

	iouMatrix := make([][]float64, numTracks)
	for i := range predicted {
		row := make([]float64, numDets)
		for j := range detections {
			row[j] = IoU(predicted[i], detections[j])
		}
		iouMatrix[i] = row
	}

	// The solver needs a square matrix; pad with zero IoU
	size := numTracks
	if numDets > size {
		size = numDets
	}
	padded := iouMatrix
	if numTracks != numDets {
		padded = make([][]float64, size)
		for i := 0; i < size; i++ {
			padded[i] = make([]float64, size)
		}
		for i := 0; i < numTracks; i++ {
			copy(padded[i], iouMatrix[i])
		}
	}

	assignments := hungarian.SolveMax(padded)
	for trackIdx, row := range assignments {
		if trackIdx >= numTracks || len(row) == 0 {
			continue
		}
		for detIdx := range row {
			if detIdx >= numDets {
				continue
			}
			if iouMatrix[trackIdx][detIdx] >= tr.iouThreshold {
				assigned[trackIdx] = detIdx
			}
			break
		}
	}
	return assigned
}
