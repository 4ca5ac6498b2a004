package pipeline

import (
	"context"
	"math/rand"

	"github.com/LdDl/blobtrack/blob"
	"github.com/LdDl/blobtrack/mot"
	"github.com/cyclopcam/logs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Options configures one tracking run.
type Options struct {
	// BackgroundSamples is the number of frames sampled for the background model
	BackgroundSamples int
	// ThresholdSamples is the number of frames sampled for threshold calibration
	ThresholdSamples int
	// ThresholdMargin widens the detection sweep below the calibrated threshold
	ThresholdMargin uint8
	// MedianKernel is the spatial median filter size for the binary mask
	MedianKernel int
	// MaxAge is the number of consecutive misses before a track is dropped
	MaxAge int
	// MinHits is the number of hits before a track is confirmed
	MinHits int
	// IoUThreshold is the minimum overlap for a detection/track match
	IoUThreshold float64
	// Blob holds the blob detection parameters
	Blob blob.Params
	// Seed fixes the calibration sampling; runs with equal seeds are reproducible
	Seed int64
	// RunID identifies the run in record sinks. Zero means generate one.
	RunID uuid.UUID
}

// DefaultOptions returns the options used for standard captures.
func DefaultOptions() Options {
	return Options{
		BackgroundSamples: DefaultBackgroundSamples,
		ThresholdSamples:  DefaultThresholdSamples,
		ThresholdMargin:   DefaultThresholdMargin,
		MedianKernel:      DefaultMedianKernel,
		MaxAge:            5,
		MinHits:           1,
		IoUThreshold:      0.3,
		Blob:              blob.DefaultParams(),
		Seed:              1,
	}
}

// RunSummary describes a completed run.
type RunSummary struct {
	RunID   uuid.UUID
	Frames  int
	Records int
	Tracks  int
}

// Pipeline runs the full tracking sequence over one frame source. It does
// not own its sinks; the caller closes them after Run returns.
type Pipeline struct {
	log         logs.Log
	src         FrameSource
	detector    *blob.Detector
	frameSink   FrameSink
	recordSinks []RecordSink
	opts        Options
}

func New(log logs.Log, src FrameSource, opts Options) *Pipeline {
	return &Pipeline{
		log:       log,
		src:       src,
		detector:  blob.NewDetector(nil),
		frameSink: DiscardSink{},
		opts:      opts,
	}
}

// SetFrameSink replaces the annotated-frame sink (DiscardSink by default).
func (p *Pipeline) SetFrameSink(sink FrameSink) {
	p.frameSink = sink
}

// AddRecordSink adds a consumer for the per-frame record stream.
func (p *Pipeline) AddRecordSink(sink RecordSink) {
	p.recordSinks = append(p.recordSinks, sink)
}

// Run executes the full sequence: background modeling, threshold calibration,
// then the frame loop. Cancelling ctx stops the run cleanly at the next frame
// boundary; the error is ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if err := p.opts.Blob.Validate(); err != nil {
		return nil, err
	}
	runID := p.opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	p.log.Infof("Run %v: %d frames at %.1f fps", runID, p.src.FrameCount(), p.src.FrameRate())

	bg, err := BuildBackground(p.src, p.opts.BackgroundSamples)
	if err != nil {
		return nil, errors.Wrap(err, "background modeling failed")
	}
	p.log.Infof("Background model built from %d frames", bg.Samples())

	rng := rand.New(rand.NewSource(p.opts.Seed))
	profile, err := Calibrate(p.src, bg, p.detector, p.opts.Blob, p.opts.ThresholdSamples, p.opts.ThresholdMargin, rng)
	if err != nil {
		return nil, errors.Wrap(err, "threshold calibration failed")
	}
	p.log.Infof("Calibrated threshold %d (sweep from %d)", profile.MeanThreshold, profile.MinThreshold)

	// Detection during the run sweeps from the widened minimum up to the
	// calibrated cut
	params := p.opts.Blob
	params.MinThreshold = profile.MinThreshold
	params.MaxThreshold = profile.MeanThreshold

	tracker := mot.NewTracker(p.opts.MaxAge, p.opts.MinHits, p.opts.IoUThreshold)

	if err := p.src.Seek(0); err != nil {
		return nil, errors.Wrap(err, "can't rewind source")
	}

	summary := &RunSummary{RunID: runID}
	for frameIdx := 0; frameIdx < p.src.FrameCount(); frameIdx++ {
		if err := ctx.Err(); err != nil {
			p.log.Warnf("Run %v stopped at frame %d: %v", runID, frameIdx, err)
			return summary, err
		}
		frame, err := p.src.Next()
		if err != nil {
			return summary, errors.Wrapf(err, "can't read frame %d", frameIdx)
		}

		mask := Prepare(frame, bg, profile, p.opts.MedianKernel)
		detections, err := p.detector.Detect(mask, params)
		if err != nil {
			return summary, errors.Wrapf(err, "detection failed on frame %d", frameIdx)
		}
		if len(detections) == 0 {
			p.log.Debugf("Frame %d: no detections", frameIdx)
		}

		boxes := make([]mot.Rectangle, len(detections))
		for i, d := range detections {
			boxes[i] = d.Box
		}
		tracked, err := tracker.Update(boxes)
		if err != nil {
			return summary, errors.Wrapf(err, "tracker update failed on frame %d", frameIdx)
		}

		records := p.frameRecords(frameIdx, tracked)
		for _, rec := range records {
			for _, sink := range p.recordSinks {
				if err := sink.WriteRecord(rec); err != nil {
					return summary, errors.Wrapf(err, "record sink failed on frame %d", frameIdx)
				}
			}
		}
		summary.Records += len(records)

		if err := p.frameSink.WriteFrame(Annotate(frame, tracked)); err != nil {
			return summary, errors.Wrapf(err, "frame sink failed on frame %d", frameIdx)
		}
		summary.Frames++
	}

	summary.Tracks = int(tracker.TotalTracks())
	p.log.Infof("Run %v finished: %d frames, %d records, %d tracks", runID, summary.Frames, summary.Records, summary.Tracks)
	return summary, nil
}

// frameRecords builds the record group for one frame: one record per tracked
// box, or a single sentinel when nothing was tracked.
func (p *Pipeline) frameRecords(frameIdx int, tracked []mot.TrackedBox) []FrameRecord {
	if len(tracked) == 0 {
		return []FrameRecord{SentinelRecord(frameIdx)}
	}
	records := make([]FrameRecord, len(tracked))
	for i, t := range tracked {
		center := t.Box.Center()
		records[i] = FrameRecord{
			Frame:    frameIdx,
			TrackID:  t.ID,
			CX:       center.X,
			CY:       center.Y,
			Diameter: t.Box.Width / p.opts.Blob.BoxScale,
			X1:       t.Box.X,
			Y1:       t.Box.Y,
			X2:       t.Box.X2(),
			Y2:       t.Box.Y2(),
		}
	}
	return records
}
