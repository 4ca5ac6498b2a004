package pipeline

import (
	"image"
)

const (
	testBackgroundValue = 200
	testBlobValue       = 20
	testBlobRadius      = 4
)

// syntheticFrame renders the test scene: a light background with an optional
// dark disc.
func syntheticFrame(w, h int, blobAt *image.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = testBackgroundValue
	}
	if blobAt != nil {
		r := testBlobRadius
		for y := blobAt.Y - r; y <= blobAt.Y+r; y++ {
			for x := blobAt.X - r; x <= blobAt.X+r; x++ {
				if x < 0 || y < 0 || x >= w || y >= h {
					continue
				}
				dx, dy := x-blobAt.X, y-blobAt.Y
				if dx*dx+dy*dy <= r*r {
					img.Pix[y*img.Stride+x] = testBlobValue
				}
			}
		}
	}
	return img
}

// movingBlobFrames renders n frames of one disc drifting right at 2 px/frame.
func movingBlobFrames(n int) []image.Image {
	frames := make([]image.Image, n)
	for i := range frames {
		at := image.Pt(10+2*i, 32)
		frames[i] = syntheticFrame(64, 64, &at)
	}
	return frames
}

type memRecordSink struct {
	records []FrameRecord
}

func (m *memRecordSink) WriteRecord(rec FrameRecord) error {
	m.records = append(m.records, rec)
	return nil
}
