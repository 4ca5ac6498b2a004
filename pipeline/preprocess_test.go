package pipeline

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareIsolatesBlob(t *testing.T) {
	src := NewSliceSource(movingBlobFrames(20), 25)
	bg, err := BuildBackground(src, 20)
	require.NoError(t, err)

	profile := &ThresholdProfile{MeanThreshold: 165, MinThreshold: 145, Margin: 20}
	at := image.Pt(32, 32)
	mask := Prepare(syntheticFrame(64, 64, &at), bg, profile, 3)

	// blob center is foreground (0), far background stays light (255)
	require.Equal(t, uint8(0), mask.GrayAt(32, 32).Y)
	require.Equal(t, uint8(255), mask.GrayAt(5, 5).Y)

	// the mask must be strictly binary
	for i, v := range mask.Pix {
		require.Truef(t, v == 0 || v == 255, "pixel %d has intermediate value %d", i, v)
	}
}

func TestPrepareFiltersSpeckle(t *testing.T) {
	src := NewSliceSource(movingBlobFrames(20), 25)
	bg, err := BuildBackground(src, 20)
	require.NoError(t, err)

	// a single noisy pixel must not survive the median filter
	frame := syntheticFrame(64, 64, nil)
	frame.Pix[10*frame.Stride+10] = testBlobValue

	profile := &ThresholdProfile{MeanThreshold: 165, MinThreshold: 145, Margin: 20}
	mask := Prepare(frame, bg, profile, 7)
	require.Equal(t, uint8(255), mask.GrayAt(10, 10).Y)
}
