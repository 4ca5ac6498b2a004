package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildBackgroundRemovesMovingBlob(t *testing.T) {
	src := NewSliceSource(movingBlobFrames(20), 25)

	bg, err := BuildBackground(src, 20)
	require.NoError(t, err)
	require.Equal(t, 20, bg.Samples())

	// the blob visits each pixel on only a few frames, so the temporal
	// median must be pure background everywhere
	img := bg.Image()
	for i, v := range img.Pix {
		require.Equalf(t, uint8(testBackgroundValue), v, "pixel %d", i)
	}
}

func TestBuildBackgroundClampsSampleCount(t *testing.T) {
	src := NewSliceSource(movingBlobFrames(5), 25)
	bg, err := BuildBackground(src, 100)
	require.NoError(t, err)
	require.Equal(t, 5, bg.Samples())
}

func TestBuildBackgroundEmptySource(t *testing.T) {
	src := NewSliceSource(nil, 25)
	_, err := BuildBackground(src, 10)
	require.ErrorIs(t, err, ErrInsufficientFrames)
}
