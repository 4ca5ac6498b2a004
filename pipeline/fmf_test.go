package pipeline

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFMFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fmf")

	w, err := CreateFMF(path, 64, 48)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		frame := image.NewGray(image.Rect(0, 0, 64, 48))
		for j := range frame.Pix {
			frame.Pix[j] = uint8(i * 10)
		}
		require.NoError(t, w.WriteFrame(frame, float64(i)*0.04))
	}
	require.NoError(t, w.Close())

	r, err := OpenFMF(path, 25)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 5, r.FrameCount())
	require.Equal(t, 25.0, r.FrameRate())
	require.Equal(t, image.Rect(0, 0, 64, 48), r.Bounds())

	for i := 0; i < 5; i++ {
		frame, err := r.Next()
		require.NoError(t, err)
		gray := frame.(*image.Gray)
		require.Equal(t, uint8(i*10), gray.Pix[0])
		require.InDelta(t, float64(i)*0.04, r.Timestamp(), 1e-9)
	}
	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}

func TestFMFSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seek.fmf")

	w, err := CreateFMF(path, 8, 8)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		frame := image.NewGray(image.Rect(0, 0, 8, 8))
		frame.Pix[0] = uint8(i)
		require.NoError(t, w.WriteFrame(frame, float64(i)))
	}
	require.NoError(t, w.Close())

	r, err := OpenFMF(path, 30)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Seek(7))
	frame, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, uint8(7), frame.(*image.Gray).Pix[0])

	require.NoError(t, r.Seek(0))
	frame, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, uint8(0), frame.(*image.Gray).Pix[0])

	require.Error(t, r.Seek(11))
	require.Error(t, r.Seek(-1))
}

func TestFMFWriterRejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "size.fmf")
	w, err := CreateFMF(path, 8, 8)
	require.NoError(t, err)
	defer w.Close()

	require.Error(t, w.WriteFrame(image.NewGray(image.Rect(0, 0, 9, 8)), 0))
}

func TestFMFRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.fmf")
	require.NoError(t, os.WriteFile(path, []byte("not an fmf file at all"), 0o644))

	_, err := OpenFMF(path, 30)
	require.Error(t, err)
}
