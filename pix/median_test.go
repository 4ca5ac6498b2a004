package pix

import (
	"image"
	"testing"
)

func TestMedianRemovesSaltNoise(t *testing.T) {
	src := uniformGray(9, 9, 255)
	src.Pix[4*9+4] = 0

	got := Median(src, 3)
	for i, v := range got.Pix {
		if v != 255 {
			t.Fatalf("speckle survived at index %d: %d", i, v)
		}
	}
}

func TestMedianPreservesLargeRegions(t *testing.T) {
	// a 5x5 block is bigger than the 3x3 window and must survive
	src := uniformGray(11, 11, 255)
	for y := 3; y < 8; y++ {
		for x := 3; x < 8; x++ {
			src.Pix[y*11+x] = 0
		}
	}
	got := Median(src, 3)
	if got.Pix[5*11+5] != 0 {
		t.Error("interior of large region was filtered away")
	}
	if got.Pix[0] != 255 {
		t.Error("background corrupted")
	}
}

func TestMedianTrivialKernel(t *testing.T) {
	src := uniformGray(3, 3, 10)
	src.Pix[0] = 200
	got := Median(src, 1)
	if got.Pix[0] != 200 {
		t.Error("kernel 1 must copy the image unchanged")
	}
	if &got.Pix[0] == &src.Pix[0] {
		t.Error("result must not alias the input")
	}
}

func TestMedianStackOdd(t *testing.T) {
	frames := []*image.Gray{
		uniformGray(2, 2, 10),
		uniformGray(2, 2, 200),
		uniformGray(2, 2, 20),
	}
	got := MedianStack(frames)
	if got.Pix[0] != 20 {
		t.Errorf("wrong temporal median: %d, expected 20", got.Pix[0])
	}
}

func TestMedianStackEvenAverages(t *testing.T) {
	frames := []*image.Gray{
		uniformGray(1, 1, 10),
		uniformGray(1, 1, 20),
		uniformGray(1, 1, 30),
		uniformGray(1, 1, 200),
	}
	got := MedianStack(frames)
	if got.Pix[0] != 25 {
		t.Errorf("wrong temporal median: %d, expected 25", got.Pix[0])
	}
}

func TestMedianStackTransientObject(t *testing.T) {
	// an object present in a minority of frames must vanish from the median
	frames := make([]*image.Gray, 5)
	for i := range frames {
		frames[i] = uniformGray(4, 4, 200)
	}
	frames[1].Pix[5] = 20
	frames[3].Pix[5] = 20

	got := MedianStack(frames)
	if got.Pix[5] != 200 {
		t.Errorf("transient object leaked into background: %d, expected 200", got.Pix[5])
	}
}

func TestMedianStackEmpty(t *testing.T) {
	if got := MedianStack(nil); got != nil {
		t.Error("empty stack must yield nil")
	}
}
