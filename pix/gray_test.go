package pix

import (
	"image"
	"image/color"
	"testing"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestToGrayPassthrough(t *testing.T) {
	src := uniformGray(4, 4, 77)
	if got := ToGray(src); got != src {
		t.Error("grayscale input should be returned as-is")
	}
}

func TestToGrayConverts(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	got := ToGray(src)
	if got.GrayAt(0, 0).Y != 255 {
		t.Errorf("white converted to %d, expected 255", got.GrayAt(0, 0).Y)
	}
	if got.GrayAt(1, 1).Y != 0 {
		t.Errorf("black converted to %d, expected 0", got.GrayAt(1, 1).Y)
	}
}

func TestAbsDiff(t *testing.T) {
	a := uniformGray(2, 2, 200)
	b := uniformGray(2, 2, 20)
	for _, d := range []*image.Gray{AbsDiff(a, b), AbsDiff(b, a)} {
		if d.Pix[0] != 180 {
			t.Errorf("wrong difference: %d, expected 180", d.Pix[0])
		}
	}
}

func TestInvert(t *testing.T) {
	src := uniformGray(2, 2, 180)
	if got := Invert(src); got.Pix[0] != 75 {
		t.Errorf("wrong inverted value: %d, expected 75", got.Pix[0])
	}
}

func TestBinarizeStrictlyBelow(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix[0] = 99
	src.Pix[1] = 100
	src.Pix[2] = 101
	got := Binarize(src, 100)
	if got.Pix[0] != 0 {
		t.Error("pixel below threshold must be foreground (0)")
	}
	if got.Pix[1] != 255 {
		t.Error("pixel at threshold must be background (255)")
	}
	if got.Pix[2] != 255 {
		t.Error("pixel above threshold must be background (255)")
	}
}

func TestCropClips(t *testing.T) {
	src := uniformGray(10, 10, 42)
	src.SetGray(9, 9, color.Gray{Y: 7})
	got := Crop(src, image.Rect(8, 8, 20, 20))
	if got.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("wrong crop bounds: %v", got.Bounds())
	}
	if got.GrayAt(1, 1).Y != 7 {
		t.Errorf("wrong cropped pixel: %d, expected 7", got.GrayAt(1, 1).Y)
	}
}
