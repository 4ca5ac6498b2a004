package pix

import (
	"image"
	"image/color"
)

// Median applies a square median filter with the given odd kernel size.
// Edges are handled by clamping the window to the image bounds. Even kernel
// sizes are rounded up to the next odd size; kernel <= 1 returns a copy.
func Median(src *image.Gray, kernel int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	if kernel <= 1 {
		copy(dst.Pix, src.Pix)
		return dst
	}
	if kernel%2 == 0 {
		kernel++
	}
	half := kernel / 2

	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			for i := range hist {
				hist[i] = 0
			}
			y0, y1 := max(y-half, b.Min.Y), min(y+half, b.Max.Y-1)
			x0, x1 := max(x-half, b.Min.X), min(x+half, b.Max.X-1)
			n := 0
			for wy := y0; wy <= y1; wy++ {
				for wx := x0; wx <= x1; wx++ {
					hist[src.GrayAt(wx, wy).Y]++
					n++
				}
			}
			target := n / 2
			seen := 0
			for v := 0; v < 256; v++ {
				seen += hist[v]
				if seen > target {
					dst.SetGray(x, y, color.Gray{Y: uint8(v)})
					break
				}
			}
		}
	}
	return dst
}

// MedianStack computes the per-pixel median across a stack of equally sized
// frames. For an even stack size the two middle values are averaged, matching
// the usual statistical convention. An empty stack yields nil.
func MedianStack(frames []*image.Gray) *image.Gray {
	if len(frames) == 0 {
		return nil
	}
	b := frames[0].Bounds()
	dst := image.NewGray(b)
	n := len(frames)

	var hist [256]int
	for i := range dst.Pix {
		for j := range hist {
			hist[j] = 0
		}
		for _, f := range frames {
			hist[f.Pix[i]]++
		}
		if n%2 == 1 {
			dst.Pix[i] = nthValue(&hist, n/2)
		} else {
			lo := nthValue(&hist, n/2-1)
			hi := nthValue(&hist, n/2)
			dst.Pix[i] = uint8((int(lo) + int(hi) + 1) / 2)
		}
	}
	return dst
}

// nthValue returns the value at the given rank in the sorted multiset
// described by hist.
func nthValue(hist *[256]int, rank int) uint8 {
	seen := 0
	for v := 0; v < 256; v++ {
		seen += hist[v]
		if seen > rank {
			return uint8(v)
		}
	}
	return 255
}
