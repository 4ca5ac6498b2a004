// Package pix provides the small set of 8-bit grayscale raster operations
// the tracking pipeline needs: conversion, differencing, binarization,
// median filtering and Otsu threshold search. All functions treat images as
// immutable inputs and allocate their results.
package pix

import (
	"image"
	"image/color"
)

// ToGray converts src to 8-bit grayscale. If src already is *image.Gray it is
// returned as-is.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

// AbsDiff returns the per-pixel absolute difference |a-b|.
// Both images must share the same bounds.
func AbsDiff(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Bounds())
	for i := range a.Pix {
		va, vb := int(a.Pix[i]), int(b.Pix[i])
		d := va - vb
		if d < 0 {
			d = -d
		}
		dst.Pix[i] = uint8(d)
	}
	return dst
}

// Invert returns 255-v for every pixel.
func Invert(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// Binarize maps every pixel strictly below threshold to 0 (foreground) and
// the rest to 255. The pipeline convention is dark blobs on a light
// background throughout.
func Binarize(src *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v < threshold {
			dst.Pix[i] = 0
		} else {
			dst.Pix[i] = 255
		}
	}
	return dst
}

// Crop returns a copy of the given region of src, clipped to src's bounds.
// The result has its origin at (0,0).
func Crop(src *image.Gray, region image.Rectangle) *image.Gray {
	region = region.Intersect(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		for x := 0; x < region.Dx(); x++ {
			dst.SetGray(x, y, src.GrayAt(region.Min.X+x, region.Min.Y+y))
		}
	}
	return dst
}
