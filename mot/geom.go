package mot

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned bounding box with float64 coordinates.
// X, Y is the top-left corner.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectFromCorners builds a rectangle from top-left and bottom-right corners.
func NewRectFromCorners(x1, y1, x2, y2 float64) Rectangle {
	return Rectangle{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// X2 returns the right edge coordinate
func (r Rectangle) X2() float64 {
	return r.X + r.Width
}

// Y2 returns the bottom edge coordinate
func (r Rectangle) Y2() float64 {
	return r.Y + r.Height
}

// Area returns the rectangle's area
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// Center returns the rectangle's center point
func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// IoU calculates Intersection over Union between two rectangles.
// Returns 1.0 for identical boxes and 0.0 for disjoint ones.
func IoU(r1, r2 Rectangle) float64 {
	xA := math.Max(r1.X, r2.X)
	yA := math.Max(r1.Y, r2.Y)
	xB := math.Min(r1.X2(), r2.X2())
	yB := math.Min(r1.Y2(), r2.Y2())

	interArea := math.Max(0, xB-xA) * math.Max(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}
	return interArea / (r1.Area() + r2.Area() - interArea)
}
