package mot

import (
	"image"
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestRectangleAccessors(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.X2() != 40 || r.Y2() != 60 {
		t.Errorf("wrong far corner: (%v, %v), expected (40, 60)", r.X2(), r.Y2())
	}
	if r.Area() != 1200 {
		t.Errorf("wrong area: %v, expected 1200", r.Area())
	}
	c := r.Center()
	if c.X != 25 || c.Y != 40 {
		t.Errorf("wrong center: (%v, %v), expected (25, 40)", c.X, c.Y)
	}
	fromCorners := NewRectFromCorners(10, 20, 40, 60)
	if fromCorners != r {
		t.Errorf("corner constructor mismatch: %+v vs %+v", fromCorners, r)
	}
	fromImage := NewRectFrom(image.Rect(10, 20, 40, 60))
	if fromImage != r {
		t.Errorf("image constructor mismatch: %+v vs %+v", fromImage, r)
	}
}

func TestIoU(t *testing.T) {
	r1 := NewRect(0, 0, 10, 10)

	// identical boxes
	if v := IoU(r1, r1); math.Abs(v-1.0) > eps {
		t.Errorf("wrong IoU for identical boxes: %v, expected 1", v)
	}

	// half overlap: intersection 50, union 150
	r2 := NewRect(5, 0, 10, 10)
	if v := IoU(r1, r2); math.Abs(v-50.0/150.0) > eps {
		t.Errorf("wrong IoU for half overlap: %v, expected %v", v, 50.0/150.0)
	}

	// disjoint boxes
	r3 := NewRect(20, 20, 10, 10)
	if v := IoU(r1, r3); v != 0 {
		t.Errorf("wrong IoU for disjoint boxes: %v, expected 0", v)
	}

	// touching edges only
	r4 := NewRect(10, 0, 10, 10)
	if v := IoU(r1, r4); v != 0 {
		t.Errorf("wrong IoU for touching boxes: %v, expected 0", v)
	}
}
