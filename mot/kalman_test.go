package mot

import (
	"math"
	"testing"
)

func TestKalmanStationaryBox(t *testing.T) {
	box := NewRect(100, 100, 20, 20)
	kf := newBoxKalman(box)

	for i := 0; i < 10; i++ {
		kf.predict()
		if err := kf.update(box); err != nil {
			t.Fatal(err)
		}
	}

	got := kf.currentBox()
	center := got.Center()
	if math.Abs(center.X-110) > 0.5 || math.Abs(center.Y-110) > 0.5 {
		t.Errorf("stationary box drifted to (%v, %v), expected near (110, 110)", center.X, center.Y)
	}
	if math.Abs(got.Width-20) > 1 || math.Abs(got.Height-20) > 1 {
		t.Errorf("stationary box size drifted to %vx%v, expected near 20x20", got.Width, got.Height)
	}
}

func TestKalmanTracksLinearMotion(t *testing.T) {
	kf := newBoxKalman(NewRect(0, 50, 20, 20))

	// feed measurements moving +5 px/frame in x
	var predicted Rectangle
	for i := 1; i <= 15; i++ {
		predicted = kf.predict()
		if err := kf.update(NewRect(float64(i)*5, 50, 20, 20)); err != nil {
			t.Fatal(err)
		}
	}

	// after settling, the prediction must lead in the direction of motion
	measured := 14.0 * 5
	if predicted.Center().X <= measured {
		t.Errorf("prediction %v doesn't lead the previous measurement %v", predicted.Center().X, measured)
	}
	if math.Abs(predicted.Center().X-15*5) > 3 {
		t.Errorf("prediction %v too far from the true position %v", predicted.Center().X, 15*5)
	}
}

func TestKalmanAreaNeverNegative(t *testing.T) {
	kf := newBoxKalman(NewRect(0, 0, 40, 40))

	// shrinking measurements induce a negative area velocity
	for i := 0; i < 10; i++ {
		kf.predict()
		size := 40.0 - float64(i)*4
		if err := kf.update(NewRect(0, 0, size, size)); err != nil {
			t.Fatal(err)
		}
	}
	// coast without measurements: the clamp must keep the box well-formed
	for i := 0; i < 20; i++ {
		box := kf.predict()
		if box.Width < 0 || box.Height < 0 || math.IsNaN(box.Width) || math.IsNaN(box.Height) {
			t.Fatalf("coasting box degenerated to %vx%v", box.Width, box.Height)
		}
	}
}

func TestMeasurementRoundTrip(t *testing.T) {
	box := NewRect(10, 20, 30, 60)
	cx, cy, s, r := boxToMeasurement(box)
	if math.Abs(cx-25) > eps || math.Abs(cy-50) > eps {
		t.Errorf("wrong center: (%v, %v), expected (25, 50)", cx, cy)
	}
	if math.Abs(s-1800) > eps || math.Abs(r-0.5) > eps {
		t.Errorf("wrong area/aspect: (%v, %v), expected (1800, 0.5)", s, r)
	}
	back := measurementToBox(cx, cy, s, r)
	if math.Abs(back.X-box.X) > eps || math.Abs(back.Y-box.Y) > eps ||
		math.Abs(back.Width-box.Width) > eps || math.Abs(back.Height-box.Height) > eps {
		t.Errorf("round trip mismatch: %+v vs %+v", back, box)
	}
}
