package mot

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// boxKalman is a discrete constant-velocity Kalman filter over a bounding box
// observed as (cx, cy, s, r), where s is the box area and r its aspect ratio.
// State vector: [cx, cy, s, r, vcx, vcy, vs, vr].
type boxKalman struct {
	x *mat.VecDense // 8x1 state
	p *mat.Dense    // 8x8 state covariance
	f *mat.Dense    // 8x8 transition
	h *mat.Dense    // 4x8 measurement
	q *mat.Dense    // 8x8 process noise
	r *mat.Dense    // 4x4 measurement noise
}

const kalmanDim = 8

func newBoxKalman(box Rectangle) *boxKalman {
	cx, cy, s, r := boxToMeasurement(box)

	x := mat.NewVecDense(kalmanDim, nil)
	x.SetVec(0, cx)
	x.SetVec(1, cy)
	x.SetVec(2, s)
	x.SetVec(3, r)

	// dt = 1 frame
	f := mat.NewDense(kalmanDim, kalmanDim, nil)
	for i := 0; i < kalmanDim; i++ {
		f.Set(i, i, 1)
	}
	for i := 0; i < 4; i++ {
		f.Set(i, i+4, 1)
	}

	h := mat.NewDense(4, kalmanDim, nil)
	for i := 0; i < 4; i++ {
		h.Set(i, i, 1)
	}

	p := diag(10, 10, 10, 10, 1e4, 1e4, 1e4, 1e4)
	q := diag(1, 1, 1, 1, 0.01, 0.01, 1e-4, 1e-4)
	rm := mat.NewDense(4, 4, nil)
	rm.Set(0, 0, 1)
	rm.Set(1, 1, 1)
	rm.Set(2, 2, 10)
	rm.Set(3, 3, 10)

	return &boxKalman{x: x, p: p, f: f, h: h, q: q, r: rm}
}

func diag(values ...float64) *mat.Dense {
	n := len(values)
	m := mat.NewDense(n, n, nil)
	for i, v := range values {
		m.Set(i, i, v)
	}
	return m
}

// predict advances the state one frame: x = Fx, P = FPF' + Q.
// The area velocity is clamped so a coasting box cannot collapse to
// non-positive area.
func (k *boxKalman) predict() Rectangle {
	if k.x.AtVec(2)+k.x.AtVec(6) <= 0 {
		k.x.SetVec(6, 0)
	}

	var nx mat.VecDense
	nx.MulVec(k.f, k.x)
	k.x.CopyVec(&nx)

	var fp, fpft mat.Dense
	fp.Mul(k.f, k.p)
	fpft.Mul(&fp, k.f.T())
	fpft.Add(&fpft, k.q)
	k.p.Copy(&fpft)

	return k.currentBox()
}

// update folds a measured box into the state: standard Kalman gain step.
func (k *boxKalman) update(box Rectangle) error {
	cx, cy, s, r := boxToMeasurement(box)
	z := mat.NewVecDense(4, []float64{cx, cy, s, r})

	var hx mat.VecDense
	hx.MulVec(k.h, k.x)
	var y mat.VecDense
	y.SubVec(z, &hx)

	var pht mat.Dense
	pht.Mul(k.p, k.h.T())
	var innov mat.Dense
	innov.Mul(k.h, &pht)
	innov.Add(&innov, k.r)

	var innovInv mat.Dense
	if err := innovInv.Inverse(&innov); err != nil {
		return errors.Wrap(err, "innovation covariance is singular")
	}

	var gain mat.Dense
	gain.Mul(&pht, &innovInv)

	var gy mat.VecDense
	gy.MulVec(&gain, &y)
	k.x.AddVec(k.x, &gy)

	var gh mat.Dense
	gh.Mul(&gain, k.h)
	ikh := diag(1, 1, 1, 1, 1, 1, 1, 1)
	ikh.Sub(ikh, &gh)
	var np mat.Dense
	np.Mul(ikh, k.p)
	k.p.Copy(&np)

	return nil
}

// currentBox derives the bounding box from the filter state.
func (k *boxKalman) currentBox() Rectangle {
	return measurementToBox(k.x.AtVec(0), k.x.AtVec(1), k.x.AtVec(2), k.x.AtVec(3))
}

func boxToMeasurement(box Rectangle) (cx, cy, s, r float64) {
	cx = box.X + box.Width/2.0
	cy = box.Y + box.Height/2.0
	s = box.Width * box.Height
	r = 1.0
	if box.Height != 0 {
		r = box.Width / box.Height
	}
	return cx, cy, s, r
}

func measurementToBox(cx, cy, s, r float64) Rectangle {
	if s < 0 {
		s = 0
	}
	if r <= 0 {
		r = 1
	}
	w := math.Sqrt(s * r)
	h := 0.0
	if w > 0 {
		h = s / w
	}
	return Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
}
