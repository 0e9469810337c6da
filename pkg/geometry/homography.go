package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when a projective transform cannot be derived
// or inverted because the point configuration is singular.
var ErrDegenerate = errors.New("degenerate point configuration")

// wEps is the smallest homogeneous w treated as a finite projection.
const wEps = 1e-12

// Homography is a 3x3 projective transform stored row-major.
// [h0 h1 h2]
// [h3 h4 h5]
// [h6 h7 h8]
type Homography [9]float64

// ComputeHomography solves the 8-DOF system mapping src[i] to dst[i] for the
// four correspondences, with h8 fixed at 1. Three collinear or two coincident
// points on either side make the system singular and yield ErrDegenerate.
func ComputeHomography(src, dst [4]Point2D) (Homography, error) {
	if HasCollinearTriple(src[:]) {
		return Homography{}, fmt.Errorf("source points: %w", ErrDegenerate)
	}
	if HasCollinearTriple(dst[:]) {
		return Homography{}, fmt.Errorf("target points: %w", ErrDegenerate)
	}

	// x' = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
	// y' = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y
		r := 2 * i

		A.Set(r, 0, x)
		A.Set(r, 1, y)
		A.Set(r, 2, 1)
		A.Set(r, 6, -x*xp)
		A.Set(r, 7, -y*xp)
		B.SetVec(r, xp)

		A.Set(r+1, 3, x)
		A.Set(r+1, 4, y)
		A.Set(r+1, 5, 1)
		A.Set(r+1, 6, -x*yp)
		A.Set(r+1, 7, -y*yp)
		B.SetVec(r+1, yp)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) || errors.Is(err, mat.ErrSingular) {
			return Homography{}, fmt.Errorf("solve homography: %v: %w", err, ErrDegenerate)
		}
		return Homography{}, fmt.Errorf("solve homography: %w", err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		v := params.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, fmt.Errorf("solve homography: non-finite coefficient: %w", ErrDegenerate)
		}
		h[i] = v
	}
	h[8] = 1
	return h, nil
}

// Apply maps p through the transform, dividing by the homogeneous w.
// Points on the vanishing line map to infinity.
func (h Homography) Apply(p Point2D) Point2D {
	q, _ := h.Project(p)
	return q
}

// W returns the homogeneous scale of p under the transform. Points on
// opposite sides of the vanishing line have opposite signs.
func (h Homography) W(p Point2D) float64 {
	return h[6]*p.X + h[7]*p.Y + h[8]
}

// Project maps p through the transform. It reports false when p lies on
// the vanishing line and has no finite image.
func (h Homography) Project(p Point2D) (Point2D, bool) {
	w := h.W(p)
	x := h[0]*p.X + h[1]*p.Y + h[2]
	y := h[3]*p.X + h[4]*p.Y + h[5]
	if math.Abs(w) < wEps {
		return Point2D{X: math.Inf(sign(x)), Y: math.Inf(sign(y))}, false
	}
	return Point2D{X: x / w, Y: y / w}, true
}

// ApplyAll maps every point through the transform.
func (h Homography) ApplyAll(points []Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = h.Apply(p)
	}
	return out
}

// Inverse returns the inverse transform, normalized so that h8 == 1 where
// possible.
func (h Homography) Inverse() (Homography, error) {
	m := h.Matrix()
	if math.Abs(mat.Det(m)) < wEps {
		return Homography{}, fmt.Errorf("invert homography: %w", ErrDegenerate)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) || errors.Is(err, mat.ErrSingular) {
			return Homography{}, fmt.Errorf("invert homography: %v: %w", err, ErrDegenerate)
		}
		return Homography{}, fmt.Errorf("invert homography: %w", err)
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if s := out[8]; math.Abs(s) > wEps {
		for i := range out {
			out[i] /= s
		}
	}
	return out, nil
}

// Matrix returns a copy of the transform as a gonum matrix.
func (h Homography) Matrix() *mat.Dense {
	data := make([]float64, 9)
	copy(data, h[:])
	return mat.NewDense(3, 3, data)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
