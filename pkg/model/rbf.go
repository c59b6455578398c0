package model

import (
	"fmt"
	"math"

	"biomassopt/pkg/common"
)

// RBF is a thin-plate-spline radial basis interpolant with a low-degree
// polynomial tail. It fits the training values exactly (no smoothing)
// and varies smoothly everywhere else, including outside the convex
// hull of the training points. Prediction cost is O(n) in the number
// of training points.
type RBF struct {
	points  [][common.Dims]float64 // scaled training inputs
	weights []float64              // len(points) rbf weights + poly coefficients
	poly    int                    // number of polynomial terms (1 or Dims+1)
	lo, hi  [common.Dims]float64   // per-dimension scaling bounds
}

var _ Interpolator = (*RBF)(nil)

// Fit builds the interpolant from training points and their observed
// outputs. It fails on empty input, mismatched lengths, duplicate
// points, or a singular system.
func Fit(points [][common.Dims]float64, values []float64) (*RBF, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("fit: no training points")
	}
	if len(values) != n {
		return nil, fmt.Errorf("fit: %d points but %d values", n, len(values))
	}

	r := &RBF{poly: 1}
	// A full linear tail needs at least Dims+1 points to be solvable;
	// below that only the constant term is kept.
	if n >= common.Dims+1 {
		r.poly = common.Dims + 1
	}

	r.fitBounds(points)
	r.points = make([][common.Dims]float64, n)
	for i, p := range points {
		r.points[i] = r.scale(p)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.points[i] == r.points[j] {
				return nil, fmt.Errorf("fit: duplicate training point at rows %d and %d", i, j)
			}
		}
	}

	// Assemble the symmetric system
	//   | K  P | |w|   |y|
	//   | Pt 0 | |c| = |0|
	// where K holds kernel values between training points and P the
	// polynomial terms.
	m := n + r.poly
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, m+1)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i][j] = thinPlate(dist(r.points[i], r.points[j]))
		}
		a[i][n] = 1
		a[n][i] = 1
		for d := 1; d < r.poly; d++ {
			a[i][n+d] = r.points[i][d-1]
			a[n+d][i] = r.points[i][d-1]
		}
		a[i][m] = values[i]
	}

	w, err := solve(a)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	r.weights = w
	return r, nil
}

// Predict evaluates the interpolant at point. Points outside the
// training range are extrapolated, never rejected.
func (r *RBF) Predict(point [common.Dims]float64) (float64, error) {
	if len(r.weights) == 0 {
		return 0, fmt.Errorf("interpolator not initialized")
	}

	p := r.scale(point)
	n := len(r.points)
	out := r.weights[n] // constant term
	for i, tp := range r.points {
		out += r.weights[i] * thinPlate(dist(p, tp))
	}
	for d := 1; d < r.poly; d++ {
		out += r.weights[n+d] * p[d-1]
	}

	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("interpolation produced non-finite value at %v", point)
	}
	return out, nil
}

func (r *RBF) Ready() bool { return len(r.weights) > 0 }

// Len reports the number of training points backing the model.
func (r *RBF) Len() int { return len(r.points) }

func (r *RBF) fitBounds(points [][common.Dims]float64) {
	r.lo = points[0]
	r.hi = points[0]
	for _, p := range points[1:] {
		for d := 0; d < common.Dims; d++ {
			if p[d] < r.lo[d] {
				r.lo[d] = p[d]
			}
			if p[d] > r.hi[d] {
				r.hi[d] = p[d]
			}
		}
	}
}

// scale maps a point into the unit box spanned by the training data.
// This keeps the dense solve well conditioned when input ranges differ
// by orders of magnitude (weather index 0-100 vs energy price 0-5).
func (r *RBF) scale(p [common.Dims]float64) [common.Dims]float64 {
	var out [common.Dims]float64
	for d := 0; d < common.Dims; d++ {
		span := r.hi[d] - r.lo[d]
		if span == 0 {
			span = 1
		}
		out[d] = (p[d] - r.lo[d]) / span
	}
	return out
}

// thinPlate is the polyharmonic kernel r^2*ln(r), zero at r=0.
func thinPlate(r float64) float64 {
	if r == 0 {
		return 0
	}
	return r * r * math.Log(r)
}

func dist(a, b [common.Dims]float64) float64 {
	var sum float64
	for d := 0; d < common.Dims; d++ {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// solve runs Gaussian elimination with partial pivoting on the
// augmented matrix a (m rows, m+1 columns), returning the solution.
func solve(a [][]float64) ([]float64, error) {
	m := len(a)
	for col := 0; col < m; col++ {
		pivot := col
		for row := col + 1; row < m; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular interpolation system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < m; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k <= m; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	x := make([]float64, m)
	for row := m - 1; row >= 0; row-- {
		sum := a[row][m]
		for k := row + 1; k < m; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
