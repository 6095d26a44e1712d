package bootstrap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// daysPerYear sets the default interpolation grid resolution
const daysPerYear = 365

// InterpolateCurve interpolates a sparse curve onto a dense maturity grid.
//
// NaN pairs are dropped and the remaining points sorted by maturity; at least 2
// valid points are required. When targetMaturities is nil a uniform grid spanning
// [min, max] maturity at daily resolution is built: floor((max-min)*365)+1 points.
//
// The interpolation strategy degrades with the available point count: the cubic
// spline needs at least 4 points, quadratic at least 3, and linear always applies.
// Cubic never extrapolates; targets outside the observed range evaluate to NaN.
// Quadratic and linear extrapolate beyond the range.
//
// Output rates are clamped to [min(min(rates), 0), max(rates)*1.5]: negative
// rates pass through only when present in the input, and extrapolation overshoot
// is bounded at 150% of the highest observed rate.
func (b *Bootstrapper) InterpolateCurve(maturities, rates, targetMaturities []float64) ([]float64, []float64, error) {
	mats, rts := sortAndFilter(maturities, rates)
	if len(mats) < 2 {
		return nil, nil, &ValidationError{Reason: "need at least 2 valid points for interpolation"}
	}

	targets := targetMaturities
	if targets == nil {
		targets = defaultGrid(mats[0], mats[len(mats)-1])
	}

	predict, err := newPredictor(selectMethod(b.method, len(mats)), mats, rts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit interpolant: %w", err)
	}

	minRate := math.Min(floats.Min(rts), 0)
	maxRate := floats.Max(rts) * 1.5

	interpolated := make([]float64, len(targets))
	for i, t := range targets {
		interpolated[i] = math.Min(math.Max(predict(t), minRate), maxRate)
	}

	return targets, interpolated, nil
}

// selectMethod resolves the graceful-degradation ladder: the requested method is
// used only when its minimum point count is met, otherwise linear.
func selectMethod(requested string, points int) string {
	switch {
	case requested == MethodCubic && points >= 4:
		return MethodCubic
	case requested == MethodQuadratic && points >= 3:
		return MethodQuadratic
	default:
		return MethodLinear
	}
}

// newPredictor builds the evaluation function for one interpolation method over
// sorted, deduplicated points.
func newPredictor(method string, xs, ys []float64) (func(float64) float64, error) {
	switch method {
	case MethodCubic:
		var nc interp.NaturalCubic
		if err := nc.Fit(xs, ys); err != nil {
			return nil, err
		}
		lo, hi := xs[0], xs[len(xs)-1]
		return func(x float64) float64 {
			if x < lo || x > hi {
				return math.NaN()
			}
			return nc.Predict(x)
		}, nil
	case MethodQuadratic:
		return func(x float64) float64 {
			return quadraticAt(xs, ys, x)
		}, nil
	default:
		return func(x float64) float64 {
			return linearAt(xs, ys, x)
		}, nil
	}
}

// defaultGrid returns a uniform float grid from lo to hi at daily resolution.
// It is not date-aligned; points are evenly spaced.
func defaultGrid(lo, hi float64) []float64 {
	n := int((hi-lo)*daysPerYear) + 1
	if n < 1 {
		n = 1
	}
	grid := make([]float64, n)
	if n == 1 {
		grid[0] = lo
		return grid
	}
	step := (hi - lo) / float64(n-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	grid[n-1] = hi
	return grid
}

// linearAt evaluates piecewise-linear interpolation with end-segment
// extrapolation outside the observed range.
func linearAt(xs, ys []float64, x float64) float64 {
	i := segmentIndex(xs, x)
	x1, x2 := xs[i], xs[i+1]
	y1, y2 := ys[i], ys[i+1]
	if x2 == x1 {
		return y1
	}
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}

// quadraticAt evaluates a three-point Lagrange polynomial over the window nearest
// to x, extrapolating with the boundary window outside the observed range.
func quadraticAt(xs, ys []float64, x float64) float64 {
	start := segmentIndex(xs, x) - 1
	if start < 0 {
		start = 0
	}
	if start > len(xs)-3 {
		start = len(xs) - 3
	}

	x0, x1, x2 := xs[start], xs[start+1], xs[start+2]
	y0, y1, y2 := ys[start], ys[start+1], ys[start+2]

	l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
	l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
	l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
	return y0*l0 + y1*l1 + y2*l2
}

// segmentIndex returns i such that xs[i] <= x <= xs[i+1] where possible, clamped
// to the boundary segments for out-of-range x.
func segmentIndex(xs []float64, x float64) int {
	if x <= xs[0] {
		return 0
	}
	if x >= xs[len(xs)-1] {
		return len(xs) - 2
	}
	lo, hi := 0, len(xs)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
