package bootstrap

import (
	"math"
	"sort"
)

// Interpolation method constants
const (
	MethodCubic     = "cubic"
	MethodQuadratic = "quadratic"
	MethodLinear    = "linear"
)

// Bootstrapper derives zero rates, discount factors and forward rates from sparse
// (maturity, yield) observations and interpolates them to a dense grid. It is pure:
// no storage, no I/O. Yields are expressed in percent (4.5 means 4.5%).
type Bootstrapper struct {
	method string
}

// NewBootstrapper creates a Bootstrapper with the preferred interpolation method.
// The method degrades gracefully when too few points are available, see
// InterpolateCurve.
func NewBootstrapper(method string) *Bootstrapper {
	if method == "" {
		method = MethodCubic
	}
	return &Bootstrapper{method: method}
}

// Method returns the preferred interpolation method
func (b *Bootstrapper) Method() string {
	return b.method
}

// BootstrapZeroCurve converts sparse (maturity, yield) pairs into zero rates,
// discount factors and forward rates, all sorted ascending by maturity.
//
// Input yields are treated as zero rates directly; no par-yield solving is
// performed. The discount factor at maturity t with zero rate r (percent) is
// exp(-r/100 * t).
func (b *Bootstrapper) BootstrapZeroCurve(maturities, yields []float64) (zeroRates, discountFactors, forwardRates []float64, err error) {
	if len(maturities) != len(yields) {
		return nil, nil, nil, &ValidationError{Reason: "maturities and yields must have the same length"}
	}
	if len(maturities) < 2 {
		return nil, nil, nil, &ValidationError{Reason: "need at least 2 data points for bootstrapping"}
	}

	mats, rates := sortAndFilter(maturities, yields)
	if len(mats) < 2 {
		return nil, nil, nil, &ValidationError{Reason: "not enough valid data points after removing NaNs"}
	}

	zeroRates = rates

	discountFactors = make([]float64, len(mats))
	for i, t := range mats {
		discountFactors[i] = math.Exp(-zeroRates[i] / 100.0 * t)
	}

	forwardRates = calculateForwardRates(mats, zeroRates)

	return zeroRates, discountFactors, forwardRates, nil
}

// calculateForwardRates derives the implied rate between adjacent maturities.
// The first forward rate equals the first zero rate. A non-increasing maturity
// pair falls back to the zero rate rather than failing.
func calculateForwardRates(maturities, zeroRates []float64) []float64 {
	forwards := make([]float64, len(zeroRates))
	if len(zeroRates) == 0 {
		return forwards
	}
	forwards[0] = zeroRates[0]

	for i := 1; i < len(maturities); i++ {
		t1 := maturities[i-1]
		t2 := maturities[i]
		r1 := zeroRates[i-1] / 100.0
		r2 := zeroRates[i] / 100.0

		if t2 > t1 {
			forwards[i] = ((r2*t2 - r1*t1) / (t2 - t1)) * 100.0
		} else {
			forwards[i] = zeroRates[i]
		}
	}

	return forwards
}

// CalculateSpreads computes elementwise corporate minus treasury yields.
// Both inputs must have the same length. Units follow the inputs (percent in,
// percent out).
func (b *Bootstrapper) CalculateSpreads(corporateYields, treasuryYields []float64) ([]float64, error) {
	if len(corporateYields) != len(treasuryYields) {
		return nil, &ValidationError{Reason: "corporate and treasury yield arrays must have the same length"}
	}

	spreads := make([]float64, len(corporateYields))
	for i := range corporateYields {
		spreads[i] = corporateYields[i] - treasuryYields[i]
	}
	return spreads, nil
}

// SmoothCurve applies centered moving-average smoothing to a rate series.
// Window size is max(3, round(len(rates)*smoothingFactor)), forced odd. Points
// within half a window of either boundary are left unmodified. Fewer than 3
// points are returned unchanged.
func (b *Bootstrapper) SmoothCurve(maturities, rates []float64, smoothingFactor float64) []float64 {
	smoothed := make([]float64, len(rates))
	copy(smoothed, rates)

	if len(rates) < 3 {
		return smoothed
	}

	windowSize := int(math.Round(float64(len(rates)) * smoothingFactor))
	if windowSize < 3 {
		windowSize = 3
	}
	if windowSize%2 == 0 {
		windowSize++
	}

	halfWindow := windowSize / 2
	for i := halfWindow; i < len(rates)-halfWindow; i++ {
		sum := 0.0
		for j := i - halfWindow; j <= i+halfWindow; j++ {
			sum += rates[j]
		}
		smoothed[i] = sum / float64(windowSize)
	}

	return smoothed
}

// sortAndFilter drops pairs where either value is NaN and returns both slices
// sorted ascending by maturity. The inputs are not modified.
func sortAndFilter(maturities, rates []float64) ([]float64, []float64) {
	type pair struct{ m, r float64 }
	pairs := make([]pair, 0, len(maturities))
	for i := range maturities {
		if math.IsNaN(maturities[i]) || math.IsNaN(rates[i]) {
			continue
		}
		pairs = append(pairs, pair{maturities[i], rates[i]})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].m < pairs[j].m })

	outM := make([]float64, len(pairs))
	outR := make([]float64, len(pairs))
	for i, p := range pairs {
		outM[i] = p.m
		outR[i] = p.r
	}
	return outM, outR
}
