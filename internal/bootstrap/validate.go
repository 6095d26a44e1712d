package bootstrap

import (
	"fmt"
	"math"
)

// ValidationError reports curve input that cannot be bootstrapped. It marks an
// unbuildable date, not a bug: callers skip the date rather than escalate.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid curve data: " + e.Reason
}

// ValidateCurveData checks whether (maturities, yields) can be bootstrapped.
// Checks run in a fixed order and the first failure wins:
// length mismatch, insufficient raw points, negative maturity, insufficient
// valid (non-NaN) points, duplicate maturities among valid points.
// There is no separate non-numeric check: float64 slices cannot hold
// non-numeric content, so anything unparseable upstream arrives as NaN and is
// caught by the valid-point count.
// Returns (true, "") when the data is usable.
func ValidateCurveData(maturities, yields []float64, minPoints int) (bool, string) {
	if len(maturities) != len(yields) {
		return false, "maturities and yields have different lengths"
	}

	if len(maturities) < minPoints {
		return false, fmt.Sprintf("insufficient data points (need at least %d)", minPoints)
	}

	for _, m := range maturities {
		if !math.IsNaN(m) && m < 0 {
			return false, "maturities cannot be negative"
		}
	}

	validCount := 0
	seen := make(map[float64]bool)
	duplicates := false
	for i := range maturities {
		if math.IsNaN(maturities[i]) || math.IsNaN(yields[i]) {
			continue
		}
		validCount++
		if seen[maturities[i]] {
			duplicates = true
		}
		seen[maturities[i]] = true
	}

	if validCount < minPoints {
		return false, fmt.Sprintf("insufficient valid data points (need at least %d)", minPoints)
	}

	if duplicates {
		return false, "duplicate maturities detected"
	}

	return true, ""
}
