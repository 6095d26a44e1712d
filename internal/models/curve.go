package models

import "time"

// CurveMetadata holds the interpolated dense series stored alongside a curve
type CurveMetadata struct {
	InterpolatedMaturities []float64 `json:"interpolated_maturities,omitempty"`
	InterpolatedYields     []float64 `json:"interpolated_yields,omitempty"`
	InterpolationMethod    string    `json:"interpolation_method,omitempty"`
}

// CurveRecord is a persisted bootstrapped curve, unique on (curve_type, curve_date).
// Maturities and Yields are the original sparse observations; DiscountFactors and
// ForwardRates are parallel to them. The dense interpolated series lives in Metadata.
type CurveRecord struct {
	ID              int            `json:"id"`
	CurveType       string         `json:"curve_type"`
	CurveDate       time.Time      `json:"curve_date"`
	Maturities      []float64      `json:"maturities"`
	Yields          []float64      `json:"yields"`
	DiscountFactors []float64      `json:"discount_factors,omitempty"`
	ForwardRates    []float64      `json:"forward_rates,omitempty"`
	Metadata        *CurveMetadata `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// CurveResponse is the retrieval shape served to callers. Maturities/Yields are the
// interpolated series when one was stored (possibly downsampled), otherwise the
// original sparse points. OriginalMaturities/OriginalYields always carry the sparse
// observations unmodified.
type CurveResponse struct {
	CurveType          string    `json:"curve_type"`
	CurveDate          string    `json:"curve_date"`
	Maturities         []float64 `json:"maturities"`
	Yields             []float64 `json:"yields"`
	DiscountFactors    []float64 `json:"discount_factors,omitempty"`
	ForwardRates       []float64 `json:"forward_rates,omitempty"`
	OriginalMaturities []float64 `json:"original_maturities"`
	OriginalYields     []float64 `json:"original_yields"`
}

// CurveEvent represents a Kafka event published after curve construction
type CurveEvent struct {
	EventType  string    `json:"event_type"`
	CurveType  string    `json:"curve_type"`
	CurveDate  string    `json:"curve_date,omitempty"`
	Points     int       `json:"points,omitempty"`
	Successful int       `json:"successful,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
