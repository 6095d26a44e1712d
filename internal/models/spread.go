package models

import "time"

// SpreadCurveRecord is a corporate credit-spread curve over treasuries, unique on
// (rating, curve_date). Maturities are the corporate curve's own maturities; Spreads
// are in basis points; Yields are the absolute corporate yields and TreasuryYields the
// treasury zero rates interpolated onto the same maturities.
type SpreadCurveRecord struct {
	ID             int       `json:"id"`
	Rating         string    `json:"rating"`
	CurveDate      time.Time `json:"curve_date"`
	Maturities     []float64 `json:"maturities"`
	Spreads        []float64 `json:"spreads"`
	Yields         []float64 `json:"yields"`
	TreasuryYields []float64 `json:"treasury_yields"`
	CreatedAt      time.Time `json:"created_at"`
}

// SpreadCurveResponse is the retrieval shape for spread curves
type SpreadCurveResponse struct {
	Rating         string    `json:"rating"`
	CurveDate      string    `json:"curve_date"`
	Maturities     []float64 `json:"maturities"`
	Spreads        []float64 `json:"spreads"`
	Yields         []float64 `json:"yields"`
	TreasuryYields []float64 `json:"treasury_yields"`
}
