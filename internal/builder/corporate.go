package builder

import (
	"fmt"
	"log"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// SpreadStore extends CurveStore with spread-curve persistence
type SpreadStore interface {
	CurveStore
	UpsertSpreadCurve(s *models.SpreadCurveRecord) error
	GetSpreadCurve(rating string, date time.Time) (*models.SpreadCurveRecord, error)
	GetLatestSpreadCurveDate(rating string) (time.Time, error)
}

// CorporateCurveBuilder builds corporate curves and derives credit-spread
// curves against the treasury curve of the same date.
type CorporateCurveBuilder struct {
	*CurveBuilder
	spreadStore SpreadStore
}

// NewCorporate creates a corporate curve builder. cfg.CurveType is forced to
// the corporate family.
func NewCorporate(store SpreadStore, cfg Config) *CorporateCurveBuilder {
	cfg.CurveType = models.DataTypeCorporate
	return &CorporateCurveBuilder{
		CurveBuilder: New(store, cfg),
		spreadStore:  store,
	}
}

// BuildSpreadCurve computes the credit-spread curve for a rating and date:
// treasury zero rates are interpolated onto the corporate curve's own
// maturities and subtracted from the corporate yields. Returns (nil, nil) when
// either side's curve is absent.
func (b *CorporateCurveBuilder) BuildSpreadCurve(rating string, date time.Time) (*models.SpreadCurveRecord, error) {
	corporate, err := b.spreadStore.GetCurve(models.DataTypeCorporate, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load corporate curve: %w", err)
	}
	if corporate == nil {
		return nil, nil
	}

	treasury, err := b.spreadStore.GetCurve(models.DataTypeTreasury, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load treasury curve: %w", err)
	}
	if treasury == nil {
		return nil, nil
	}

	_, treasuryYields, err := b.bootstrapper.InterpolateCurve(treasury.Maturities, treasury.Yields, corporate.Maturities)
	if err != nil {
		log.Printf("Failed to interpolate treasury curve onto corporate maturities for %s: %v", date.Format("2006-01-02"), err)
		return nil, nil
	}

	spreads, err := b.bootstrapper.CalculateSpreads(corporate.Yields, treasuryYields)
	if err != nil {
		log.Printf("Failed to calculate spreads for %s/%s: %v", rating, date.Format("2006-01-02"), err)
		return nil, nil
	}

	spreadsBps := make([]float64, len(spreads))
	for i, s := range spreads {
		spreadsBps[i] = s * 100
	}

	return &models.SpreadCurveRecord{
		Rating:         rating,
		CurveDate:      date,
		Maturities:     corporate.Maturities,
		Spreads:        spreadsBps,
		Yields:         corporate.Yields,
		TreasuryYields: treasuryYields,
	}, nil
}

// StoreSpreadCurve upserts a spread curve record, reporting failure as false
func (b *CorporateCurveBuilder) StoreSpreadCurve(s *models.SpreadCurveRecord) bool {
	if err := b.spreadStore.UpsertSpreadCurve(s); err != nil {
		log.Printf("Failed to store spread curve %s/%s: %v", s.Rating, s.CurveDate.Format("2006-01-02"), err)
		return false
	}
	return true
}

// BuildSpreadCurvesForDate builds and stores spread curves for every configured
// rating on one date, returning the number stored.
func (b *CorporateCurveBuilder) BuildSpreadCurvesForDate(ratings []string, date time.Time) (int, error) {
	stored := 0
	for _, rating := range ratings {
		spread, err := b.BuildSpreadCurve(rating, date)
		if err != nil {
			return stored, err
		}
		if spread != nil && b.StoreSpreadCurve(spread) {
			stored++
		}
	}
	return stored, nil
}

// GetSpreadCurve serves the stored spread curve for a rating and date, falling
// back to recomputation from the stored treasury and corporate curves when no
// record exists. Returns (nil, nil) when neither is available.
func (b *CorporateCurveBuilder) GetSpreadCurve(rating string, date time.Time) (*models.SpreadCurveResponse, error) {
	stored, err := b.spreadStore.GetSpreadCurve(rating, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load spread curve: %w", err)
	}
	if stored != nil {
		return spreadResponse(stored), nil
	}

	spread, err := b.BuildSpreadCurve(rating, date)
	if err != nil || spread == nil {
		return nil, err
	}
	return spreadResponse(spread), nil
}

// GetLatestSpreadCurve retrieves the spread curve for the most recent date a
// spread curve was stored for the rating.
func (b *CorporateCurveBuilder) GetLatestSpreadCurve(rating string) (*models.SpreadCurveResponse, error) {
	date, err := b.spreadStore.GetLatestSpreadCurveDate(rating)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest spread curve: %w", err)
	}
	if date.IsZero() {
		return nil, nil
	}
	return b.GetSpreadCurve(rating, date)
}

func spreadResponse(s *models.SpreadCurveRecord) *models.SpreadCurveResponse {
	return &models.SpreadCurveResponse{
		Rating:         s.Rating,
		CurveDate:      s.CurveDate.Format("2006-01-02"),
		Maturities:     s.Maturities,
		Spreads:        s.Spreads,
		Yields:         s.Yields,
		TreasuryYields: s.TreasuryYields,
	}
}
