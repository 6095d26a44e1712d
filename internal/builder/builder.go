package builder

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/bootstrap"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

// CurveStore defines the persistence operations a CurveBuilder needs.
// *database.DB satisfies it; tests use an in-memory fake.
type CurveStore interface {
	UpsertObservations(observations []*models.RawYieldObservation) (int, error)
	GetObservations(dataType string, date time.Time) ([]*models.RawYieldObservation, error)
	GetObservationDates(dataType string, start, end time.Time) ([]time.Time, error)
	UpsertCurve(c *models.CurveRecord) error
	GetCurve(curveType string, date time.Time) (*models.CurveRecord, error)
	GetCurvesInRange(curveType string, start, end time.Time) ([]*models.CurveRecord, error)
	GetLatestCurveDate(curveType string) (time.Time, error)
}

// CurveEvents publishes curve lifecycle events. *kafka.Producer satisfies it;
// a nil publisher disables publication.
type CurveEvents interface {
	PublishCurveBuilt(ctx context.Context, curveType string, curveDate time.Time, points int) error
}

// Config holds the per-family settings for a CurveBuilder
type Config struct {
	CurveType           string
	Series              map[string]string  // tenor label -> upstream series ID
	Maturities          map[string]float64 // tenor label -> maturity in years
	InterpolationMethod string
	MinDataPoints       int
	Events              CurveEvents
}

// CurveBuilder orchestrates construction, storage and retrieval of one curve
// family (treasury or corporate). All mutable state lives in the store; the
// builder itself is stateless between calls and safe for concurrent reads.
// Overlapping rebuilds of the same (curve_type, date) are serialized by the
// store's unique-key constraint, not by the builder.
type CurveBuilder struct {
	store        CurveStore
	bootstrapper *bootstrap.Bootstrapper
	curveType    string
	series       map[string]string
	maturities   map[string]float64
	minPoints    int
	events       CurveEvents
}

// New creates a CurveBuilder for one curve family
func New(store CurveStore, cfg Config) *CurveBuilder {
	minPoints := cfg.MinDataPoints
	if minPoints <= 0 {
		minPoints = 3
	}
	return &CurveBuilder{
		store:        store,
		bootstrapper: bootstrap.NewBootstrapper(cfg.InterpolationMethod),
		curveType:    cfg.CurveType,
		series:       cfg.Series,
		maturities:   cfg.Maturities,
		minPoints:    minPoints,
		events:       cfg.Events,
	}
}

// CurveType returns the curve family this builder manages
func (b *CurveBuilder) CurveType() string {
	return b.curveType
}

// StoreRawData upserts tenor-keyed observations into the raw data store.
// Observations whose tenor has no series mapping are skipped. Returns the
// number of rows an upsert was issued for (inserts + updates).
func (b *CurveBuilder) StoreRawData(observations []*models.RawYieldObservation) (int, error) {
	mapped := make([]*models.RawYieldObservation, 0, len(observations))
	for _, o := range observations {
		seriesID, ok := b.series[o.SeriesName]
		if !ok {
			continue
		}
		mapped = append(mapped, &models.RawYieldObservation{
			SeriesID:   seriesID,
			SeriesName: o.SeriesName,
			DataType:   b.curveType,
			Date:       o.Date,
			Value:      o.Value,
		})
	}

	count, err := b.store.UpsertObservations(mapped)
	if err != nil {
		return 0, fmt.Errorf("failed to store raw %s data: %w", b.curveType, err)
	}

	log.Printf("Stored %d raw %s observations", count, b.curveType)
	return count, nil
}

// BuildCurve builds the bootstrapped curve for one date. It returns (nil, nil)
// when no observations exist, validation fails, or bootstrapping fails: a
// missing curve is an expected outcome (market holiday, sparse series), never
// an escalated error. Only store failures surface as errors.
func (b *CurveBuilder) BuildCurve(date time.Time) (*models.CurveRecord, error) {
	observations, err := b.store.GetObservations(b.curveType, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	if len(observations) == 0 {
		log.Printf("No %s data found for %s", b.curveType, date.Format("2006-01-02"))
		return nil, nil
	}

	var maturities, yields []float64
	for _, o := range observations {
		maturity, ok := b.maturities[o.SeriesName]
		if !ok || o.Value == nil {
			continue
		}
		maturities = append(maturities, maturity)
		yields = append(yields, *o.Value)
	}
	sortByMaturity(maturities, yields)

	if ok, reason := bootstrap.ValidateCurveData(maturities, yields, b.minPoints); !ok {
		log.Printf("Skipping %s curve for %s: %s", b.curveType, date.Format("2006-01-02"), reason)
		return nil, nil
	}

	zeroRates, discountFactors, forwardRates, err := b.bootstrapper.BootstrapZeroCurve(maturities, yields)
	if err != nil {
		log.Printf("Failed to bootstrap %s curve for %s: %v", b.curveType, date.Format("2006-01-02"), err)
		return nil, nil
	}

	interpMaturities, interpYields, err := b.bootstrapper.InterpolateCurve(maturities, zeroRates, nil)
	if err != nil {
		log.Printf("Failed to interpolate %s curve for %s: %v", b.curveType, date.Format("2006-01-02"), err)
		return nil, nil
	}

	return &models.CurveRecord{
		CurveType:       b.curveType,
		CurveDate:       date,
		Maturities:      maturities,
		Yields:          yields,
		DiscountFactors: discountFactors,
		ForwardRates:    forwardRates,
		Metadata: &models.CurveMetadata{
			InterpolatedMaturities: interpMaturities,
			InterpolatedYields:     interpYields,
			InterpolationMethod:    b.bootstrapper.Method(),
		},
	}, nil
}

// StoreCurve upserts a curve record. A storage failure is reported as false,
// never as a thrown error; the store rolls the write back on failure. Each
// successful store publishes a curve-built event.
func (b *CurveBuilder) StoreCurve(c *models.CurveRecord) bool {
	if err := b.store.UpsertCurve(c); err != nil {
		log.Printf("Failed to store %s curve for %s: %v", c.CurveType, c.CurveDate.Format("2006-01-02"), err)
		return false
	}

	if b.events != nil {
		if err := b.events.PublishCurveBuilt(context.Background(), c.CurveType, c.CurveDate, len(c.Maturities)); err != nil {
			log.Printf("Failed to publish curve-built event for %s/%s: %v", c.CurveType, c.CurveDate.Format("2006-01-02"), err)
		}
	}
	return true
}

// BuildCurvesForDateRange builds and stores curves for every date with at least
// one observation in [start, end]. A date that yields no buildable curve counts
// as a failure and processing continues.
func (b *CurveBuilder) BuildCurvesForDateRange(start, end time.Time) (successful, failed int, err error) {
	dates, err := b.store.GetObservationDates(b.curveType, start, end)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to enumerate %s dates: %w", b.curveType, err)
	}

	for _, date := range dates {
		curve, err := b.BuildCurve(date)
		if err != nil {
			return successful, failed, err
		}
		if curve != nil && b.StoreCurve(curve) {
			successful++
		} else {
			failed++
		}
	}

	log.Printf("Built %s curves: %d successful, %d failed", b.curveType, successful, failed)
	return successful, failed, nil
}

// GetCurve retrieves the stored curve for a date. The interpolated series is
// preferred and downsampled to maxPoints when it exceeds that count
// (maxPoints <= 0 disables downsampling); the original sparse points are always
// returned alongside. Returns (nil, nil) when no curve is stored.
func (b *CurveBuilder) GetCurve(date time.Time, maxPoints int) (*models.CurveResponse, error) {
	curve, err := b.store.GetCurve(b.curveType, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load curve: %w", err)
	}
	if curve == nil {
		return nil, nil
	}
	return curveResponse(curve, maxPoints), nil
}

// GetCurveRange retrieves all stored curves for the family in [start, end]
func (b *CurveBuilder) GetCurveRange(start, end time.Time, maxPoints int) ([]*models.CurveResponse, error) {
	curves, err := b.store.GetCurvesInRange(b.curveType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load curve range: %w", err)
	}

	responses := make([]*models.CurveResponse, 0, len(curves))
	for _, c := range curves {
		responses = append(responses, curveResponse(c, maxPoints))
	}
	return responses, nil
}

func curveResponse(curve *models.CurveRecord, maxPoints int) *models.CurveResponse {
	maturities := curve.Maturities
	yields := curve.Yields
	if curve.Metadata != nil && len(curve.Metadata.InterpolatedMaturities) > 0 {
		maturities = curve.Metadata.InterpolatedMaturities
		yields = curve.Metadata.InterpolatedYields
	}

	if maxPoints > 0 && len(maturities) > maxPoints {
		maturities, yields = downsample(maturities, yields, maxPoints)
	}

	return &models.CurveResponse{
		CurveType:          curve.CurveType,
		CurveDate:          curve.CurveDate.Format("2006-01-02"),
		Maturities:         maturities,
		Yields:             yields,
		DiscountFactors:    curve.DiscountFactors,
		ForwardRates:       curve.ForwardRates,
		OriginalMaturities: curve.Maturities,
		OriginalYields:     curve.Yields,
	}
}

// GetLatestCurve retrieves the most recent stored curve for the family
func (b *CurveBuilder) GetLatestCurve() (*models.CurveResponse, error) {
	date, err := b.store.GetLatestCurveDate(b.curveType)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest curve: %w", err)
	}
	if date.IsZero() {
		return nil, nil
	}
	return b.GetCurve(date, 0)
}

// YieldAtMaturity interpolates the stored curve at an arbitrary maturity.
// The maturity must lie within the observed range of the original points.
func (b *CurveBuilder) YieldAtMaturity(date time.Time, maturity float64) (float64, error) {
	curve, err := b.store.GetCurve(b.curveType, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load curve: %w", err)
	}
	if curve == nil {
		return 0, &bootstrap.ValidationError{Reason: "no curve available for date"}
	}

	minMat := curve.Maturities[0]
	maxMat := curve.Maturities[len(curve.Maturities)-1]
	if maturity < minMat || maturity > maxMat {
		return 0, &bootstrap.ValidationError{
			Reason: fmt.Sprintf("maturity %g is outside available range [%g, %g]", maturity, minMat, maxMat),
		}
	}

	_, rates, err := b.bootstrapper.InterpolateCurve(curve.Maturities, curve.Yields, []float64{maturity})
	if err != nil {
		return 0, err
	}
	return rates[0], nil
}

// downsample selects maxPoints indices evenly spaced across the arrays via
// linear index interpolation. The first and last entries are always kept;
// small maxPoints relative to spacing can duplicate interior indices.
func downsample(maturities, yields []float64, maxPoints int) ([]float64, []float64) {
	outM := make([]float64, maxPoints)
	outY := make([]float64, maxPoints)
	if maxPoints == 1 {
		outM[0] = maturities[0]
		outY[0] = yields[0]
		return outM, outY
	}

	last := float64(len(maturities) - 1)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * last / float64(maxPoints-1))
		outM[i] = maturities[idx]
		outY[i] = yields[idx]
	}
	return outM, outY
}

// sortByMaturity sorts the pair of slices in place ascending by maturity
func sortByMaturity(maturities, yields []float64) {
	idx := make([]int, len(maturities))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return maturities[idx[i]] < maturities[idx[j]] })

	sortedM := make([]float64, len(maturities))
	sortedY := make([]float64, len(yields))
	for i, j := range idx {
		sortedM[i] = maturities[j]
		sortedY[i] = yields[j]
	}
	copy(maturities, sortedM)
	copy(yields, sortedY)
}
