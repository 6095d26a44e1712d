package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

func TestCurveRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	newCurve := func(curveType string, curveDate time.Time) *models.CurveRecord {
		return &models.CurveRecord{
			CurveType:       curveType,
			CurveDate:       curveDate,
			Maturities:      []float64{1, 2, 5, 10},
			Yields:          []float64{4.8, 4.7, 4.5, 4.25},
			DiscountFactors: []float64{0.9531, 0.9103, 0.7985, 0.6538},
			ForwardRates:    []float64{4.8, 4.6, 4.3667, 4.0},
			Metadata: &models.CurveMetadata{
				InterpolatedMaturities: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
				InterpolatedYields:     []float64{4.8, 4.7, 4.63, 4.57, 4.5, 4.45, 4.4, 4.35, 4.3, 4.25},
				InterpolationMethod:    "cubic",
			},
		}
	}

	t.Run("UpsertCurve creates new record", func(t *testing.T) {
		testDB.TruncateAll(t)

		curve := newCurve(models.DataTypeTreasury, date)
		err := testDB.UpsertCurve(curve)
		require.NoError(t, err)
		assert.NotZero(t, curve.ID)
	})

	t.Run("UpsertCurve replaces on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)

		curve := newCurve(models.DataTypeTreasury, date)
		require.NoError(t, testDB.UpsertCurve(curve))
		firstID := curve.ID

		updated := newCurve(models.DataTypeTreasury, date)
		updated.Yields = []float64{4.9, 4.8, 4.6, 4.35}
		require.NoError(t, testDB.UpsertCurve(updated))
		assert.Equal(t, firstID, updated.ID, "upsert should update in place")

		retrieved, err := testDB.GetCurve(models.DataTypeTreasury, date)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, []float64{4.9, 4.8, 4.6, 4.35}, retrieved.Yields)
	})

	t.Run("GetCurve round-trips all arrays", func(t *testing.T) {
		testDB.TruncateAll(t)

		curve := newCurve(models.DataTypeTreasury, date)
		require.NoError(t, testDB.UpsertCurve(curve))

		retrieved, err := testDB.GetCurve(models.DataTypeTreasury, date)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, curve.Maturities, retrieved.Maturities)
		assert.Equal(t, curve.Yields, retrieved.Yields)
		assert.Equal(t, curve.DiscountFactors, retrieved.DiscountFactors)
		assert.Equal(t, curve.ForwardRates, retrieved.ForwardRates)
		require.NotNil(t, retrieved.Metadata)
		assert.Equal(t, "cubic", retrieved.Metadata.InterpolationMethod)
		assert.Equal(t, curve.Metadata.InterpolatedYields, retrieved.Metadata.InterpolatedYields)
	})

	t.Run("GetCurve returns nil when absent", func(t *testing.T) {
		testDB.TruncateAll(t)

		retrieved, err := testDB.GetCurve(models.DataTypeTreasury, date)
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("GetCurve distinguishes curve types", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertCurve(newCurve(models.DataTypeTreasury, date)))

		corporate := newCurve(models.DataTypeCorporate, date)
		corporate.Yields = []float64{5.5, 5.4, 5.2, 5.0}
		require.NoError(t, testDB.UpsertCurve(corporate))

		retrieved, err := testDB.GetCurve(models.DataTypeCorporate, date)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, []float64{5.5, 5.4, 5.2, 5.0}, retrieved.Yields)
	})

	t.Run("GetCurvesInRange returns curves ordered by date", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 5; i++ {
			d := time.Date(2024, 1, 15+i, 0, 0, 0, 0, time.UTC)
			require.NoError(t, testDB.UpsertCurve(newCurve(models.DataTypeTreasury, d)))
		}

		start := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
		curves, err := testDB.GetCurvesInRange(models.DataTypeTreasury, start, end)
		require.NoError(t, err)
		require.Len(t, curves, 3)
		assert.Equal(t, 16, curves[0].CurveDate.Day())
		assert.Equal(t, 18, curves[2].CurveDate.Day())
	})

	t.Run("GetLatestCurveDate returns most recent date", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, day := range []int{15, 17, 16} {
			d := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
			require.NoError(t, testDB.UpsertCurve(newCurve(models.DataTypeTreasury, d)))
		}

		latest, err := testDB.GetLatestCurveDate(models.DataTypeTreasury)
		require.NoError(t, err)
		assert.Equal(t, 17, latest.Day())
	})

	t.Run("GetLatestCurveDate returns zero time when empty", func(t *testing.T) {
		testDB.TruncateAll(t)

		latest, err := testDB.GetLatestCurveDate(models.DataTypeTreasury)
		require.NoError(t, err)
		assert.True(t, latest.IsZero())
	})

	t.Run("optional arrays survive as nil", func(t *testing.T) {
		testDB.TruncateAll(t)

		curve := &models.CurveRecord{
			CurveType:  models.DataTypeTreasury,
			CurveDate:  date,
			Maturities: []float64{1, 2, 5},
			Yields:     []float64{4.8, 4.7, 4.5},
		}
		require.NoError(t, testDB.UpsertCurve(curve))

		retrieved, err := testDB.GetCurve(models.DataTypeTreasury, date)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Nil(t, retrieved.DiscountFactors)
		assert.Nil(t, retrieved.ForwardRates)
		assert.Nil(t, retrieved.Metadata)
	})
}
