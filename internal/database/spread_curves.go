package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// UpsertSpreadCurve inserts or updates a spread curve keyed by (rating, curve_date)
func (db *DB) UpsertSpreadCurve(s *models.SpreadCurveRecord) error {
	maturities, err := json.Marshal(s.Maturities)
	if err != nil {
		return fmt.Errorf("failed to marshal maturities: %w", err)
	}
	spreads, err := json.Marshal(s.Spreads)
	if err != nil {
		return fmt.Errorf("failed to marshal spreads: %w", err)
	}
	yields, err := json.Marshal(s.Yields)
	if err != nil {
		return fmt.Errorf("failed to marshal yields: %w", err)
	}
	treasuryYields, err := json.Marshal(s.TreasuryYields)
	if err != nil {
		return fmt.Errorf("failed to marshal treasury yields: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO corporate_spread_curves (rating, curve_date, maturities, spreads, yields, treasury_yields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rating, curve_date) DO UPDATE SET
			maturities = EXCLUDED.maturities,
			spreads = EXCLUDED.spreads,
			yields = EXCLUDED.yields,
			treasury_yields = EXCLUDED.treasury_yields
		RETURNING id
	`
	err = tx.QueryRow(query,
		s.Rating, s.CurveDate, maturities, spreads, yields, treasuryYields, time.Now(),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert spread curve: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSpreadCurve retrieves the spread curve for a rating and date. Returns
// (nil, nil) when no curve is stored for that key.
func (db *DB) GetSpreadCurve(rating string, date time.Time) (*models.SpreadCurveRecord, error) {
	query := `
		SELECT id, rating, curve_date, maturities, spreads, yields, treasury_yields, created_at
		FROM corporate_spread_curves
		WHERE rating = $1 AND curve_date = $2
	`
	var s models.SpreadCurveRecord
	var maturities, spreads, yields, treasuryYields []byte

	err := db.conn.QueryRow(query, rating, date).Scan(
		&s.ID, &s.Rating, &s.CurveDate, &maturities, &spreads, &yields, &treasuryYields, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spread curve: %w", err)
	}

	for _, field := range []struct {
		raw []byte
		dst *[]float64
	}{
		{maturities, &s.Maturities},
		{spreads, &s.Spreads},
		{yields, &s.Yields},
		{treasuryYields, &s.TreasuryYields},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal spread curve arrays: %w", err)
		}
	}
	return &s, nil
}

// GetLatestSpreadCurveDate returns the most recent date with a stored spread
// curve for the rating. The zero time is returned when none exists.
func (db *DB) GetLatestSpreadCurveDate(rating string) (time.Time, error) {
	query := `
		SELECT curve_date
		FROM corporate_spread_curves
		WHERE rating = $1
		ORDER BY curve_date DESC
		LIMIT 1
	`
	var date time.Time
	err := db.conn.QueryRow(query, rating).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest spread curve date: %w", err)
	}
	return date, nil
}
