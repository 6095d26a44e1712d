package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// UpsertCurve inserts or updates a bootstrapped curve keyed by
// (curve_type, curve_date). The write runs in a transaction; a failure rolls
// back and leaves any existing record untouched.
func (db *DB) UpsertCurve(c *models.CurveRecord) error {
	maturities, err := json.Marshal(c.Maturities)
	if err != nil {
		return fmt.Errorf("failed to marshal maturities: %w", err)
	}
	yields, err := json.Marshal(c.Yields)
	if err != nil {
		return fmt.Errorf("failed to marshal yields: %w", err)
	}
	discountFactors, err := marshalOptional(c.DiscountFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal discount factors: %w", err)
	}
	forwardRates, err := marshalOptional(c.ForwardRates)
	if err != nil {
		return fmt.Errorf("failed to marshal forward rates: %w", err)
	}
	var metadata []byte
	if c.Metadata != nil {
		metadata, err = json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal curve metadata: %w", err)
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bootstrapped_curves (curve_type, curve_date, maturities, yields, discount_factors, forward_rates, curve_metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (curve_type, curve_date) DO UPDATE SET
			maturities = EXCLUDED.maturities,
			yields = EXCLUDED.yields,
			discount_factors = EXCLUDED.discount_factors,
			forward_rates = EXCLUDED.forward_rates,
			curve_metadata = EXCLUDED.curve_metadata
		RETURNING id
	`
	err = tx.QueryRow(query,
		c.CurveType, c.CurveDate, maturities, yields, discountFactors, forwardRates, metadata, time.Now(),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert curve: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCurve retrieves the curve for a type and date. Returns (nil, nil) when no
// curve is stored for that key.
func (db *DB) GetCurve(curveType string, date time.Time) (*models.CurveRecord, error) {
	query := `
		SELECT id, curve_type, curve_date, maturities, yields, discount_factors, forward_rates, curve_metadata, created_at
		FROM bootstrapped_curves
		WHERE curve_type = $1 AND curve_date = $2
	`
	c, err := scanCurve(db.conn.QueryRow(query, curveType, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get curve: %w", err)
	}
	return c, nil
}

// GetCurvesInRange retrieves all curves of a type within [start, end], ascending
func (db *DB) GetCurvesInRange(curveType string, start, end time.Time) ([]*models.CurveRecord, error) {
	query := `
		SELECT id, curve_type, curve_date, maturities, yields, discount_factors, forward_rates, curve_metadata, created_at
		FROM bootstrapped_curves
		WHERE curve_type = $1 AND curve_date >= $2 AND curve_date <= $3
		ORDER BY curve_date ASC
	`
	rows, err := db.conn.Query(query, curveType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get curves in range: %w", err)
	}
	defer rows.Close()

	var curves []*models.CurveRecord
	for rows.Next() {
		c, err := scanCurve(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curve: %w", err)
		}
		curves = append(curves, c)
	}
	return curves, rows.Err()
}

// GetLatestCurveDate returns the most recent date with a stored curve of the
// given type. The zero time is returned when no curve exists.
func (db *DB) GetLatestCurveDate(curveType string) (time.Time, error) {
	query := `
		SELECT curve_date
		FROM bootstrapped_curves
		WHERE curve_type = $1
		ORDER BY curve_date DESC
		LIMIT 1
	`
	var date time.Time
	err := db.conn.QueryRow(query, curveType).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest curve date: %w", err)
	}
	return date, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCurve(row rowScanner) (*models.CurveRecord, error) {
	var c models.CurveRecord
	var maturities, yields []byte
	var discountFactors, forwardRates, metadata []byte

	err := row.Scan(&c.ID, &c.CurveType, &c.CurveDate, &maturities, &yields, &discountFactors, &forwardRates, &metadata, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(maturities, &c.Maturities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal maturities: %w", err)
	}
	if err := json.Unmarshal(yields, &c.Yields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yields: %w", err)
	}
	if discountFactors != nil {
		if err := json.Unmarshal(discountFactors, &c.DiscountFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal discount factors: %w", err)
		}
	}
	if forwardRates != nil {
		if err := json.Unmarshal(forwardRates, &c.ForwardRates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal forward rates: %w", err)
		}
	}
	if metadata != nil {
		c.Metadata = &models.CurveMetadata{}
		if err := json.Unmarshal(metadata, c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal curve metadata: %w", err)
		}
	}
	return &c, nil
}

func marshalOptional(v []float64) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
