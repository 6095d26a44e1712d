package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// UpsertObservation inserts or updates a single raw yield observation keyed by
// (series_id, date). A nil incoming value never overwrites a stored value: the
// conflict branch is skipped entirely when the new value is null, so re-ingesting
// a gap cannot erase a revision that already landed.
func (db *DB) UpsertObservation(o *models.RawYieldObservation) error {
	query := `
		INSERT INTO raw_yield_data (series_id, series_name, data_type, date, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (series_id, date) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		WHERE EXCLUDED.value IS NOT NULL
	`
	var value sql.NullFloat64
	if o.Value != nil {
		value = sql.NullFloat64{Float64: *o.Value, Valid: true}
	}

	_, err := db.conn.Exec(query,
		o.SeriesID, o.SeriesName, o.DataType, o.Date, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert observation %s/%s: %w", o.SeriesID, o.Date.Format("2006-01-02"), err)
	}
	return nil
}

// UpsertObservations upserts a batch of observations in one transaction and
// returns the number of rows an upsert was issued for (inserts + updates).
func (db *DB) UpsertObservations(observations []*models.RawYieldObservation) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO raw_yield_data (series_id, series_name, data_type, date, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (series_id, date) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		WHERE EXCLUDED.value IS NOT NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	count := 0
	for _, o := range observations {
		var value sql.NullFloat64
		if o.Value != nil {
			value = sql.NullFloat64{Float64: *o.Value, Valid: true}
		}
		if _, err := stmt.Exec(o.SeriesID, o.SeriesName, o.DataType, o.Date, value, now); err != nil {
			return 0, fmt.Errorf("failed to upsert observation for %s: %w", o.SeriesID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

// GetObservations retrieves all observations of one data type for a date
func (db *DB) GetObservations(dataType string, date time.Time) ([]*models.RawYieldObservation, error) {
	query := `
		SELECT id, series_id, series_name, data_type, date, value, created_at, updated_at
		FROM raw_yield_data
		WHERE data_type = $1 AND date = $2
		ORDER BY series_id
	`
	rows, err := db.conn.Query(query, dataType, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}
	defer rows.Close()

	var observations []*models.RawYieldObservation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// GetObservationDates returns the distinct dates with at least one observation
// of the given data type in [start, end], ascending.
func (db *DB) GetObservationDates(dataType string, start, end time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date
		FROM raw_yield_data
		WHERE data_type = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, dataType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get observation dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan observation date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scanObservation(rows *sql.Rows) (*models.RawYieldObservation, error) {
	var o models.RawYieldObservation
	var value sql.NullFloat64

	err := rows.Scan(&o.ID, &o.SeriesID, &o.SeriesName, &o.DataType, &o.Date, &value, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan observation: %w", err)
	}

	if value.Valid {
		v := value.Float64
		o.Value = &v
	}
	return &o, nil
}
