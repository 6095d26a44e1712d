package database

import (
	"fmt"
	"time"

	"github.com/trogers1052/bond-curve-service/internal/models"
)

// CreateRefreshLog inserts a new refresh log entry and sets its ID
func (db *DB) CreateRefreshLog(l *models.RefreshLog) error {
	query := `
		INSERT INTO refresh_log (update_type, status, start_time, records_processed, records_updated, records_failed, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		l.UpdateType, l.Status, l.StartTime, l.RecordsProcessed, l.RecordsUpdated, l.RecordsFailed, l.ErrorMessage,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to create refresh log: %w", err)
	}
	return nil
}

// FinishRefreshLog records the outcome of a refresh run
func (db *DB) FinishRefreshLog(l *models.RefreshLog) error {
	now := time.Now()
	l.EndTime = &now

	query := `
		UPDATE refresh_log
		SET status = $1, end_time = $2, records_processed = $3, records_updated = $4, records_failed = $5, error_message = $6
		WHERE id = $7
	`
	result, err := db.conn.Exec(query,
		l.Status, l.EndTime, l.RecordsProcessed, l.RecordsUpdated, l.RecordsFailed, l.ErrorMessage, l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish refresh log: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("refresh log not found: %d", l.ID)
	}
	return nil
}
