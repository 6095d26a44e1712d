package models

import "time"

// Refresh log status values
const (
	RefreshStatusRunning = "running"
	RefreshStatusSuccess = "success"
	RefreshStatusPartial = "partial"
	RefreshStatusFailed  = "failed"
)

// RefreshLog records one data refresh run (scheduled or manual)
type RefreshLog struct {
	ID               int        `json:"id"`
	UpdateType       string     `json:"update_type"`
	Status           string     `json:"status"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsUpdated   int        `json:"records_updated"`
	RecordsFailed    int        `json:"records_failed"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}
