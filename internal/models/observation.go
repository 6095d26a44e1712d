package models

import "time"

// Data type constants for raw yield observations
const (
	DataTypeTreasury  = "treasury"
	DataTypeCorporate = "corporate"
)

// RawYieldObservation represents a single tenor-keyed market observation.
// Value is nil when the upstream source published no number for that date
// (market holiday, series gap). Observations are unique on (series_id, date).
type RawYieldObservation struct {
	ID         int       `json:"id"`
	SeriesID   string    `json:"series_id"`
	SeriesName string    `json:"series_name"`
	DataType   string    `json:"data_type"`
	Date       time.Time `json:"date"`
	Value      *float64  `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ObservationEvent represents a Kafka event carrying one market observation.
// Value rides as a decimal string; an empty string means the value is missing.
type ObservationEvent struct {
	EventType string               `json:"event_type"`
	Source    string               `json:"source"`
	Data      ObservationEventData `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
}

// ObservationEventData is the payload of an ObservationEvent
type ObservationEventData struct {
	SeriesID   string `json:"series_id"`
	SeriesName string `json:"series_name"`
	DataType   string `json:"data_type"`
	Date       string `json:"date"`
	Value      string `json:"value"`
}
