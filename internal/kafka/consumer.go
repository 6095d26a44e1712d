package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

// ObservationSink receives parsed observations for one curve family
type ObservationSink interface {
	StoreRawData(observations []*models.RawYieldObservation) (int, error)
}

// Consumer handles consuming yield observation events from Kafka. Events carry
// one tenor-keyed observation each; upserts are idempotent on (series, date),
// so redelivery is harmless.
type Consumer struct {
	reader *kafka.Reader
	sinks  map[string]ObservationSink // data_type -> sink
}

// NewConsumer creates a Kafka consumer for observation events. sinks maps data
// types (treasury, corporate) to the builder that stores their observations.
func NewConsumer(brokers []string, topic, groupID string, sinks map[string]ObservationSink) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		sinks:  sinks,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.ObservationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal observation event: %w", err)
	}

	if event.EventType != "OBSERVATION_UPSERT" {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	sink, ok := c.sinks[event.Data.DataType]
	if !ok {
		log.Printf("Ignoring observation with unknown data type: %s", event.Data.DataType)
		return nil
	}

	observation, err := c.convertEventToObservation(event)
	if err != nil {
		return fmt.Errorf("failed to convert observation event: %w", err)
	}

	if _, err := sink.StoreRawData([]*models.RawYieldObservation{observation}); err != nil {
		return fmt.Errorf("failed to store observation: %w", err)
	}

	return nil
}

// convertEventToObservation maps an ObservationEvent to a RawYieldObservation.
// An empty value string means the observation is missing for that date.
func (c *Consumer) convertEventToObservation(event models.ObservationEvent) (*models.RawYieldObservation, error) {
	data := event.Data

	date, err := time.Parse("2006-01-02", data.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid observation date %s: %w", data.Date, err)
	}

	var value *float64
	if data.Value != "" {
		d, err := decimal.NewFromString(data.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid observation value %s: %w", data.Value, err)
		}
		v, _ := d.Float64()
		value = &v
	}

	return &models.RawYieldObservation{
		SeriesID:   data.SeriesID,
		SeriesName: data.SeriesName,
		DataType:   data.DataType,
		Date:       date,
		Value:      value,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
