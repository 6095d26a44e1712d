package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

// Producer handles publishing curve events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishCurveBuilt publishes an event after a curve is built and stored
func (p *Producer) PublishCurveBuilt(ctx context.Context, curveType string, curveDate time.Time, points int) error {
	event := models.CurveEvent{
		EventType: "CURVE_BUILT",
		CurveType: curveType,
		CurveDate: curveDate.Format("2006-01-02"),
		Points:    points,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, curveType+":"+event.CurveDate, event)
}

// PublishRefreshCompleted publishes an event after a refresh run finishes
func (p *Producer) PublishRefreshCompleted(ctx context.Context, curveType string, successful, failed int) error {
	event := models.CurveEvent{
		EventType:  "REFRESH_COMPLETED",
		CurveType:  curveType,
		Successful: successful,
		Failed:     failed,
		Timestamp:  time.Now(),
	}
	return p.publish(ctx, curveType, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.CurveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
