// Package events delivers booking events produced by the bookings service.
package events

import (
	"context"
	"fmt"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
)

const (
	Source        = "bookings"
	SchemaVersion = "1"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes events to the booking events topic, keyed by booking
// id so every change to a booking lands on the same partition.
type KafkaPublisher struct {
	producer producer
}

func NewKafkaPublisher(p *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NewMessage encodes an event with the standard headers.
func NewMessage(ctx context.Context, event *model.BookingEvent) (kafka.Message, error) {
	msg, err := kafka.NewMessage(event.BookingID, event.Type, event,
		kafka.WithSchemaVersion(SchemaVersion),
		kafka.WithSource(Source),
		kafka.WithCorrelationID(middleware.RequestIDFrom(ctx)),
	)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	return msg, nil
}

// LogPublisher is used when the broker is disabled. Events are only logged.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	p.log.Info("Booking event",
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"user_id", event.UserID,
		"hotel", event.HotelName,
		"check_in", event.CheckInDate,
		"check_out", event.CheckOutDate,
		"total_price", event.TotalPrice,
	)
	return nil
}
