package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

func Encode(event domain.BookingEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	return data, nil
}

func Decode(data []byte) (domain.BookingEvent, error) {
	var event domain.BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.BookingEvent{}, fmt.Errorf("failed to decode event: %w", err)
	}

	return event, nil
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{log: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.BookingEvent) error {
	p.log.Info("booking event",
		"event_id", event.ID,
		"type", event.Type,
		"booking_id", event.Booking.ID,
		"room_id", event.Booking.RoomID,
		"status", event.Booking.Status,
	)

	return nil
}

func (p *LogPublisher) Close() error { return nil }
