package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated    EventType = "booking.created"
	EventBookingModified   EventType = "booking.modified"
	EventBookingCancelled  EventType = "booking.cancelled"
	EventBookingCheckedIn  EventType = "booking.checked_in"
	EventBookingCheckedOut EventType = "booking.checked_out"
)

// BookingEvent is published after a booking change has been persisted.
type BookingEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Booking    Booking   `json:"booking"`
}

func NewBookingEvent(eventType EventType, booking Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at,
		Booking:    booking,
	}
}
