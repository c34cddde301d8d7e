package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
)

// Booking is a reservation of one room over an inclusive range of calendar dates.
// IsActive is the soft-delete marker: only active bookings occupy their room.
type Booking struct {
	ID          int           `json:"id"`
	CustomerID  int           `json:"customer_id"`
	RoomID      int           `json:"room_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	IsActive    bool          `json:"is_active"`
	IsCheckedIn bool          `json:"is_checked_in"`
	Status      BookingStatus `json:"status"`
}

func NewBooking(customerID int, startDate, endDate time.Time) *Booking {
	return &Booking{
		CustomerID: customerID,
		StartDate:  DateOf(startDate),
		EndDate:    DateOf(endDate),
		IsActive:   true,
		Status:     BookingPending,
	}
}

func (b *Booking) Identifier() *int {
	return &b.ID
}

// State returns the lifecycle state. Rows written before Status existed carry
// only the two flags, so the state is derived from them.
func (b *Booking) State() BookingStatus {
	if b.Status != "" {
		return b.Status
	}

	switch {
	case !b.IsActive:
		return BookingCancelled
	case b.IsCheckedIn:
		return BookingCheckedIn
	default:
		return BookingPending
	}
}

// Covers reports whether this booking occupies its room on day.
func (b *Booking) Covers(day time.Time) bool {
	return b.IsActive && !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// OverlapsRange reports whether this booking occupies its room on any day of [start, end].
func (b *Booking) OverlapsRange(start, end time.Time) bool {
	return b.IsActive && Overlaps(b.StartDate, b.EndDate, start, end)
}
