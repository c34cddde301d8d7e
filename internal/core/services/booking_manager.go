package services

import (
	"context"
	"time"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// BookingManager decides room availability and arbitrates booking creation over
// the room and booking stores. It holds no state between calls and takes no
// locks: two concurrent CreateBooking calls can both see the same room as free.
// Callers that need mutual exclusion go through BookingService.
type BookingManager struct {
	bookingRepo ports.BookingRepository
	roomRepo    ports.RoomRepository
	clock       ports.Clock
}

func NewBookingManager(bookingRepo ports.BookingRepository, roomRepo ports.RoomRepository, clock ports.Clock) *BookingManager {
	return &BookingManager{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		clock:       clock,
	}
}

// FindAvailableRoom returns the first room, in store order, without an active
// booking overlapping [startDate, endDate], or domain.NoRoom. startDate must be
// after today and not after endDate.
func (m *BookingManager) FindAvailableRoom(ctx context.Context, startDate, endDate time.Time) (int, error) {
	return m.findAvailableRoom(ctx, startDate, endDate, nil)
}

func (m *BookingManager) findAvailableRoom(ctx context.Context, startDate, endDate time.Time, ignore func(*domain.Booking) bool) (int, error) {
	start, end := domain.DateOf(startDate), domain.DateOf(endDate)
	today := domain.DateOf(m.clock.Now())

	if !start.After(today) || start.After(end) {
		return domain.NoRoom, domain.ErrInvalidRange
	}

	bookings, err := m.bookingRepo.GetAll(ctx)
	if err != nil {
		return domain.NoRoom, err
	}

	rooms, err := m.roomRepo.GetAll(ctx)
	if err != nil {
		return domain.NoRoom, err
	}

	busy := make(map[int]bool)
	for i := range bookings {
		b := &bookings[i]
		if ignore != nil && ignore(b) {
			continue
		}

		if b.OverlapsRange(start, end) {
			busy[b.RoomID] = true
		}
	}

	for _, room := range rooms {
		if !busy[room.ID] {
			return room.ID, nil
		}
	}

	return domain.NoRoom, nil
}

// GetFullyOccupiedDates returns, ascending, every date in [startDate, endDate]
// on which each known room has an active booking. With no rooms nothing is
// fully occupied. A reversed range yields no dates.
func (m *BookingManager) GetFullyOccupiedDates(ctx context.Context, startDate, endDate time.Time) ([]time.Time, error) {
	start, end := domain.DateOf(startDate), domain.DateOf(endDate)

	bookings, err := m.bookingRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rooms, err := m.roomRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	fullyOccupied := []time.Time{}

	known := make(map[int]struct{}, len(rooms))
	for _, room := range rooms {
		known[room.ID] = struct{}{}
	}

	if len(known) == 0 || start.After(end) {
		return fullyOccupied, nil
	}

	var relevant []domain.Booking
	for _, b := range bookings {
		if _, ok := known[b.RoomID]; ok && b.OverlapsRange(start, end) {
			relevant = append(relevant, b)
		}
	}

	domain.EachDate(start, end, func(day time.Time) {
		occupied := make(map[int]struct{}, len(known))
		for i := range relevant {
			if relevant[i].Covers(day) {
				occupied[relevant[i].RoomID] = struct{}{}
			}
		}

		if len(occupied) == len(known) {
			fullyOccupied = append(fullyOccupied, day)
		}
	})

	return fullyOccupied, nil
}

// CreateBooking allocates a room for booking's date range and stores it.
// A booking that already has an id is an existing one with changed dates and
// goes through ModifyBooking. It returns false without writing when no room is free.
func (m *BookingManager) CreateBooking(ctx context.Context, booking *domain.Booking) (bool, error) {
	if booking.ID != 0 {
		return m.ModifyBooking(ctx, booking)
	}

	roomID, err := m.FindAvailableRoom(ctx, booking.StartDate, booking.EndDate)
	if err != nil {
		return false, err
	}

	if roomID == domain.NoRoom {
		return false, nil
	}

	booking.RoomID = roomID
	booking.StartDate = domain.DateOf(booking.StartDate)
	booking.EndDate = domain.DateOf(booking.EndDate)
	booking.IsActive = true
	booking.IsCheckedIn = false
	booking.Status = domain.BookingPending

	if err := m.bookingRepo.Add(ctx, booking); err != nil {
		return false, err
	}

	return true, nil
}

// ModifyBooking re-allocates an existing booking for its (changed) date range,
// ignoring the booking's own current reservation, and edits it in place.
func (m *BookingManager) ModifyBooking(ctx context.Context, booking *domain.Booking) (bool, error) {
	roomID, err := m.findAvailableRoom(ctx, booking.StartDate, booking.EndDate, func(b *domain.Booking) bool {
		return b.ID == booking.ID
	})
	if err != nil {
		return false, err
	}

	if roomID == domain.NoRoom {
		return false, nil
	}

	booking.RoomID = roomID
	booking.StartDate = domain.DateOf(booking.StartDate)
	booking.EndDate = domain.DateOf(booking.EndDate)

	if err := m.bookingRepo.Edit(ctx, booking); err != nil {
		return false, err
	}

	return true, nil
}
