package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

func TestScenario_GuestStaysAndLeaves(t *testing.T) {
	clock := clockAt(9)
	svc, _ := newService(t, serviceDeps{rooms: 1, clock: clock})
	ctx := context.Background()

	booking, err := svc.Book(ctx, bookReq(1, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, booking.State())

	_, err = svc.Book(ctx, bookReq(2, 2, 3))
	assert.ErrorIs(t, err, domain.ErrNoRoomAvailable)

	clock.now = day(1).Add(14 * time.Hour)

	booking, err = svc.CheckIn(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, booking.State())

	dates, err := svc.OccupiedDates(ctx, day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(1), day(2)}, dates)

	n, err := svc.ProcessNoShows(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.now = day(2).Add(11 * time.Hour)

	booking, err = svc.CheckOut(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedOut, booking.State())
}

func TestScenario_NoShowFreesTheRoom(t *testing.T) {
	clock := clockAt(9)
	svc, _ := newService(t, serviceDeps{rooms: 1, clock: clock})
	ctx := context.Background()

	booking, err := svc.Book(ctx, bookReq(1, 1, 3))
	require.NoError(t, err)

	clock.now = day(1).Add(19 * time.Hour)

	n, err := svc.ProcessNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.State())
	assert.False(t, got.IsActive)

	roomID, err := svc.AvailableRoom(ctx, day(2), day(3))
	require.NoError(t, err)
	assert.Equal(t, 1, roomID)

	_, err = svc.CheckIn(ctx, booking.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestScenario_CancelledBookingCanBeRebooked(t *testing.T) {
	svc, _ := newService(t, serviceDeps{rooms: 1})
	ctx := context.Background()

	first, err := svc.Book(ctx, bookReq(1, 4, 6))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	dates, err := svc.OccupiedDates(ctx, day(4), day(6))
	require.NoError(t, err)
	assert.Empty(t, dates)

	second, err := svc.Book(ctx, bookReq(2, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, first.RoomID, second.RoomID)
	assert.NotEqual(t, first.ID, second.ID)
}
