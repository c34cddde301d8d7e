package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/srgjo27/hotel_booking/internal/adapter/repository/mongodb"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

var (
	_ ports.BookingRepository = (*mongodb.BookingRepository)(nil)
	_ ports.RoomRepository    = (*mongodb.RoomRepository)(nil)
)

func TestBookingRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC)

	mt.Run("get all decodes documents", func(mt *mtest.T) {
		repo := mongodb.NewBookingRepository(mt.DB)
		ns := mt.DB.Name() + ".bookings"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: 1},
				{Key: "customer_id", Value: 9},
				{Key: "room_id", Value: 2},
				{Key: "start_date", Value: start},
				{Key: "end_date", Value: end},
				{Key: "is_active", Value: true},
				{Key: "is_checked_in", Value: false},
				{Key: "status", Value: "PENDING"},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		bookings, err := repo.GetAll(context.Background())

		require.NoError(mt, err)
		require.Len(mt, bookings, 1)
		assert.Equal(mt, 2, bookings[0].RoomID)
		assert.Equal(mt, start, bookings[0].StartDate)
		assert.Equal(mt, end, bookings[0].EndDate)
		assert.Equal(mt, domain.BookingPending, bookings[0].State())
	})

	mt.Run("get missing booking", func(mt *mtest.T) {
		repo := mongodb.NewBookingRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".bookings", mtest.FirstBatch))

		_, err := repo.Get(context.Background(), 5)

		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("edit unknown booking", func(mt *mtest.T) {
		repo := mongodb.NewBookingRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Edit(context.Background(), &domain.Booking{ID: 5})

		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("add allocates id from counter", func(mt *mtest.T) {
		repo := mongodb.NewBookingRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "bookings"},
				{Key: "seq", Value: 7},
			}}),
			mtest.CreateSuccessResponse(),
		)

		booking := domain.NewBooking(1, start, end)
		err := repo.Add(context.Background(), booking)

		require.NoError(mt, err)
		assert.Equal(mt, 7, booking.ID)
	})
}

func TestRoomRepository_SeedRooms(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("skips existing rooms and raises the counter", func(mt *mtest.T) {
		repo := mongodb.NewRoomRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		require.NoError(mt, repo.SeedRooms(context.Background(), 2))

		var commands []string
		var update string
		for _, evt := range mt.GetAllStartedEvents() {
			commands = append(commands, evt.CommandName)
			if evt.CommandName == "update" {
				update = evt.Command.String()
			}
		}

		assert.Equal(mt, []string{"insert", "insert", "update"}, commands)
		assert.Contains(mt, update, "counters")
		assert.Contains(mt, update, "$max")
	})

	mt.Run("insert failure stops seeding", func(mt *mtest.T) {
		repo := mongodb.NewRoomRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		assert.Error(mt, repo.SeedRooms(context.Background(), 2))
	})
}
