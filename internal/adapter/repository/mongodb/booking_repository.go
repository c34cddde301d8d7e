package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

const (
	bookingsCollection = "bookings"
	countersCollection = "counters"
)

type bookingDocument struct {
	ID          int       `bson:"_id"`
	CustomerID  int       `bson:"customer_id"`
	RoomID      int       `bson:"room_id"`
	StartDate   time.Time `bson:"start_date"`
	EndDate     time.Time `bson:"end_date"`
	IsActive    bool      `bson:"is_active"`
	IsCheckedIn bool      `bson:"is_checked_in"`
	Status      string    `bson:"status"`
}

func toBookingDocument(b *domain.Booking) bookingDocument {
	return bookingDocument{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		RoomID:      b.RoomID,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		IsActive:    b.IsActive,
		IsCheckedIn: b.IsCheckedIn,
		Status:      string(b.Status),
	}
}

func (d bookingDocument) toDomain() domain.Booking {
	return domain.Booking{
		ID:          d.ID,
		CustomerID:  d.CustomerID,
		RoomID:      d.RoomID,
		StartDate:   domain.DateOf(d.StartDate),
		EndDate:     domain.DateOf(d.EndDate),
		IsActive:    d.IsActive,
		IsCheckedIn: d.IsCheckedIn,
		Status:      domain.BookingStatus(d.Status),
	}
}

type BookingRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		coll:     db.Collection(bookingsCollection),
		counters: db.Collection(countersCollection),
	}
}

func (r *BookingRepository) GetAll(ctx context.Context) ([]domain.Booking, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toDomain())
	}

	return bookings, nil
}

func (r *BookingRepository) Get(ctx context.Context, id int) (*domain.Booking, error) {
	var doc bookingDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}

	booking := doc.toDomain()

	return &booking, nil
}

func (r *BookingRepository) Add(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == 0 {
		id, err := nextSequence(ctx, r.counters, bookingsCollection)
		if err != nil {
			return err
		}
		booking.ID = id
	}

	if _, err := r.coll.InsertOne(ctx, toBookingDocument(booking)); err != nil {
		return fmt.Errorf("failed to insert booking %d: %w", booking.ID, err)
	}

	return nil
}

func (r *BookingRepository) Edit(ctx context.Context, booking *domain.Booking) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": booking.ID}, toBookingDocument(booking))
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", booking.ID, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %d: %w", booking.ID, domain.ErrNotFound)
	}

	return nil
}

// nextSequence increments and returns the counter named name.
func nextSequence(ctx context.Context, counters *mongo.Collection, name string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}

	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}

	return counter.Seq, nil
}
