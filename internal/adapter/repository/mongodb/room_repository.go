package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

const roomsCollection = "rooms"

type roomDocument struct {
	ID int `bson:"_id"`
}

type RoomRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{
		coll:     db.Collection(roomsCollection),
		counters: db.Collection(countersCollection),
	}
}

func (r *RoomRepository) GetAll(ctx context.Context) ([]domain.Room, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	rooms := make([]domain.Room, 0, len(docs))
	for _, d := range docs {
		rooms = append(rooms, domain.Room{ID: d.ID})
	}

	return rooms, nil
}

func (r *RoomRepository) Get(ctx context.Context, id int) (*domain.Room, error) {
	var doc roomDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get room %d: %w", id, err)
	}

	return &domain.Room{ID: doc.ID}, nil
}

func (r *RoomRepository) Add(ctx context.Context, room *domain.Room) error {
	if room.ID == 0 {
		id, err := nextSequence(ctx, r.counters, roomsCollection)
		if err != nil {
			return err
		}
		room.ID = id
	}

	if _, err := r.coll.InsertOne(ctx, roomDocument{ID: room.ID}); err != nil {
		return fmt.Errorf("failed to insert room %d: %w", room.ID, err)
	}

	return nil
}

// Edit only confirms the room exists; rooms carry no mutable fields.
func (r *RoomRepository) Edit(ctx context.Context, room *domain.Room) error {
	_, err := r.Get(ctx, room.ID)
	return err
}

// SeedRooms inserts rooms 1..n, leaving existing ones alone, and raises the
// rooms counter to at least n so Add does not hand out a seeded id.
func (r *RoomRepository) SeedRooms(ctx context.Context, n int) error {
	for id := 1; id <= n; id++ {
		_, err := r.coll.InsertOne(ctx, roomDocument{ID: id})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to seed room %d: %w", id, err)
		}
	}

	_, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": roomsCollection},
		bson.M{"$max": bson.M{"seq": n}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to advance %s counter: %w", roomsCollection, err)
	}

	return nil
}
